package records

// Key is the cross-system join key stored on the target customer as its
// integration code.
type Key string

// String returns the key as a string.
func (k Key) String() string {
	return string(k)
}
