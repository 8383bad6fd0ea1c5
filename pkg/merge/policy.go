package merge

import (
	"strings"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
)

// Policy decides the merged value of one field.
type Policy interface {
	// Name returns the policy name.
	Name() string

	// Apply returns the merged value and whether it differs from current.
	Apply(current, incoming string) (string, bool)
}

type replacePolicy struct {
	strict bool
}

// Replace returns the last-writer-wins policy: the source value replaces the
// target value whenever they differ. An empty source value keeps the target.
func Replace() Policy {
	return replacePolicy{}
}

// ReplaceStrict is Replace without the empty-value guard, so an empty source
// value clears the target.
func ReplaceStrict() Policy {
	return replacePolicy{strict: true}
}

func (p replacePolicy) Name() string {
	if p.strict {
		return "replace-strict"
	}
	return "replace"
}

func (p replacePolicy) Apply(current, incoming string) (string, bool) {
	if incoming == current || (!p.strict && incoming == "") {
		return current, false
	}
	return incoming, true
}

type appendPolicy struct {
	separator string
	strict    bool
}

// Append returns the accretive policy: the source value is appended to the
// target value after separator.
//
// With strict set the policy is exactly "whenever the source differs from the
// whole target string, append it": empty values are appended as they are
// (";b@x.com", "a@x.com;") and a source that is already one of several entries
// is appended again on every run.
//
// Without strict an empty source keeps the target, an empty target adopts the
// source, and nothing is appended when the source already equals one of the
// separated entries. This keeps a second merge of the same pair a no-op.
func Append(separator string, strict bool) Policy {
	if separator == "" {
		separator = constants.EmailSeparator
	}
	return appendPolicy{separator: separator, strict: strict}
}

func (p appendPolicy) Name() string {
	if p.strict {
		return "append-strict"
	}
	return "append"
}

func (p appendPolicy) Apply(current, incoming string) (string, bool) {
	if incoming == current {
		return current, false
	}
	if !p.strict {
		switch {
		case incoming == "":
			return current, false
		case current == "":
			return incoming, true
		case p.contains(current, incoming):
			return current, false
		}
	}
	return current + p.separator + incoming, true
}

func (p appendPolicy) contains(current, incoming string) bool {
	want := strings.TrimSpace(incoming)
	for entry := range strings.SplitSeq(current, p.separator) {
		if strings.EqualFold(strings.TrimSpace(entry), want) {
			return true
		}
	}
	return false
}
