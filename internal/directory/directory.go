// Package directory is the client of the source contact directory. It fetches
// the whole contact list in one GET authenticated by an API key header.
package directory

import (
	"context"

	"github.com/GustavoBertuzzi/API-Kolado/internal/transport"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

// ServiceName identifies the source directory in errors and logs.
const ServiceName = "octadesk"

// Client lists source contacts.
type Client struct {
	url  string
	http *transport.Client
}

// New creates a Client for the contacts endpoint at url.
func New(url, apiKey string, opts ...transport.Option) *Client {
	auth := &transport.HeaderAuth{Header: constants.SourceAPIKeyHeader, Value: apiKey}
	return &Client{
		url:  url,
		http: transport.New(ServiceName, auth, opts...),
	}
}

// ListAll returns every contact in the directory. Any failure, including a
// non-2xx response or an undecodable body, is returned as *errors.FetchError.
func (c *Client) ListAll(ctx context.Context) ([]records.Contact, error) {
	resp, err := c.http.Get(ctx, c.url)
	if err != nil {
		return nil, errors.NewFetchError(c.url, err)
	}

	var contacts []records.Contact
	if err := transport.DecodeResponse(ServiceName, resp, &contacts); err != nil {
		fetchErr := errors.NewFetchError(c.url, err)
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			fetchErr.StatusCode = apiErr.StatusCode
			fetchErr.Body = apiErr.Message
		}
		return nil, fetchErr
	}

	logging.Ctx(ctx).Debug().
		Int("contacts", len(contacts)).
		Msg("fetched source contacts")
	return contacts, nil
}
