// Package ledger is the client of the target accounting ledger. Every call is
// a POST of a JSON envelope that carries the application key and secret and a
// "call" field naming the remote operation.
package ledger

import (
	"context"

	"github.com/GustavoBertuzzi/API-Kolado/internal/transport"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

// ServiceName identifies the target ledger in errors and logs.
const ServiceName = "omie"

// envelope is the request body shared by every ledger call.
type envelope struct {
	Call      string            `json:"call"`
	AppKey    string            `json:"app_key"`
	AppSecret string            `json:"app_secret"`
	Param     []lookupParam     `json:"param,omitempty"`
	Cliente   *records.Customer `json:"cliente,omitempty"`
}

type lookupParam struct {
	IntegrationCode string `json:"codigo_cliente_integracao"`
}

type listResponse struct {
	Customers []records.Customer `json:"cliente_cadastro"`
}

// Client looks up and updates target customers.
type Client struct {
	url       string
	appKey    string
	appSecret string
	http      *transport.Client
}

// New creates a Client for the customers endpoint at url.
func New(url, appKey, appSecret string, opts ...transport.Option) *Client {
	return &Client{
		url:       url,
		appKey:    appKey,
		appSecret: appSecret,
		http:      transport.New(ServiceName, &transport.NoAuth{}, opts...),
	}
}

// LookupByIntegrationCode returns the first customer registered under key.
// No match is reported as ok == false with a nil error.
func (c *Client) LookupByIntegrationCode(ctx context.Context, key records.Key) (records.Customer, bool, error) {
	req := c.envelope(constants.CallListCustomers)
	req.Param = []lookupParam{{IntegrationCode: key.String()}}

	var result listResponse
	if err := c.call(ctx, req, key.String(), &result); err != nil {
		return records.Customer{}, false, err
	}

	if len(result.Customers) == 0 {
		return records.Customer{}, false, nil
	}

	found := result.Customers[0]
	logging.Ctx(ctx).Debug().
		Str("target_code", found.TargetCode()).
		Int("matches", len(result.Customers)).
		Msg("target customer found")
	return found, true, nil
}

// Update writes the full customer record back to the ledger.
func (c *Client) Update(ctx context.Context, customer records.Customer) error {
	req := c.envelope(constants.CallUpdateCustomer)
	req.Cliente = &customer
	return c.call(ctx, req, customer.IntegrationCode, nil)
}

func (c *Client) envelope(call string) envelope {
	return envelope{
		Call:      call,
		AppKey:    c.appKey,
		AppSecret: c.appSecret,
	}
}

// call posts req and decodes a successful response into out. Failures are
// returned as *errors.TargetError.
func (c *Client) call(ctx context.Context, req envelope, integrationCode string, out any) error {
	resp, err := c.http.PostJSON(ctx, c.url, req)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			return &errors.TargetError{
				Kind:            errors.TargetRejected,
				Operation:       req.Call,
				IntegrationCode: integrationCode,
				Err:             err,
			}
		}
		return errors.NewUnreachableError(req.Call, integrationCode, err)
	}

	if err := transport.DecodeResponse(ServiceName, resp, out); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			targetErr := errors.NewRejectedError(req.Call, integrationCode, apiErr.StatusCode, apiErr.Message)
			targetErr.Err = apiErr
			return targetErr
		}
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			return &errors.TargetError{
				Kind:            errors.TargetRejected,
				Operation:       req.Call,
				IntegrationCode: integrationCode,
				Err:             err,
			}
		}
		return errors.NewUnreachableError(req.Call, integrationCode, err)
	}
	return nil
}
