package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ReadResponse reads at most constants.MaxResponseBodySize bytes of the body
// and closes it.
func ReadResponse(resp *http.Response) (*Response, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBodySize))
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// DecodeResponse decodes a JSON response into the target structure. A non-2xx
// status yields an *errors.APIError carrying the status and body; a body that
// is not valid JSON yields an *errors.ParseError.
func DecodeResponse(service string, resp *http.Response, target any) error {
	r, err := ReadResponse(resp)
	if err != nil {
		return err
	}

	if !r.OK() {
		apiErr := errors.NewAPIError(service, r.StatusCode, string(r.Body))
		if resp.Request != nil && resp.Request.URL != nil {
			apiErr.Endpoint = resp.Request.URL.Redacted()
		}
		return apiErr
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return errors.WrapParse("json", service+" response", err)
	}
	return nil
}
