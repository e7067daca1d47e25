package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/propsearch/pkg/errors"
)

// StatusError is a non-2xx answer from an upstream HTTP API.
type StatusError struct {
	Service string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Message)
}

// Unwrap maps the status onto the application sentinels so callers can use
// errors.Is without knowing the upstream.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.Status == http.StatusTooManyRequests, e.Status >= 500:
		return apperrors.ErrServiceUnavail
	case e.Status >= 400:
		return apperrors.ErrInvalidInput
	default:
		return nil
	}
}

// upstreamErrorBody covers the two shapes seen in the wild: a flat
// {"message": "..."} and the nested {"error": {"code", "message"}} envelope.
type upstreamErrorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// returns it as a *StatusError. Structured bodies contribute their message;
// anything else is kept verbatim, trimmed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	statusErr := &StatusError{Service: serviceName, Status: resp.StatusCode}

	var body upstreamErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil {
		switch {
		case body.Error != nil && body.Error.Message != "":
			statusErr.Message = body.Error.Message
		case body.Message != "":
			statusErr.Message = body.Message
		}
	}
	if statusErr.Message == "" {
		statusErr.Message = strings.TrimSpace(string(bodyBytes))
	}

	return statusErr
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
