package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/propsearch/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func parse(t *testing.T, status int, body string) *StatusError {
	t.Helper()
	err := ParseResponseError(makeResponse(status, body), "geocoder")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	return statusErr
}

func TestParseResponseError_FlatMessage(t *testing.T) {
	err := parse(t, http.StatusUnauthorized, `{"message":"Not Authorized - Invalid Token"}`)

	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.Equal(t, "Not Authorized - Invalid Token", err.Message)
	assert.Equal(t, "geocoder returned status 401: Not Authorized - Invalid Token", err.Error())
}

func TestParseResponseError_NestedEnvelope(t *testing.T) {
	err := parse(t, http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"query too long"}}`)
	assert.Equal(t, "query too long", err.Message)
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	err := parse(t, http.StatusBadGateway, "  <html>bad gateway</html>\n")
	assert.Equal(t, "<html>bad gateway</html>", err.Message)
}

func TestParseResponseError_EmptyBody(t *testing.T) {
	err := parse(t, http.StatusTooManyRequests, "")
	assert.Equal(t, "", err.Message)
	assert.Equal(t, "geocoder returned status 429", err.Error())
}

func TestStatusError_UnwrapsToSentinels(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusTooManyRequests, apperrors.ErrServiceUnavail},
		{http.StatusServiceUnavailable, apperrors.ErrServiceUnavail},
		{http.StatusUnprocessableEntity, apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, ""), "geocoder")
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(399))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}
