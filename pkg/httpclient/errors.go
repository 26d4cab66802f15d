package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/catalogsearch/pkg/errors"
)

// upstreamError mirrors the {"error": {"code","message"}} envelope so that
// structured messages from peer services survive translation.
type upstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an error. 404 maps to ErrNotFound, 400 to
// ErrInvalidInput, 429 and 5xx to ErrUnavailable.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer drain(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}

	message := strings.TrimSpace(string(body))
	var structured upstreamError
	if json.Unmarshal(body, &structured) == nil && structured.Error != nil {
		message = structured.Error.Message
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		sentinel = apperrors.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		sentinel = apperrors.ErrInvalidInput
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		sentinel = apperrors.ErrUnavailable
	default:
		return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, message)
	}
	return errors.Join(sentinel, fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, message))
}
