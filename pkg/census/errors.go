package census

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"
)

// Error kinds surfaced to callers. Check them with eris.Is or errors.Is.
var (
	ErrConfiguration   = eris.New("census: configuration error")
	ErrValidation      = eris.New("census: invalid query")
	ErrOutsideCoverage = eris.New("census: coordinate is outside census coverage")
	ErrNetwork         = eris.New("census: network error")
	ErrParse           = eris.New("census: malformed response")
)

// APIError is returned when a Census service answers with a non-success status,
// or reports an error inside an otherwise successful response.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Temporary() {
		return fmt.Sprintf("census: %s returned status %d: %s (temporary, try again later)", e.Service, e.StatusCode, msg)
	}
	return fmt.Sprintf("census: %s returned status %d: %s", e.Service, e.StatusCode, msg)
}

// Temporary reports whether the status indicates a transient server-side issue.
func (e *APIError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// parseErrorf wraps ErrParse with context for a specific service.
func parseErrorf(format string, args ...any) error {
	return eris.Wrapf(ErrParse, format, args...)
}
