package domain

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidCredentials means the provider API key is missing or was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidArgument means a caller-supplied value is not acceptable.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrQuotaExceeded means the provider refused the request due to rate or quota limits.
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// InvalidServerResponseError reports a provider response that could not be
// used: an unparsable body, an unexpected document shape, or an unexpected
// HTTP status.
type InvalidServerResponseError struct {
	URL        string
	StatusCode int // 0 when the HTTP exchange itself succeeded
	Err        error
}

func (e *InvalidServerResponseError) Error() string {
	msg := fmt.Sprintf("invalid server response from %q", RedactURL(e.URL))
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *InvalidServerResponseError) Unwrap() error { return e.Err }

var keyParam = regexp.MustCompile(`([?&]key=)[^&#]*`)

// RedactURL hides the value of the "key" query parameter so request URLs
// can be logged and returned in errors.
func RedactURL(u string) string {
	return keyParam.ReplaceAllString(u, "${1}REDACTED")
}
