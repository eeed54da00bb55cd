package espn

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrMissingEventID      = errors.New("event id is required")
	ErrProviderUnavailable = errors.New("espn provider is temporarily unavailable")
)

// errTransient marks failures worth counting against the circuit breaker.
var errTransient = crerr.New("espn transient failure")

// Endpoint names the provider resource a request targeted.
type Endpoint string

const (
	EndpointScoreboard Endpoint = "scoreboard"
	EndpointSummary    Endpoint = "summary"
)

// RequestError is a non-2xx provider response. The body is never parsed.
type RequestError struct {
	Endpoint   Endpoint
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	verb := "request"
	if e.Endpoint == EndpointSummary {
		verb = "summary"
	}
	return fmt.Sprintf("ESPN %s failed: %d %s", verb, e.StatusCode, e.Status)
}

// Temporary reports whether the status is worth retrying.
func (e *RequestError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// TransportError is a failure before any response was received.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ESPN transport failure for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a provider failure that says something
// about the provider's health: transport errors, 429 and 5xx.
func IsTransient(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}

func newRequestError(endpoint Endpoint, resp *http.Response) error {
	reqErr := &RequestError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
	}
	if reqErr.Temporary() {
		return crerr.Mark(reqErr, errTransient)
	}
	return reqErr
}

func newTransportError(rawURL string, err error) error {
	return crerr.Mark(&TransportError{URL: rawURL, Err: err}, errTransient)
}

// statusText strips the numeric code from resp.Status, e.g. "404 Not Found"
// becomes "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
