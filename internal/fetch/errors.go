package fetch

import "fmt"

// Kind classifies a fetch failure. Transient failures may be retried,
// permanent ones fail immediately.
type Kind int

const (
	Transient Kind = iota
	Permanent
)

func (k Kind) String() string {
	if k == Permanent {
		return "permanent"
	}
	return "transient"
}

// Error is a classified fetch failure.
type Error struct {
	Kind   Kind
	URL    string
	Status int // 0 when the failure was not an HTTP status
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s fetch error for %s: status %d", e.Kind, e.URL, e.Status)
	}
	return fmt.Sprintf("%s fetch error for %s: %v", e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status to a failure kind. 429 and 5xx-class
// responses (including proxy ban 520s) are transient; other 4xx are not.
func classifyStatus(status int) Kind {
	if status == 429 || status >= 500 {
		return Transient
	}
	return Permanent
}

func statusError(url string, status int) *Error {
	return &Error{Kind: classifyStatus(status), URL: url, Status: status}
}

func transportError(url string, err error) *Error {
	return &Error{Kind: Transient, URL: url, Err: err}
}

func permanentError(url string, err error) *Error {
	return &Error{Kind: Permanent, URL: url, Err: err}
}
