package extractor

import "fmt"

// Kind identifies one of the error categories the core recognises
// (spec.md §7). It's grounded on original_source/src/errors.rs's
// two-variant enum, widened to the five kinds spec.md names.
type Kind int

const (
	// Timeout: the HTTP GET exceeded request-timeout.
	Timeout Kind = iota
	// FetchFailed: the subprocess wait exceeded its timeout.
	FetchFailed
	// DeserializeFailed: extractor stdout didn't parse as ItemizerRes.
	DeserializeFailed
	// IOFailed: a filesystem operation failed.
	IOFailed
	// ConfigCorrupt: cache.json was unreadable (handled by salvage, not
	// normally surfaced as an error — kept here for completeness per
	// spec.md §7's error-kind enumeration).
	ConfigCorrupt
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "Timeout"
	case FetchFailed:
		return "FetchFailed"
	case DeserializeFailed:
		return "DeserializeFailed"
	case IOFailed:
		return "IOFailed"
	case ConfigCorrupt:
		return "ConfigCorrupt"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with its Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind.
func New(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
