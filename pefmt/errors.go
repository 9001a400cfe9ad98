// Package pefmt implements the PE top-level parsing pipeline: DOS
// header, PE/COFF header, optional header, the 16-slot data directory
// table, and the format-specific sub-parsers that hang off it. Every
// step past header parsing is independently fallible; see Parse.
package pefmt

import "fmt"

// Kind classifies a pefmt error for callers that want to branch on the
// failure category instead of matching error strings.
type Kind int

const (
	// KindRead marks a byte-level failure (out-of-bounds, short read).
	KindRead Kind = iota
	// KindParsing marks a failure in a mandatory step (header parsing only).
	KindParsing
	// KindCorrupted marks a structural inconsistency a decoder detected
	// on its own (e.g. a declared count that disagrees with the buffer).
	KindCorrupted
	// KindNotFound marks a lookup that returned no match.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindParsing:
		return "parsing"
	case KindCorrupted:
		return "corrupted-input"
	case KindNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Error is the single concrete error type pefmt returns. Step wraps the
// failing pipeline step name so a warn-and-continue log line can name
// it without re-deriving it from the call stack.
type Error struct {
	Kind Kind
	Step string
	Err  error
}

func (e *Error) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("pefmt: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("pefmt: %s in %s: %v", e.Kind, e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, step string, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

// ParsingError reports a mandatory-step failure (§4.4 step 1 only).
func ParsingError(step string, err error) *Error { return newErr(KindParsing, step, err) }

// ReadError reports a byte-level failure.
func ReadError(step string, err error) *Error { return newErr(KindRead, step, err) }

// CorruptedInput reports a structural inconsistency found by a decoder.
func CorruptedInput(step string, err error) *Error { return newErr(KindCorrupted, step, err) }

// NotFoundError reports a lookup miss.
func NotFoundError(step string, err error) *Error { return newErr(KindNotFound, step, err) }
