package errors

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"

	"github.com/ocflib/ocf/log"
)

// Separator defines the separation string inserted between chained errors
// in error messages.
var Separator = ":\n\t"

// Kind defines the disposition of an error as described in the core's error
// table: what condition produced it, and implicitly, whether that condition
// is fatal to the stream that raised it.
type Kind int

const (
	// Other indicates an unclassified error.
	Other Kind = iota
	// BadMagic indicates a header's magic bytes did not match. Fatal.
	BadMagic
	// UnknownCodec indicates a codec name was not found in the registry. Fatal.
	UnknownCodec
	// SchemaParse indicates a header's schema text failed to parse. Fatal.
	SchemaParse
	// BadSync indicates a block's sync marker did not match the header's. Fatal.
	BadSync
	// BadChecksum indicates a block's trailing checksum did not match. Fatal.
	BadChecksum
	// EncodeFailure indicates a ValueCodec rejected a value. Not fatal: the
	// encoder remains usable for subsequent values.
	EncodeFailure
	// CompressFailure indicates a compression codec's callback reported an
	// error. Fatal.
	CompressFailure
	// Truncation indicates the byte stream ended mid-record. Not an error:
	// callers should treat it as end-of-stream, never surface it.
	Truncation

	maxKind
)

var kinds = map[Kind]string{
	Other:           "unknown error",
	BadMagic:        "invalid magic bytes",
	UnknownCodec:    "unknown codec",
	SchemaParse:     "schema parse error",
	BadSync:         "invalid sync marker",
	BadChecksum:     "invalid block checksum",
	EncodeFailure:   "value encode failure",
	CompressFailure: "compression codec failure",
	Truncation:      "truncated stream",
}

// String returns a human-readable description of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Error is the core's standard error type: a kind (error code), an optional
// message, and optionally an underlying error that caused it. Errors form
// chains through Err; the full chain is printed by Error.
//
// Errors should be constructed with E, which interprets its arguments
// according to a small set of rules.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Message is an optional human-readable annotation.
	Message string
	// Err is the error that caused this one, if any.
	Err error
}

// E constructs a new error from the provided arguments, a convenient way to
// build, annotate, and wrap errors in one call.
//
// Arguments are interpreted according to their types:
//
//	- Kind: sets the Error's kind
//	- string: sets the Error's message; multiple strings are joined with a space
//	- *Error: copies the error and sets it as the cause
//	- error: sets the cause
//
// If no Kind is given but an *Error cause is, the result inherits the
// cause's kind.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E: no args")
	}
	e := new(Error)
	var msg bytes.Buffer
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteByte(' ')
			}
			msg.WriteString(arg)
		case *Error:
			cp := *arg
			if len(args) == 1 {
				return &cp
			}
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Error.Printf("errors.E: bad call (type %T) from %s:%d: %v", arg, file, line, arg)
			return &Error{Kind: Other, Message: fmt.Sprintf("unknown type %T, value %v in error call", arg, arg)}
		}
	}
	e.Message = msg.String()
	if e.Err == nil {
		return e
	}
	if prev, ok := e.Err.(*Error); ok && (prev.Kind == e.Kind || e.Kind == Other) {
		e.Kind = prev.Kind
		prev.Kind = Other
	}
	return e
}

// Recover recovers any error into an *Error. If err is already an *Error, it
// is returned unchanged; otherwise it is wrapped with kind Other.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return E(err).(*Error)
}

// Error returns a human-readable string describing this error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Message != "" {
		pad(b, ": ")
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err == nil {
		return
	}
	if err, ok := e.Err.(*Error); ok {
		pad(b, Separator)
		b.WriteString(err.Error())
	} else {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
}

// Is tells whether err has the given kind, traversing the cause chain past
// any Other-kind wrappers.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		if e2, ok := e.Err.(*Error); ok {
			return is(kind, e2)
		}
	}
	return false
}

// New is synonymous with the standard library's errors.New, provided here so
// callers need only import one errors package.
func New(msg string) error {
	return errors.New(msg)
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}
