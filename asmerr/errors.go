// Package asmerr defines the assembler's error taxonomy: the tokenizer,
// parser and generator each raise errors drawn from their own closed kind
// set, but every error carries the same {kind, message, position} shape so
// the CLI can format them uniformly.
package asmerr

import (
	"fmt"

	"github.com/berdon/asmx86/token"
)

// Subsystem identifies which of the three pipeline stages raised an error.
type Subsystem int

const (
	Tokenizer Subsystem = iota
	Parser
	Generator
)

func (s Subsystem) String() string {
	switch s {
	case Tokenizer:
		return "Tokenizer"
	case Parser:
		return "Parser"
	case Generator:
		return "Generator"
	default:
		return "Unknown"
	}
}

// Kind is an error kind within a subsystem's closed taxonomy.
type Kind int

const (
	// Tokenizer kinds.
	ReaderError Kind = iota
	InvalidIdentifier
	InvalidString
	InvalidNumber
	InvalidSymbol
	InvalidMultilineComment
	InternalError

	// Parser kinds.
	UnexpectedToken
	UnsupportedRegister
	ParserInvalidNumber
	InvalidDirective
	InternalException
	GeneratorError
	Unimplemented // raised by both the parser and the generator

	// Generator kinds.
	GenInternalException
	RegisterNotSupportedInBitMode
	InvalidParsingPass
)

var kindNames = map[Kind]string{
	ReaderError:                   "ReaderError",
	InvalidIdentifier:             "InvalidIdentifier",
	InvalidString:                 "InvalidString",
	InvalidNumber:                 "InvalidNumber",
	InvalidSymbol:                 "InvalidSymbol",
	InvalidMultilineComment:       "InvalidMultilineComment",
	InternalError:                 "InternalError",
	UnexpectedToken:               "UnexpectedToken",
	UnsupportedRegister:           "UnsupportedRegister",
	ParserInvalidNumber:           "InvalidNumber",
	InvalidDirective:              "InvalidDirective",
	InternalException:             "InternalException",
	GeneratorError:                "GeneratorError",
	Unimplemented:                 "Unimplemented",
	GenInternalException:          "InternalException",
	RegisterNotSupportedInBitMode: "RegisterNotSupportedInBitMode",
	InvalidParsingPass:            "InvalidParsingPass",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a single diagnostic: the subsystem and kind that raised it, an
// owned message, and an optional source position. It implements error so
// it composes with errors.Is/As and %w wrapping.
type Error struct {
	Subsystem Subsystem
	Kind      Kind
	Message   string
	Pos       *token.Position
	Wrapped   error
}

// Error formats as "[<Kind>]:<line>:<col> <message>", falling back to
// "[<Kind>]: <message>" when no position is attached.
func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("[%s]:%d:%d %s", e.Kind, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("[%s]: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// New creates an error with no attached position.
func New(sub Subsystem, kind Kind, message string) *Error {
	return &Error{Subsystem: sub, Kind: kind, Message: message}
}

// At creates an error at a specific source position.
func At(sub Subsystem, kind Kind, pos token.Position, message string) *Error {
	p := pos
	return &Error{Subsystem: sub, Kind: kind, Message: message, Pos: &p}
}

// Wrap wraps an underlying generator error inside a parser-level
// GeneratorError, since generator failures surface to callers through the
// parser's error stream.
func Wrap(pos token.Position, err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok && ae.Kind == GeneratorError {
		return ae
	}
	p := pos
	return &Error{Subsystem: Parser, Kind: GeneratorError, Message: err.Error(), Pos: &p, Wrapped: err}
}

// List accumulates errors across a pass; the first error is the one the
// caller treats as the abort point. Assembly does not attempt recovery
// past the first failure.
type List struct {
	Errors []*Error
}

func (l *List) Add(err *Error) {
	if err == nil {
		return
	}
	l.Errors = append(l.Errors, err)
}

func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

// First returns the first recorded error, or nil if none were recorded.
func (l *List) First() *Error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l.Errors[0]
}

func (l *List) Error() string {
	if !l.HasErrors() {
		return ""
	}
	msg := l.Errors[0].Error()
	for _, e := range l.Errors[1:] {
		msg += "\n" + e.Error()
	}
	return msg
}
