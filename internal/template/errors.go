package template

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax         = errors.New("template syntax error")
	ErrUnexpectedEnd  = errors.New("unexpected end-of-block")
	ErrUnclosedBlock  = errors.New("unclosed block")
	ErrNotImplemented = errors.New("not implemented")
)

// CompileError reports a template failure at a byte offset of the source.
type CompileError struct {
	Kind    error
	Offset  int
	Snippet string
	Detail  string
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%v at offset %d", e.Kind, e.Offset)
	if e.Snippet != "" {
		msg += fmt.Sprintf(" (%q)", e.Snippet)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Kind }

func newError(kind error, src string, start, end int, detail string) *CompileError {
	const maxSnippet = 40
	snippet := []rune(src[start:end])
	if len(snippet) > maxSnippet {
		snippet = append(snippet[:maxSnippet], []rune("...")...)
	}
	return &CompileError{Kind: kind, Offset: start, Snippet: string(snippet), Detail: detail}
}
