// Package template implements the small expression language embedded in
// textual assets.
//
//	~{ name }              interpolate name, or echo ~{ name }~ when unbound
//	~{ if name } ... ~{ end }
//	~{ if !name } ... ~{ end }
//
// for-blocks and function calls parse but fail when evaluated.
package template

import (
	"strings"

	"git.home.luguber.info/inful/sitekit/internal/buildctx"
)

// Variables resolves identifiers.
type Variables interface {
	Get(key string) (buildctx.Value, bool)
}

// Template is a lexed source with its blocks matched. Block bodies are plain
// token index ranges into the arena, so nested blocks are never re-lexed.
type Template struct {
	src    string
	tokens []Token
	// match[i] is the index of the end token closing the block opened at i,
	// or -1 for tokens that do not open a block.
	match []int
}

// Parse lexes src and matches every block opener with its end.
func Parse(src string) (*Template, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	t := &Template{src: src, tokens: tokens, match: make([]int, len(tokens))}
	if err := t.matchBlocks(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) matchBlocks() error {
	var open []int
	for i, tok := range t.tokens {
		t.match[i] = -1
		if tok.Kind != TokenExpr {
			continue
		}
		switch {
		case tok.Expr.Kind.opensBlock():
			open = append(open, i)
		case tok.Expr.Kind == ExprEnd:
			if len(open) == 0 {
				return newError(ErrUnexpectedEnd, t.src, tok.Start, tok.End, "")
			}
			t.match[open[len(open)-1]] = i
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		first := t.tokens[open[0]]
		return newError(ErrUnclosedBlock, t.src, first.Start, len(t.src), "")
	}
	return nil
}

// Tokens exposes the lexed token arena.
func (t *Template) Tokens() []Token { return t.tokens }

// Execute evaluates the template against vars.
func (t *Template) Execute(vars Variables) (string, error) {
	var out strings.Builder
	out.Grow(len(t.src))
	if err := t.run(&out, vars, 0, len(t.tokens)); err != nil {
		return "", err
	}
	return out.String(), nil
}

// run evaluates tokens[lo:hi]. Falsy blocks are skipped by jumping past
// their end token, so nothing nested inside them is evaluated.
func (t *Template) run(out *strings.Builder, vars Variables, lo, hi int) error {
	for i := lo; i < hi; i++ {
		tok := t.tokens[i]
		if tok.Kind == TokenText {
			out.WriteString(t.src[tok.Start:tok.End])
			continue
		}
		switch tok.Expr.Kind {
		case ExprIdentifier:
			t.interpolate(out, vars, tok.Expr.Name)
		case ExprIf:
			end := t.match[i]
			if truthy(vars, tok.Expr.Name) != tok.Expr.Negated {
				if err := t.run(out, vars, i+1, end); err != nil {
					return err
				}
			}
			i = end
		case ExprFor:
			return newError(ErrNotImplemented, t.src, tok.Start, tok.End, "for blocks are not supported")
		case ExprFunctionCall:
			return newError(ErrNotImplemented, t.src, tok.Start, tok.End, "function "+tok.Expr.Name+" is not supported")
		case ExprEnd:
			return newError(ErrUnexpectedEnd, t.src, tok.Start, tok.End, "")
		}
	}
	return nil
}

func (t *Template) interpolate(out *strings.Builder, vars Variables, name string) {
	if s, ok := resolve(vars, name); ok {
		out.WriteString(s)
		return
	}
	out.WriteString("~{ ")
	out.WriteString(name)
	out.WriteString(" }~")
}

// resolve returns the text bound to name. A table holding text content (a
// part) resolves to that content.
func resolve(vars Variables, name string) (string, bool) {
	v, ok := vars.Get(name)
	if !ok {
		return "", false
	}
	if s, ok := v.AsText(); ok {
		return s, true
	}
	if tbl, ok := v.AsTable(); ok {
		return tbl.Text(buildctx.KeyContent)
	}
	return "", false
}

// truthy: absent, "false" and "0" are falsy; any other text, including "", is truthy.
func truthy(vars Variables, name string) bool {
	v, ok := vars.Get(name)
	if !ok {
		return false
	}
	s, ok := v.AsText()
	return ok && s != "false" && s != "0"
}

// Compile parses and executes src in one step.
func Compile(src string, vars Variables) (string, error) {
	t, err := Parse(src)
	if err != nil {
		return "", err
	}
	return t.Execute(vars)
}
