package template

import (
	"strings"
)

const (
	openMarker  = "~{"
	closeMarker = '}'
)

// lex splits src into text runs and parsed expressions. Every token refers to
// src by byte offsets; nothing is copied.
func lex(src string) ([]Token, error) {
	var tokens []Token
	pos := 0
	for pos < len(src) {
		i := strings.Index(src[pos:], openMarker)
		if i < 0 {
			tokens = append(tokens, Token{Kind: TokenText, Start: pos, End: len(src)})
			break
		}
		if i > 0 {
			tokens = append(tokens, Token{Kind: TokenText, Start: pos, End: pos + i})
		}
		start := pos + i
		expr, end, err := parseExpr(src, start)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, Token{Kind: TokenExpr, Start: start, End: end, Expr: expr})
		pos = end
	}
	return tokens, nil
}

// exprLexer walks the inside of one `~{ ... }` marker.
type exprLexer struct {
	src   string
	start int
	pos   int
}

type word struct {
	text    string
	quoted  bool
	negated bool
}

// parseExpr parses the marker starting at src[start:] and returns the offset
// just past its closing brace.
func parseExpr(src string, start int) (Expr, int, error) {
	l := &exprLexer{src: src, start: start, pos: start + len(openMarker)}
	var words []word
	for {
		l.skipSpace()
		if l.pos >= len(src) {
			return Expr{}, 0, newError(ErrSyntax, src, start, len(src), "unterminated expression")
		}
		if src[l.pos] == closeMarker {
			l.pos++
			break
		}
		w, err := l.next()
		if err != nil {
			return Expr{}, 0, err
		}
		words = append(words, w)
	}
	expr, err := buildExpr(words)
	if err != nil {
		return Expr{}, 0, newError(ErrSyntax, src, start, l.pos, err.Error())
	}
	return expr, l.pos, nil
}

func (l *exprLexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *exprLexer) next() (word, error) {
	c := l.src[l.pos]
	switch {
	case c == '"':
		s, err := l.quoted()
		return word{text: s, quoted: true}, err
	case c == '!':
		l.pos++
		if l.pos >= len(l.src) || !isIdentByte(l.src[l.pos]) {
			return word{}, newError(ErrSyntax, l.src, l.start, l.pos, "expected identifier after '!'")
		}
		return word{text: l.ident(), negated: true}, nil
	case isIdentByte(c):
		return word{text: l.ident()}, nil
	default:
		return word{}, newError(ErrSyntax, l.src, l.start, l.pos+1, "unexpected character "+string(c))
	}
}

func (l *exprLexer) ident() string {
	begin := l.pos
	for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
		l.pos++
	}
	return l.src[begin:l.pos]
}

// quoted decodes a double-quoted string with \" \n \t \\ escapes. Unknown
// escapes keep the escaped character.
func (l *exprLexer) quoted() (string, error) {
	var b strings.Builder
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return b.String(), nil
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				break
			}
			switch e := l.src[l.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(e)
			}
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return "", newError(ErrSyntax, l.src, l.start, len(l.src), "unterminated string")
}

func isIdentByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '-', c == '.', c == '/', c == ':':
		return true
	default:
		return c >= 0x80
	}
}

// buildExpr interprets the first word as a function name.
func buildExpr(words []word) (Expr, error) {
	if len(words) == 0 {
		return Expr{}, errString("empty expression")
	}
	head := words[0]
	if head.quoted || head.negated {
		return Expr{}, errString("expression must start with an identifier")
	}
	args := make([]Arg, 0, len(words)-1)
	for _, w := range words[1:] {
		args = append(args, Arg{Value: w.text, Quoted: w.quoted, Negated: w.negated})
	}

	switch head.text {
	case "if":
		if len(args) != 1 || args[0].Quoted {
			return Expr{}, errString("if expects a single identifier condition")
		}
		return Expr{Kind: ExprIf, Name: args[0].Value, Negated: args[0].Negated}, nil
	case "for":
		return Expr{Kind: ExprFor, Name: head.text, Args: args}, nil
	case "end":
		if len(args) != 0 {
			return Expr{}, errString("end takes no arguments")
		}
		return Expr{Kind: ExprEnd, Name: head.text}, nil
	}
	if len(args) == 0 {
		return Expr{Kind: ExprIdentifier, Name: head.text}, nil
	}
	for _, a := range args {
		if a.Negated {
			return Expr{}, errString("negation is only valid in if conditions")
		}
	}
	return Expr{Kind: ExprFunctionCall, Name: head.text, Args: args}, nil
}

type errString string

func (e errString) Error() string { return string(e) }
