package template

// TokenKind discriminates literal text runs from bracketed expressions.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenExpr
)

// Token is a span of the shared source buffer. For expressions the span
// covers the whole `~{ ... }` marker.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
	Expr  Expr
}

// ExprKind is the closed set of expression forms.
type ExprKind int

const (
	ExprIdentifier ExprKind = iota
	ExprFunctionCall
	ExprIf
	ExprFor
	ExprEnd
)

func (k ExprKind) String() string {
	switch k {
	case ExprFunctionCall:
		return "function call"
	case ExprIf:
		return "if"
	case ExprFor:
		return "for"
	case ExprEnd:
		return "end"
	default:
		return "identifier"
	}
}

// opensBlock reports whether the expression must be closed by `~{ end }`.
func (k ExprKind) opensBlock() bool { return k == ExprIf || k == ExprFor }

// Arg is one expression argument: a bare identifier or a decoded string literal.
type Arg struct {
	Value   string
	Quoted  bool
	Negated bool
}

// Expr is a parsed `~{ ... }` body. Name is the leading identifier, which for
// If is the condition variable.
type Expr struct {
	Kind    ExprKind
	Name    string
	Args    []Arg
	Negated bool
}
