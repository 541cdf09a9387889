package query

import (
	"strings"
	"unicode"

	"blsearch/internal/domain/models"
)

// Expr is a compiled free-text boolean expression. A nil Expr is the
// identity filter and matches every record.
type Expr interface {
	Matches(rec *models.Record) bool
}

type termExpr struct{ term string }

func (e termExpr) Matches(rec *models.Record) bool {
	return anyFieldContains(rec, e.term)
}

type notExpr struct{ expr Expr }

func (e notExpr) Matches(rec *models.Record) bool {
	return !e.expr.Matches(rec)
}

type andExpr struct{ exprs []Expr }

func (e andExpr) Matches(rec *models.Record) bool {
	for _, sub := range e.exprs {
		if !sub.Matches(rec) {
			return false
		}
	}
	return true
}

type orExpr struct{ exprs []Expr }

func (e orExpr) Matches(rec *models.Record) bool {
	for _, sub := range e.exprs {
		if sub.Matches(rec) {
			return true
		}
	}
	return false
}

// Compile parses free text into a boolean expression tree. The keywords
// "and", "or" and "not" are case-insensitive and parentheses group
// nested expressions; "not" binds to the term or group that follows it.
// Compile never fails: dangling operators are dropped, a stray ")" ends
// the current group and an unclosed "(" runs to the end of the input.
// Empty input compiles to nil.
func Compile(freeText string) Expr {
	p := &exprParser{tokens: lexExpr(freeText)}
	return p.parseOr()
}

type exprParser struct {
	tokens []string
	pos    int
}

func lexExpr(s string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func (p *exprParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *exprParser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func isKeyword(tok, kw string) bool {
	return strings.EqualFold(tok, kw)
}

func (p *exprParser) parseOr() Expr {
	var exprs []Expr
	if e := p.parseAnd(); e != nil {
		exprs = append(exprs, e)
	}
	for isKeyword(p.peek(), "or") {
		p.next()
		if e := p.parseAnd(); e != nil {
			exprs = append(exprs, e)
		}
	}
	return collapse(exprs, func(exprs []Expr) Expr { return orExpr{exprs: exprs} })
}

func (p *exprParser) parseAnd() Expr {
	var exprs []Expr
	if e := p.parseUnary(); e != nil {
		exprs = append(exprs, e)
	}
	for isKeyword(p.peek(), "and") {
		p.next()
		if e := p.parseUnary(); e != nil {
			exprs = append(exprs, e)
		}
	}
	return collapse(exprs, func(exprs []Expr) Expr { return andExpr{exprs: exprs} })
}

func (p *exprParser) parseUnary() Expr {
	switch tok := p.peek(); {
	case tok == "" || tok == ")":
		return nil
	case tok == "(":
		p.next()
		inner := p.parseOr()
		if p.peek() == ")" {
			p.next()
		}
		return inner
	case isKeyword(tok, "not"):
		p.next()
		inner := p.parseUnary()
		if inner == nil {
			return nil
		}
		return notExpr{expr: inner}
	default:
		return p.parseTerm()
	}
}

// parseTerm collects consecutive plain words into one search term, so a
// multi-word phrase between keywords is matched as a whole. "not" only
// carries meaning at the start of a term and is treated as a plain word
// here.
func (p *exprParser) parseTerm() Expr {
	var words []string
	for {
		tok := p.peek()
		if tok == "" || tok == "(" || tok == ")" ||
			isKeyword(tok, "and") || isKeyword(tok, "or") {
			break
		}
		words = append(words, p.next())
	}
	if len(words) == 0 {
		return nil
	}
	return termExpr{term: strings.Join(words, " ")}
}

func collapse(exprs []Expr, combine func([]Expr) Expr) Expr {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	return combine(exprs)
}
