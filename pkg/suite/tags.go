package suite

import (
	"errors"
	"strings"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

// maxTagClauses bounds the conjunctive form of a tag expression.
const maxTagClauses = 256

var errTooComplex = errors.New("expression too complex")

// TagFilter converts a Cucumber tag expression such as
// "@smoke and not (@slow or @wip)" into godog's filter syntax, where "&&"
// separates clauses, "," separates alternatives and "~" negates a tag:
// "@smoke&&~@slow&&~@wip". Filters already written in godog's syntax are
// validated and returned unchanged.
func TagFilter(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", nil
	}
	if strings.ContainsAny(expr, "&,~") {
		return legacyFilter(expr)
	}

	p := &tagParser{expr: expr, tokens: tokenizeTags(expr)}
	n, err := p.parseOr()
	if err != nil {
		return "", err
	}
	if p.pos < len(p.tokens) {
		return "", p.errorf("unexpected %q", p.tokens[p.pos])
	}

	clauses, err := conjunctive(n, false)
	if err != nil {
		return "", invalidTags(expr, err.Error())
	}
	parts := make([]string, len(clauses))
	for i, clause := range clauses {
		lits := make([]string, len(clause))
		for j, l := range clause {
			lits[j] = l.String()
		}
		parts[i] = strings.Join(lits, ",")
	}
	return strings.Join(parts, "&&"), nil
}

// legacyFilter checks a filter in godog's syntax; godog panics on empty alternatives.
func legacyFilter(expr string) (string, error) {
	for _, clause := range strings.Split(expr, "&&") {
		for _, alt := range strings.Split(clause, ",") {
			tag := strings.TrimPrefix(strings.TrimSpace(alt), "~")
			if !strings.HasPrefix(tag, "@") || len(tag) < 2 || strings.ContainsAny(tag, " \t()") {
				return "", invalidTags(expr, "expected @tag or ~@tag between \"&&\" and \",\"")
			}
		}
	}
	return expr, nil
}

func invalidTags(expr, reason string) error {
	return core.ErrInvalidConfig.WithMessagef("invalid tag expression %q: %s", expr, reason)
}

func tokenizeTags(expr string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

type tagNode struct {
	op          string // "tag", "not", "and", "or"
	tag         string
	left, right *tagNode
}

type tagParser struct {
	expr   string
	tokens []string
	pos    int
}

func (p *tagParser) errorf(format string, args ...interface{}) error {
	return core.ErrInvalidConfig.WithMessagef("invalid tag expression %q: "+format, append([]interface{}{p.expr}, args...)...)
}

func (p *tagParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *tagParser) parseOr() (*tagNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &tagNode{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *tagParser) parseAnd() (*tagNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &tagNode{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *tagParser) parseNot() (*tagNode, error) {
	if p.peek() == "not" {
		p.pos++
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &tagNode{op: "not", left: operand}, nil
	}
	return p.parsePrimary()
}

func (p *tagParser) parsePrimary() (*tagNode, error) {
	tok := p.peek()
	switch {
	case tok == "":
		return nil, p.errorf("unexpected end of expression")
	case tok == "(":
		p.pos++
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, p.errorf("missing \")\"")
		}
		p.pos++
		return n, nil
	case strings.HasPrefix(tok, "@") && len(tok) > 1:
		p.pos++
		return &tagNode{op: "tag", tag: tok}, nil
	default:
		return nil, p.errorf("expected a tag, got %q", tok)
	}
}

type tagLiteral struct {
	tag     string
	negated bool
}

func (l tagLiteral) String() string {
	if l.negated {
		return "~" + l.tag
	}
	return l.tag
}

// conjunctive returns n (negated when neg) as clauses that must all hold,
// each satisfied by any one of its literals.
func conjunctive(n *tagNode, neg bool) ([][]tagLiteral, error) {
	switch n.op {
	case "tag":
		return [][]tagLiteral{{{tag: n.tag, negated: neg}}}, nil
	case "not":
		return conjunctive(n.left, !neg)
	}

	left, err := conjunctive(n.left, neg)
	if err != nil {
		return nil, err
	}
	right, err := conjunctive(n.right, neg)
	if err != nil {
		return nil, err
	}

	// not (a or b) is (not a) and (not b)
	if (n.op == "and") != neg {
		return append(left, right...), nil
	}

	if len(left)*len(right) > maxTagClauses {
		return nil, errTooComplex
	}
	out := make([][]tagLiteral, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			clause := make([]tagLiteral, 0, len(l)+len(r))
			clause = append(clause, l...)
			out = append(out, append(clause, r...))
		}
	}
	return out, nil
}
