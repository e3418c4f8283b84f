// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

import (
	"strconv"
	"strings"

	"github.com/dolthub/vegafusion-go/compiler/ast"
	"github.com/dolthub/vegafusion-go/vferrors"
)

// tokenKind enumerates the lexical token kinds the scanner produces.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

// scanner tokenizes a chart-spec expression string. It has no notion of
// operator precedence; that lives entirely in the parser below.
type scanner struct {
	src []rune
	pos int
}

func newScanner(src string) *scanner { return &scanner{src: []rune(src)} }

func (s *scanner) peekRune() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t' || s.src[s.pos] == '\n' || s.src[s.pos] == '\r') {
		s.pos++
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }

// next returns the next token, consuming it from the source.
func (s *scanner) next() (token, error) {
	s.skipSpace()
	if s.pos >= len(s.src) {
		return token{kind: tokEOF}, nil
	}
	r := s.src[s.pos]

	if isDigit(r) || (r == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1])) {
		start := s.pos
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
		if s.pos < len(s.src) && s.src[s.pos] == '.' {
			s.pos++
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.pos++
			}
		}
		if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
			s.pos++
			if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
				s.pos++
			}
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.pos++
			}
		}
		text := string(s.src[start:s.pos])
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, vferrors.Compilation("invalid number literal %q", text)
		}
		return token{kind: tokNumber, text: text, num: v}, nil
	}

	if r == '"' || r == '\'' {
		quote := r
		s.pos++
		var b strings.Builder
		for {
			if s.pos >= len(s.src) {
				return token{}, vferrors.Compilation("unterminated string literal")
			}
			c := s.src[s.pos]
			if c == quote {
				s.pos++
				break
			}
			if c == '\\' && s.pos+1 < len(s.src) {
				s.pos++
				c = s.src[s.pos]
			}
			b.WriteRune(c)
			s.pos++
		}
		return token{kind: tokString, text: b.String()}, nil
	}

	if isIdentStart(r) {
		start := s.pos
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		return token{kind: tokIdent, text: string(s.src[start:s.pos])}, nil
	}

	// Multi-character punctuation, longest match first.
	for _, op := range []string{"===", "!==", "==", "!=", "<=", ">=", "&&", "||"} {
		if strings.HasPrefix(string(s.src[s.pos:]), op) {
			s.pos += len(op)
			return token{kind: tokPunct, text: op}, nil
		}
	}
	s.pos++
	return token{kind: tokPunct, text: string(r)}, nil
}

// Parser is a recursive-descent parser over a single expression string,
// producing an ast.Node tree. It never reports a position, since chart-spec
// expressions are single-line and typically short.
type Parser struct {
	sc   *scanner
	cur  token
	peek *token
}

// Parse parses src as a single expression and returns its ast.Node, or a
// CompilationError if src is not well-formed.
func Parse(src string) (ast.Node, error) {
	p := &Parser{sc: newScanner(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, vferrors.Compilation("unexpected trailing input near %q", p.cur.text)
	}
	return node, nil
}

func (p *Parser) advance() error {
	if p.peek != nil {
		p.cur = *p.peek
		p.peek = nil
		return nil
	}
	t, err := p.sc.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) isPunct(s string) bool { return p.cur.kind == tokPunct && p.cur.text == s }

func (p *Parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return vferrors.Compilation("expected %q, got %q", s, p.cur.text)
	}
	return p.advance()
}

// parseConditional handles the ternary operator, the lowest-precedence
// construct in the grammar.
func (p *Parser) parseConditional() (ast.Node, error) {
	test, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return test, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	consequent, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	alternate, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Test: test, Consequent: consequent, Alternate: alternate}, nil
}

func (p *Parser) parseLogicalOr() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"||"}, (*Parser).parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"&&"}, (*Parser).parseEquality)
}

func (p *Parser) parseEquality() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"===", "!==", "==", "!="}, (*Parser).parseRelational)
}
func (p *Parser) parseRelational() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"<=", ">=", "<", ">"}, (*Parser).parseAdditive)
}
func (p *Parser) parseAdditive() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"+", "-"}, (*Parser).parseMultiplicative)
}
func (p *Parser) parseMultiplicative() (ast.Node, error) {
	return p.parseBinaryLevel([]string{"*", "/", "%"}, (*Parser).parseUnary)
}

func (p *Parser) parseBinaryLevel(ops []string, next func(*Parser) (ast.Node, error)) (ast.Node, error) {
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		if p.cur.kind == tokPunct {
			for _, op := range ops {
				if p.cur.text == op {
					matched = op
					break
				}
			}
		}
		if matched == "" {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next(p)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.BinaryOp(matched), Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Node, error) {
	if p.isPunct("-") || p.isPunct("!") {
		op := ast.UnaryOp(p.cur.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Operand: operand}, nil
	}
	return p.parseMember()
}

func (p *Parser) parseMember() (ast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("."):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.kind != tokIdent {
				return nil, vferrors.Compilation("expected property name after '.', got %q", p.cur.text)
			}
			prop := p.cur.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			node = &ast.Member{Object: node, Prop: prop}
		case p.isPunct("["):
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			node = &ast.Member{Object: node, Index: idx, Computed: true}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	switch {
	case p.cur.kind == tokNumber:
		v := p.cur.num
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: v}, nil

	case p.cur.kind == tokString:
		v := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: v}, nil

	case p.cur.kind == tokIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch name {
		case "true":
			return &ast.Literal{Value: true}, nil
		case "false":
			return &ast.Literal{Value: false}, nil
		case "null":
			return &ast.Literal{Value: nil}, nil
		}
		if p.isPunct("(") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			var args []ast.Node
			for !p.isPunct(")") {
				arg, err := p.parseConditional()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.isPunct(",") {
					if err := p.advance(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return &ast.Call{Callee: name, Args: args}, nil
		}
		return &ast.Identifier{Name: name}, nil

	case p.isPunct("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return inner, nil

	case p.isPunct("["):
		if err := p.advance(); err != nil {
			return nil, err
		}
		var elems []ast.Node
		for !p.isPunct("]") {
			el, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Elements: elems}, nil

	default:
		return nil, vferrors.Compilation("unexpected token %q", p.cur.text)
	}
}
