package shader

import (
	"fmt"
)

type nodeKind int

const (
	nodeStruct nodeKind = iota
	nodeList
	nodeString
	nodeNumber
	nodeIdent
)

// node is one value of the generic syntax tree. A struct node has a possibly empty Name
// (the tag before the parentheses) and either named Fields or positional Elems. A bare
// identifier such as None, true or Back is a nodeIdent.
type node struct {
	Kind   nodeKind
	Pos    int
	Name   string
	Text   string
	Fields []field
	Elems  []*node
}

type field struct {
	Name  string
	Pos   int
	Value *node
}

// field returns the named field's value, or nil when absent.
func (n *node) field(name string) *node {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

func (n *node) describe() string {
	switch n.Kind {
	case nodeStruct:
		if n.Name != "" {
			return n.Name + "(...)"
		}
		return "(...)"
	case nodeList:
		return "[...]"
	case nodeString:
		return "string"
	case nodeNumber:
		return "number " + n.Text
	default:
		return n.Text
	}
}

type parser struct {
	src  string
	toks []token
	pos  int
}

// parseTree parses src into a generic syntax tree.
//
// Parameters:
//   - src: the asset text
//
// Returns:
//   - *node: the root value
//   - error: a *MalformedAssetError on the first syntax error
func parseTree(src string) (*node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	root, err := p.value()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %s after end of asset", tok.Kind)
	}
	return root, nil
}

func (p *parser) current() token {
	if p.pos >= len(p.toks) {
		return token{Kind: tokEOF, Start: len(p.src)}
	}
	return p.toks[p.pos]
}

func (p *parser) peek(offset int) token {
	if p.pos+offset >= len(p.toks) {
		return token{Kind: tokEOF, Start: len(p.src)}
	}
	return p.toks[p.pos+offset]
}

func (p *parser) advance() token {
	tok := p.current()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.current()
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expected %s, got %s", kind, tok.Kind)
	}
	p.advance()
	return tok, nil
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return malformedAt(p.src, tok.Start, fmt.Sprintf(format, args...))
}

func (p *parser) value() (*node, error) {
	tok := p.current()
	switch tok.Kind {
	case tokString:
		p.advance()
		return &node{Kind: nodeString, Pos: tok.Start, Text: tok.Text}, nil
	case tokNumber:
		p.advance()
		return &node{Kind: nodeNumber, Pos: tok.Start, Text: tok.Text}, nil
	case tokLBracket:
		return p.list()
	case tokLParen:
		return p.structBody(tok.Start, "")
	case tokIdent:
		p.advance()
		if p.current().Kind == tokLParen {
			return p.structBody(tok.Start, tok.Text)
		}
		return &node{Kind: nodeIdent, Pos: tok.Start, Text: tok.Text}, nil
	default:
		return nil, p.errorf(tok, "expected a value, got %s", tok.Kind)
	}
}

func (p *parser) list() (*node, error) {
	open, err := p.expect(tokLBracket)
	if err != nil {
		return nil, err
	}
	n := &node{Kind: nodeList, Pos: open.Start}
	for p.current().Kind != tokRBracket {
		elem, err := p.value()
		if err != nil {
			return nil, err
		}
		n.Elems = append(n.Elems, elem)
		if p.current().Kind != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRBracket); err != nil {
		return nil, err
	}
	return n, nil
}

// structBody parses "( ... )" as either named fields (ident ':' value) or positional elements.
// Mixing both forms in one body is an error.
func (p *parser) structBody(start int, name string) (*node, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	n := &node{Kind: nodeStruct, Pos: start, Name: name}
	named := p.current().Kind == tokIdent && p.peek(1).Kind == tokColon
	for p.current().Kind != tokRParen {
		if named {
			key, err := p.expect(tokIdent)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokColon); err != nil {
				return nil, err
			}
			for _, f := range n.Fields {
				if f.Name == key.Text {
					return nil, p.errorf(key, "duplicate field %q", key.Text)
				}
			}
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			n.Fields = append(n.Fields, field{Name: key.Text, Pos: key.Start, Value: v})
		} else {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			if p.current().Kind == tokColon {
				return nil, p.errorf(p.current(), "cannot mix named fields and positional values")
			}
			n.Elems = append(n.Elems, v)
		}
		if p.current().Kind != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return n, nil
}
