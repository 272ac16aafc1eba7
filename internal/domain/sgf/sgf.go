package sgf

import (
	"fmt"
	"strings"

	errs "go_arena/internal/errors"
)

// GameTree представляет одно дерево в SGF (узел + варианты)
type GameTree struct {
	Nodes    []Node      // основная линия
	Children []*GameTree // варианты
}

// Node is one SGF node, e.g. B[pd] or AB[aa][bb]. Properties may repeat.
type Node struct {
	Properties map[string][]string
}

type SGF struct {
	Root *GameTree
}

// Get returns the first value of a property of the root node.
func (s *SGF) Get(key string) string {
	if s.Root == nil || len(s.Root.Nodes) == 0 {
		return ""
	}
	if values := s.Root.Nodes[0].Properties[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// MainLine returns the nodes of the first variation from the root down.
func (s *SGF) MainLine() []Node {
	var nodes []Node
	for tree := s.Root; tree != nil; {
		nodes = append(nodes, tree.Nodes...)
		if len(tree.Children) == 0 {
			break
		}
		tree = tree.Children[0]
	}
	return nodes
}

// Parse reads a single game collection. Only the first game tree is kept.
func Parse(text string) (*SGF, error) {
	p := &parser{src: text}
	p.skipSpace()
	tree, err := p.gameTree()
	if err != nil {
		return nil, err
	}
	return &SGF{Root: tree}, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: sgf at %d: %s", errs.ErrMalformedSGF, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) gameTree() (*GameTree, error) {
	if p.peek() != '(' {
		return nil, p.errorf("expected '('")
	}
	p.pos++
	tree := &GameTree{}
	for {
		p.skipSpace()
		switch p.peek() {
		case ';':
			p.pos++
			node, err := p.node()
			if err != nil {
				return nil, err
			}
			tree.Nodes = append(tree.Nodes, node)
		case '(':
			child, err := p.gameTree()
			if err != nil {
				return nil, err
			}
			tree.Children = append(tree.Children, child)
		case ')':
			p.pos++
			return tree, nil
		default:
			return nil, p.errorf("unexpected %q", p.peek())
		}
	}
}

func (p *parser) node() (Node, error) {
	node := Node{Properties: map[string][]string{}}
	for {
		p.skipSpace()
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= 'A' && p.src[p.pos] <= 'Z' {
			p.pos++
		}
		if start == p.pos {
			return node, nil
		}
		key := p.src[start:p.pos]
		p.skipSpace()
		if p.peek() != '[' {
			return node, p.errorf("property %s has no value", key)
		}
		for p.peek() == '[' {
			value, err := p.value()
			if err != nil {
				return node, err
			}
			node.Properties[key] = append(node.Properties[key], value)
			p.skipSpace()
		}
	}
}

func (p *parser) value() (string, error) {
	p.pos++ // '['
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == ']':
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated value")
}

// Escape prepares text for use inside a property value.
func Escape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, "]", `\]`)
}
