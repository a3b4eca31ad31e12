// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// A ParseFailure is a parse or stream error with its source position.
// Line and Col are 1-based; both are zero when the engine reported no
// usable location.
type ParseFailure struct {
	Msg  string
	Line int
	Col  int
	IO   bool // the failure was reading input, not parsing it
}

func (e *ParseFailure) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return e.Msg
}

// ParseDocument parses src as a single YAML document and returns a new
// document owning the converted tree. Inputs that contain no document
// at all fail; multi-document inputs yield the first document. Aliases
// are kept as aliases; only stream loading resolves them.
func ParseDocument(src []byte) (*Doc, *ParseFailure) {
	d := NewDoc()
	root, fail := parseInto(d, src, false)
	if fail != nil {
		return nil, fail
	}
	if root == nil {
		return nil, &ParseFailure{Msg: "no document found in input"}
	}
	root.attached = true
	d.root = root
	return d, nil
}

// BuildFromString parses src as a freestanding YAML fragment and
// returns its root as a detached node of d.
func BuildFromString(d *Doc, src string) (*Node, *ParseFailure) {
	root, fail := parseInto(d, []byte(src), false)
	if fail != nil {
		return nil, fail
	}
	if root == nil {
		return nil, &ParseFailure{Msg: "no document found in input"}
	}
	return root, nil
}

// parseInto parses src and converts the first document body into nodes
// of d. A nil root with a nil failure means the input held no document
// (empty or comments only).
func parseInto(d *Doc, src []byte, resolve bool) (*Node, *ParseFailure) {
	f, err := parser.ParseBytes(src, parser.ParseComments)
	if err != nil {
		return nil, capture(err)
	}
	if f == nil || len(f.Docs) == 0 || f.Docs[0].Body == nil {
		return nil, nil
	}
	c := &converter{doc: d, anchors: make(map[string]*Node)}
	root := c.node(f.Docs[0].Body)
	if resolve {
		c.resolve()
	}
	markSubtreeAttached(root)
	root.attached = false
	return root, nil
}

type converter struct {
	doc     *Doc
	anchors map[string]*Node
	aliases []*Node
}

func (c *converter) node(nv ast.Node) *Node {
	if nv == nil {
		return &Node{doc: c.doc, kind: KindScalar, style: StylePlain}
	}
	var n *Node
	switch t := nv.(type) {
	case *ast.TagNode:
		n = c.node(t.Value)
		if t.Start != nil {
			n.tag = strings.TrimSpace(t.Start.Value)
		}
		return n // position and comment follow the inner node

	case *ast.AnchorNode:
		name := tokenText(t.Name)
		n = c.node(t.Value)
		n.anchor = name
		if name != "" {
			c.anchors[name] = n
		}
		return n

	case *ast.AliasNode:
		n = &Node{doc: c.doc, kind: KindScalar, style: StyleAlias, text: tokenText(t.Value)}
		c.aliases = append(c.aliases, n)

	case *ast.MappingNode:
		n = &Node{doc: c.doc, kind: KindMapping, style: blockOrFlow(t.IsFlowStyle)}
		for _, mv := range t.Values {
			n.pairs = append(n.pairs, c.pair(mv))
		}

	case *ast.MappingValueNode:
		// A single-pair mapping parses to the bare pair node.
		n = &Node{doc: c.doc, kind: KindMapping, style: StyleBlock}
		n.pairs = append(n.pairs, c.pair(t))

	case *ast.SequenceNode:
		n = &Node{doc: c.doc, kind: KindSequence, style: blockOrFlow(t.IsFlowStyle)}
		for _, it := range t.Values {
			n.items = append(n.items, c.node(it))
		}

	case *ast.StringNode:
		n = &Node{doc: c.doc, kind: KindScalar, style: styleOf(nv.GetToken()), text: t.Value}

	case *ast.LiteralNode:
		style := StyleLiteral
		if t.Start != nil && strings.HasPrefix(t.Start.Value, ">") {
			style = StyleFolded
		}
		var text string
		if t.Value != nil {
			text = t.Value.Value
		}
		n = &Node{doc: c.doc, kind: KindScalar, style: style, text: text}

	case *ast.NullNode:
		n = &Node{doc: c.doc, kind: KindScalar, style: StylePlain, text: nullText(nv.GetToken())}

	default:
		// Integer, float, bool, infinity and NaN nodes all keep their
		// original spelling; the raw token text is the scalar value.
		var text string
		style := StylePlain
		if tk := nv.GetToken(); tk != nil {
			text = tk.Value
			style = styleOf(tk)
		}
		n = &Node{doc: c.doc, kind: KindScalar, style: style, text: text}
	}
	c.pos(n, nv)
	c.comment(n, nv)
	return n
}

func (c *converter) pair(mv *ast.MappingValueNode) *Pair {
	k := c.node(mv.Key)
	c.comment(k, mv)
	return &Pair{Key: k, Value: c.node(mv.Value)}
}

func (c *converter) pos(n *Node, nv ast.Node) {
	if tk := nv.GetToken(); tk != nil && tk.Position != nil {
		n.line = tk.Position.Line
		n.col = tk.Position.Column
	}
}

func (c *converter) comment(n *Node, nv ast.Node) {
	cg := nv.GetComment()
	if cg == nil {
		return
	}
	for _, cm := range cg.Comments {
		if cm == nil || cm.Token == nil {
			continue
		}
		text := strings.TrimPrefix(cm.Token.Value, "#")
		n.comments = append(n.comments, strings.TrimRight(strings.TrimPrefix(text, " "), "\r\n"))
	}
}

// resolve replaces every alias whose anchor is known by a deep copy of
// the anchored subtree. Unresolvable aliases are left in place and
// re-emit as aliases.
func (c *converter) resolve() {
	for _, a := range c.aliases {
		target, ok := c.anchors[a.text]
		if !ok || target == a {
			continue
		}
		cp := Copy(c.doc, target)
		cp.anchor = ""
		*a = *cp
	}
}

func markSubtreeAttached(n *Node) {
	n.attached = true
	for _, it := range n.items {
		markSubtreeAttached(it)
	}
	for _, p := range n.pairs {
		markSubtreeAttached(p.Key)
		markSubtreeAttached(p.Value)
	}
}

func blockOrFlow(flow bool) Style {
	if flow {
		return StyleFlow
	}
	return StyleBlock
}

func styleOf(tk *token.Token) Style {
	if tk == nil {
		return StylePlain
	}
	switch tk.Type {
	case token.SingleQuoteType:
		return StyleSingleQuoted
	case token.DoubleQuoteType:
		return StyleDoubleQuoted
	}
	return StylePlain
}

func tokenText(nv ast.Node) string {
	if nv == nil {
		return ""
	}
	if tk := nv.GetToken(); tk != nil {
		return tk.Value
	}
	return ""
}

// nullText preserves the original spelling of an explicit null ("~",
// "null", "Null", ...) and falls back to the empty string for implicit
// nulls, whose token belongs to surrounding syntax.
func nullText(tk *token.Token) string {
	if tk == nil {
		return ""
	}
	v := tk.Value
	if v == "~" || strings.EqualFold(v, "null") {
		return v
	}
	return ""
}

// locPrefix matches the "[line:col] " prefix goccy puts on syntax
// errors whose token was lost to wrapping.
var locPrefix = regexp.MustCompile(`^\[(\d+):(\d+)\]\s*`)

// capture distills a goccy error into a ParseFailure, keeping only the
// first message line and normalizing the position so that line and
// column are 1-based whenever a location is known at all.
func capture(err error) *ParseFailure {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimPrefix(msg, "yaml: ")

	line, col := 0, 0
	var tokErr interface{ GetToken() *token.Token }
	if errors.As(err, &tokErr) {
		if tk := tokErr.GetToken(); tk != nil && tk.Position != nil {
			line, col = tk.Position.Line, tk.Position.Column
		}
	}
	if m := locPrefix.FindStringSubmatch(msg); m != nil {
		msg = strings.TrimSpace(msg[len(m[0]):])
		if line == 0 {
			line, _ = strconv.Atoi(m[1])
			col, _ = strconv.Atoi(m[2])
		}
	}
	if line <= 0 {
		line, col = 0, 0
	} else if col <= 0 {
		col = 1
	}
	return &ParseFailure{Msg: msg, Line: line, Col: col}
}
