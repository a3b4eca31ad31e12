// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

// Package engine maintains the mutable YAML document trees behind the
// public API. It delegates grammar to the goccy parser, converts each
// parse result once into a tree it owns outright, and provides the
// primitive structural operations the safety layer composes: path
// lookup, insertion, removal, deep copy, and style-preserving emission.
//
// The engine performs no concurrency control and only light argument
// validation of its own; the exported package enforces the ownership
// and aliasing rules before calling down here. Node and document
// lifetimes are tracked explicitly (attached, freed) so that misuse by
// the layer above fails loudly instead of corrupting a tree.
package engine

import (
	"errors"
	"strconv"
	"strings"
)

// Kind identifies the structural class of a node.
type Kind uint8

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "invalid"
}

// Style records how a node was (or should be) presented in text form.
// StyleAny lets the emitter choose the safest presentation.
type Style uint8

const (
	StyleAny Style = iota
	StylePlain
	StyleSingleQuoted
	StyleDoubleQuoted
	StyleLiteral
	StyleFolded
	StyleFlow
	StyleBlock
	StyleAlias
)

func (s Style) String() string {
	switch s {
	case StyleAny:
		return "any"
	case StylePlain:
		return "plain"
	case StyleSingleQuoted:
		return "single-quoted"
	case StyleDoubleQuoted:
		return "double-quoted"
	case StyleLiteral:
		return "literal"
	case StyleFolded:
		return "folded"
	case StyleFlow:
		return "flow"
	case StyleBlock:
		return "block"
	case StyleAlias:
		return "alias"
	}
	return "invalid"
}

// A Doc owns a single document tree. The zero value is not useful; use
// NewDoc or one of the parse entry points.
type Doc struct {
	root   *Node
	parser *Parser // non-nil when the document was loaded from a stream
	freed  bool
}

// NewDoc returns an empty document with no root.
func NewDoc() *Doc { return &Doc{} }

// Root returns the document root, or nil for an empty document.
func (d *Doc) Root() *Node { return d.root }

// Freed reports whether the document has been destroyed.
func (d *Doc) Freed() bool { return d.freed }

// FromParser reports whether the document is owned by a stream parser
// and must be released through it.
func (d *Doc) FromParser() bool { return d.parser != nil }

// SetRoot installs n as the document root, freeing any previous root.
// A nil n leaves the document empty.
func (d *Doc) SetRoot(n *Node) error {
	if n != nil {
		if n.doc != d {
			return errors.New("node belongs to a different document")
		}
		if n.freed {
			return errors.New("node is freed")
		}
		if n.attached {
			return errors.New("node is already attached")
		}
	}
	old := d.root
	d.root = n
	if n != nil {
		n.attached = true
	}
	if old != nil {
		old.attached = false
		old.Free()
	}
	return nil
}

// Destroy releases the document and its whole tree. Stream-loaded
// documents must instead be released through their parser.
func (d *Doc) Destroy() error {
	if d.freed {
		return errors.New("document already destroyed")
	}
	if d.parser != nil {
		return errors.New("document is owned by a stream parser")
	}
	d.release()
	return nil
}

func (d *Doc) release() {
	d.freed = true
	if d.root != nil {
		d.root.markFreed()
		d.root = nil
	}
}

// A Pair is one key/value entry of a mapping node.
type Pair struct {
	Key, Value *Node
}

// A Node is one vertex of a document tree. Nodes always belong to
// exactly one Doc; moving content between documents goes through Copy.
type Node struct {
	doc      *Doc
	kind     Kind
	style    Style
	tag      string
	anchor   string
	text     string // scalar content, or alias target name
	items    []*Node
	pairs    []*Pair
	comments []string
	attached bool
	freed    bool
	line     int // 1-based source position, 0 when synthesized
	col      int
}

func (n *Node) Kind() Kind     { return n.kind }
func (n *Node) Style() Style   { return n.style }
func (n *Node) Tag() string    { return n.tag }
func (n *Node) Anchor() string { return n.anchor }
func (n *Node) Text() string   { return n.text }
func (n *Node) Doc() *Doc      { return n.doc }

// Line and Col report the 1-based source position of the node, or zero
// for nodes that were built rather than parsed.
func (n *Node) Line() int { return n.line }
func (n *Node) Col() int  { return n.col }

// SetStyle applies s to the node if it is meaningful for the node's
// kind, and returns the previously effective style. An inapplicable
// style leaves the node unchanged.
func (n *Node) SetStyle(s Style) Style {
	prev := n.style
	if styleValid(n.kind, s) {
		n.style = s
	}
	return prev
}

func styleValid(k Kind, s Style) bool {
	switch s {
	case StyleAny:
		return true
	case StylePlain, StyleSingleQuoted, StyleDoubleQuoted, StyleLiteral, StyleFolded:
		return k == KindScalar
	case StyleFlow, StyleBlock:
		return k != KindScalar
	}
	return false
}

// SetTag attaches a tag to the node. Tags use YAML shorthand form and
// must begin with "!".
func (n *Node) SetTag(tag string) error {
	if !strings.HasPrefix(tag, "!") {
		return errors.New("tag must begin with '!'")
	}
	n.tag = tag
	return nil
}

// Attached reports whether the node is linked into a parent or is a
// document root.
func (n *Node) Attached() bool { return n.attached }

// Freed reports whether the node has been released.
func (n *Node) Freed() bool { return n.freed }

// Free releases a detached node and its subtree. Freeing twice, or
// freeing a node still linked into a tree, is a bug in the caller and
// panics.
func (n *Node) Free() {
	if n.freed {
		panic("engine: double free of node")
	}
	if n.attached {
		panic("engine: free of attached node")
	}
	n.markFreed()
}

func (n *Node) markFreed() {
	n.freed = true
	for _, it := range n.items {
		it.markFreed()
	}
	for _, p := range n.pairs {
		p.Key.markFreed()
		p.Value.markFreed()
	}
}

// CreateScalar builds a detached scalar node with the given text. The
// emitter chooses a presentation unless a style is set explicitly.
func CreateScalar(d *Doc, text string) *Node {
	return &Node{doc: d, kind: KindScalar, style: StyleAny, text: text}
}

// CreateSequence builds a detached empty sequence node.
func CreateSequence(d *Doc) *Node {
	return &Node{doc: d, kind: KindSequence, style: StyleBlock}
}

// CreateMapping builds a detached empty mapping node.
func CreateMapping(d *Doc) *Node {
	return &Node{doc: d, kind: KindMapping, style: StyleBlock}
}

// Copy deep-copies src into document dst and returns the detached copy.
// src may belong to any document, including dst's.
func Copy(dst *Doc, src *Node) *Node {
	n := &Node{
		doc:    dst,
		kind:   src.kind,
		style:  src.style,
		tag:    src.tag,
		anchor: src.anchor,
		text:   src.text,
	}
	if len(src.comments) > 0 {
		n.comments = append([]string(nil), src.comments...)
	}
	for _, it := range src.items {
		c := Copy(dst, it)
		c.attached = true
		n.items = append(n.items, c)
	}
	for _, p := range src.pairs {
		k, v := Copy(dst, p.Key), Copy(dst, p.Value)
		k.attached, v.attached = true, true
		n.pairs = append(n.pairs, &Pair{Key: k, Value: v})
	}
	return n
}

// SeqCount returns the number of items of a sequence node, and zero for
// any other kind.
func (n *Node) SeqCount() int { return len(n.items) }

// SeqAt returns the item at 0-based position i, or nil if out of range.
func (n *Node) SeqAt(i int) *Node {
	if i < 0 || i >= len(n.items) {
		return nil
	}
	return n.items[i]
}

// SeqIndex is SeqAt with negative indexing: -1 is the last item.
func (n *Node) SeqIndex(i int) *Node {
	if i < 0 {
		i += len(n.items)
	}
	return n.SeqAt(i)
}

// MapCount returns the number of pairs of a mapping node, and zero for
// any other kind.
func (n *Node) MapCount() int { return len(n.pairs) }

// PairAt returns the key and value of the pair at position i.
func (n *Node) PairAt(i int) (key, value *Node) {
	if i < 0 || i >= len(n.pairs) {
		return nil, nil
	}
	p := n.pairs[i]
	return p.Key, p.Value
}

// MapGet returns the value whose scalar key spells key, or nil. Pairs
// with collection keys never match.
func (n *Node) MapGet(key string) *Node {
	if i := n.findPair(key); i >= 0 {
		return n.pairs[i].Value
	}
	return nil
}

func (n *Node) findPair(key string) int {
	for i, p := range n.pairs {
		if p.Key != nil && p.Key.kind == KindScalar && p.Key.style != StyleAlias && p.Key.text == key {
			return i
		}
	}
	return -1
}

func checkInsert(parent, item *Node) error {
	if item.doc != parent.doc {
		return errors.New("node belongs to a different document")
	}
	if item.freed || parent.freed {
		return errors.New("node is freed")
	}
	if item.attached {
		return errors.New("node is already attached")
	}
	return nil
}

// SeqAppend links a detached item at the end of a sequence.
func SeqAppend(seq, item *Node) error {
	if seq.kind != KindSequence {
		return errors.New("node is not a sequence")
	}
	if err := checkInsert(seq, item); err != nil {
		return err
	}
	item.attached = true
	seq.items = append(seq.items, item)
	return nil
}

// SeqInsertBefore links a detached item into a sequence immediately
// before next, which must currently be an item of seq.
func SeqInsertBefore(seq, next, item *Node) error {
	if seq.kind != KindSequence {
		return errors.New("node is not a sequence")
	}
	if err := checkInsert(seq, item); err != nil {
		return err
	}
	for i, it := range seq.items {
		if it == next {
			item.attached = true
			seq.items = append(seq.items[:i], append([]*Node{item}, seq.items[i:]...)...)
			return nil
		}
	}
	return errors.New("successor is not an item of the sequence")
}

// SeqRemove unlinks item from seq and returns it detached, or nil if
// item is not an item of seq.
func SeqRemove(seq, item *Node) *Node {
	for i, it := range seq.items {
		if it == item {
			seq.items = append(seq.items[:i], seq.items[i+1:]...)
			item.attached = false
			return item
		}
	}
	return nil
}

// MapAppend links a detached key and value as a new pair of a mapping.
func MapAppend(m, key, value *Node) error {
	if m.kind != KindMapping {
		return errors.New("node is not a mapping")
	}
	if err := checkInsert(m, key); err != nil {
		return err
	}
	if err := checkInsert(m, value); err != nil {
		return err
	}
	key.attached, value.attached = true, true
	m.pairs = append(m.pairs, &Pair{Key: key, Value: value})
	return nil
}

// MapSet replaces the value of the pair whose scalar key spells key,
// linking the detached value in its place. The previous value is
// returned detached; found is false (and value stays detached) when no
// pair matches.
func MapSet(m *Node, key string, value *Node) (old *Node, found bool) {
	i := m.findPair(key)
	if i < 0 {
		return nil, false
	}
	old = m.pairs[i].Value
	old.attached = false
	value.attached = true
	m.pairs[i].Value = value
	return old, true
}

// MapDelete unlinks the pair whose scalar key spells key and returns it
// with both nodes detached.
func MapDelete(m *Node, key string) (*Pair, bool) {
	i := m.findPair(key)
	if i < 0 {
		return nil, false
	}
	p := m.pairs[i]
	m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
	p.Key.attached = false
	p.Value.attached = false
	return p, true
}

// ByPath walks a /-separated path from n: mapping segments select by
// scalar key, sequence segments by integer index (negative counts from
// the end). An empty path, or bare "/", designates n itself. Returns
// nil when any step does not resolve.
func ByPath(n *Node, path string) *Node {
	cur := n
	for _, seg := range splitPath(path) {
		if cur == nil {
			return nil
		}
		switch cur.kind {
		case KindMapping:
			cur = cur.MapGet(seg)
		case KindSequence:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil
			}
			cur = cur.SeqIndex(i)
		default:
			return nil
		}
	}
	return cur
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
