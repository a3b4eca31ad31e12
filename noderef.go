// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package fyaml

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"github.com/0k/fyaml/internal/engine"
	"go4.org/mem"
)

// A NodeRef is a read-only reference into a document tree. It stays
// valid until its document is closed or an Editor session on the
// document ends; using it past that point panics. References obtained
// from an Editor are additionally invalidated by every mutation in the
// session.
//
// The zero NodeRef refers to nothing and panics on use; the ok result
// of the lookup that produced it must be consulted first.
type NodeRef struct {
	d   *Document
	n   *engine.Node
	gen uint64
	ed  *Editor // non-nil for session-scoped references
	mut uint64  // session mutation count at creation
}

// check panics unless the reference is still valid. The distinct
// messages tell stale references, ended sessions and closed documents
// apart, since each points at a different caller bug.
func (r NodeRef) check() {
	if r.d == nil {
		panic("fyaml: use of zero NodeRef")
	}
	if r.d.closed {
		panic("fyaml: NodeRef used after document Close")
	}
	if r.ed != nil {
		if r.d.editor != r.ed || r.ed.closed {
			panic("fyaml: NodeRef used after its edit session ended")
		}
		if r.mut != r.ed.mut {
			panic("fyaml: NodeRef invalidated by a mutation in its edit session")
		}
		return
	}
	if r.d.editor != nil {
		panic("fyaml: NodeRef used during an open edit session")
	}
	if r.gen != r.d.gen {
		panic("fyaml: stale NodeRef")
	}
}

// deriv builds a reference to child carrying r's validity scope.
func (r NodeRef) deriv(child *engine.Node) NodeRef {
	return NodeRef{d: r.d, n: child, gen: r.gen, ed: r.ed, mut: r.mut}
}

// Document returns the document this reference points into.
func (r NodeRef) Document() *Document { r.check(); return r.d }

// Kind returns the structural class of the node.
func (r NodeRef) Kind() Kind { r.check(); return r.n.Kind() }

// Style returns the node's presentation style.
func (r NodeRef) Style() Style { r.check(); return r.n.Style() }

func (r NodeRef) IsScalar() bool   { return r.Kind() == KindScalar }
func (r NodeRef) IsSequence() bool { return r.Kind() == KindSequence }
func (r NodeRef) IsMapping() bool  { return r.Kind() == KindMapping }

// IsQuoted reports whether the scalar was written with quotes.
func (r NodeRef) IsQuoted() bool {
	s := r.Style()
	return s == StyleSingleQuoted || s == StyleDoubleQuoted
}

// IsNonPlain reports whether the scalar was written in any marked-up
// form (quoted, literal or folded). Type inference never applies to
// non-plain scalars.
func (r NodeRef) IsNonPlain() bool {
	switch r.Style() {
	case StyleSingleQuoted, StyleDoubleQuoted, StyleLiteral, StyleFolded:
		return true
	}
	return false
}

// Scalar returns the node's scalar content as a read-only view of the
// document's memory, without copying. The view is only good for as
// long as the reference itself.
func (r NodeRef) Scalar() (mem.RO, error) {
	text, err := r.scalarText()
	if err != nil {
		return mem.RO{}, err
	}
	return mem.S(text), nil
}

// ScalarStr is Scalar for callers that want a plain string.
func (r NodeRef) ScalarStr() (string, error) {
	return r.scalarText()
}

// ScalarBytes returns a copy of the scalar content. Unlike Scalar and
// ScalarStr it does not require the content to be valid UTF-8.
func (r NodeRef) ScalarBytes() ([]byte, error) {
	r.check()
	if r.n.Kind() != engine.KindScalar {
		return nil, mismatch("scalar", r.n.Kind())
	}
	text := r.n.Text()
	if len(text) > MaxScalarLen {
		return nil, &ScalarSizeError{Len: len(text)}
	}
	return []byte(text), nil
}

func (r NodeRef) scalarText() (string, error) {
	r.check()
	if r.n.Kind() != engine.KindScalar {
		return "", mismatch("scalar", r.n.Kind())
	}
	text := r.n.Text()
	if len(text) > MaxScalarLen {
		return "", &ScalarSizeError{Len: len(text)}
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: scalar content is not valid UTF-8", ErrEncoding)
	}
	return text, nil
}

// Tag returns the node's tag as a read-only view; ok is false when the
// node carries no tag.
func (r NodeRef) Tag() (_ mem.RO, ok bool) {
	r.check()
	t := r.n.Tag()
	if t == "" {
		return mem.RO{}, false
	}
	return mem.S(t), true
}

// TagStr is Tag as a plain string.
func (r NodeRef) TagStr() (string, bool) {
	r.check()
	t := r.n.Tag()
	return t, t != ""
}

// At resolves a /-separated path relative to this node; see
// Document.At for the path syntax.
func (r NodeRef) At(path string) (_ NodeRef, ok bool) {
	r.check()
	n := engine.ByPath(r.n, path)
	if n == nil {
		return NodeRef{}, false
	}
	return r.deriv(n), true
}

// SeqLen returns the number of items of a sequence node.
func (r NodeRef) SeqLen() (int, error) {
	r.check()
	if r.n.Kind() != engine.KindSequence {
		return 0, mismatch("sequence", r.n.Kind())
	}
	return r.n.SeqCount(), nil
}

// SeqGet returns the item at index i; negative indexes count from the
// end. ok is false for non-sequences and out-of-range indexes.
func (r NodeRef) SeqGet(i int) (_ NodeRef, ok bool) {
	r.check()
	if r.n.Kind() != engine.KindSequence {
		return NodeRef{}, false
	}
	n := r.n.SeqIndex(i)
	if n == nil {
		return NodeRef{}, false
	}
	return r.deriv(n), true
}

// MapLen returns the number of pairs of a mapping node.
func (r NodeRef) MapLen() (int, error) {
	r.check()
	if r.n.Kind() != engine.KindMapping {
		return 0, mismatch("mapping", r.n.Kind())
	}
	return r.n.MapCount(), nil
}

// MapGet returns the value for the given scalar key. ok is false for
// non-mappings and missing keys.
func (r NodeRef) MapGet(key string) (_ NodeRef, ok bool) {
	r.check()
	if r.n.Kind() != engine.KindMapping {
		return NodeRef{}, false
	}
	n := r.n.MapGet(key)
	if n == nil {
		return NodeRef{}, false
	}
	return r.deriv(n), true
}

// Items ranges over the items of a sequence node, in order. Ranging
// over any other kind yields nothing. While any iteration on the
// document is in progress, mutations through an Editor are refused
// with ErrMutateWhileIterating.
func (r NodeRef) Items() iter.Seq[NodeRef] {
	return func(yield func(NodeRef) bool) {
		r.check()
		if r.n.Kind() != engine.KindSequence {
			return
		}
		r.d.iters++
		defer func() { r.d.iters-- }()
		for i := 0; i < r.n.SeqCount(); i++ {
			if !yield(r.deriv(r.n.SeqAt(i))) {
				return
			}
		}
	}
}

// Pairs ranges over the key/value pairs of a mapping node, in order.
// Ranging over any other kind yields nothing; the same mutation
// exclusion as Items applies.
func (r NodeRef) Pairs() iter.Seq2[NodeRef, NodeRef] {
	return func(yield func(NodeRef, NodeRef) bool) {
		r.check()
		if r.n.Kind() != engine.KindMapping {
			return
		}
		r.d.iters++
		defer func() { r.d.iters-- }()
		for i := 0; i < r.n.MapCount(); i++ {
			k, v := r.n.PairAt(i)
			if !yield(r.deriv(k), r.deriv(v)) {
				return
			}
		}
	}
}

// Emit renders the subtree as YAML text. Unlike Document.Emit the
// result has no trailing newline.
func (r NodeRef) Emit() (string, error) {
	r.check()
	return engine.EmitNode(r.n), nil
}

// Value wraps the node for typed scalar access.
func (r NodeRef) Value() ValueRef { return ValueRef{r} }
