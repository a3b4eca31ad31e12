// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package fyaml

import (
	"fmt"

	"github.com/0k/fyaml/internal/engine"
)

// ownership records how a document's backing input is held, which in
// turn decides how the document is released on Close.
type ownership int

const (
	ownNone   ownership = iota // built empty, no input
	ownEngine                  // engine holds a copy of the input
	ownCaller                  // caller-provided bytes, borrowed for the lifetime
	ownParser                  // loaded from a stream, released via its parser
)

// A Document owns one parsed YAML tree. All reads hand out NodeRef
// values tied to the document; mutation goes through an exclusive
// Editor session (see Edit). A Document and every reference derived
// from it is confined to a single goroutine.
//
// Close releases the document. Using a reference obtained before Close,
// or before the end of an Editor session, is a programming error and
// panics rather than touching freed state.
type Document struct {
	eng    *engine.Doc
	own    ownership
	input  []byte // pinned caller bytes for ownCaller
	state  *parserState
	gen    uint64
	editor *Editor
	iters  int
	closed bool
}

// Parse parses text as a single YAML document. Multi-document input
// yields the first document; use NewStream for the rest. Empty input
// is an error.
func Parse(text string) (*Document, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	}
	d, fail := engine.ParseDocument([]byte(text))
	if fail != nil {
		return nil, parseFailure(fail)
	}
	return &Document{eng: d, own: ownEngine}, nil
}

// ParseBytes parses data as a single YAML document. The document holds
// on to data until Close; the caller must not mutate it in between.
func ParseBytes(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	}
	d, fail := engine.ParseDocument(data)
	if fail != nil {
		return nil, parseFailure(fail)
	}
	return &Document{eng: d, own: ownCaller, input: data}, nil
}

// New returns an empty document with no root. Content is added through
// an Editor session.
func New() *Document {
	return &Document{eng: engine.NewDoc(), own: ownNone}
}

// FromStdin parses the first YAML document from standard input, reading
// line by line so that interactive input works. The rest of the stream
// is left unread.
func FromStdin() (*Document, error) {
	s, err := NewStreamStdin(LineBuffered(true))
	if err != nil {
		return nil, err
	}
	defer s.Close()
	for d, err := range s.Docs() {
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w: no document found in input", ErrParse)
}

// check panics when the document is not in a usable state. Reaching a
// released document is always a bug in the caller, never a recoverable
// condition.
func (d *Document) check() {
	if d == nil || d.eng == nil {
		panic("fyaml: use of zero Document")
	}
	if d.closed {
		panic("fyaml: use of closed Document")
	}
}

// checkRead additionally rejects reads while an Editor session is
// open; document state is in flux until the session closes.
func (d *Document) checkRead() {
	d.check()
	if d.editor != nil {
		panic("fyaml: document read during an open edit session")
	}
}

// Root returns the root node. ok is false for an empty document.
func (d *Document) Root() (_ NodeRef, ok bool) {
	d.checkRead()
	root := d.eng.Root()
	if root == nil {
		return NodeRef{}, false
	}
	return NodeRef{d: d, n: root, gen: d.gen}, true
}

// At resolves a /-separated path from the root: mapping steps select by
// key, sequence steps by index, with negative indexes counting from the
// end. ok is false when the path does not resolve.
func (d *Document) At(path string) (_ NodeRef, ok bool) {
	root, ok := d.Root()
	if !ok {
		return NodeRef{}, false
	}
	return root.At(path)
}

// RootValue returns the root wrapped for typed access.
func (d *Document) RootValue() (_ ValueRef, ok bool) {
	root, ok := d.Root()
	if !ok {
		return ValueRef{}, false
	}
	return root.Value(), true
}

// Edit opens the document's single mutation session. While the session
// is open all other access to the document panics; references handed
// out earlier become permanently stale when the session closes. Only
// one session can exist at a time.
func (d *Document) Edit() *Editor {
	d.check()
	if d.editor != nil {
		panic("fyaml: nested Edit session")
	}
	d.editor = &Editor{d: d}
	return d.editor
}

// Emit renders the document as YAML text ending in a newline. An empty
// document renders as the empty string.
func (d *Document) Emit() (string, error) {
	d.checkRead()
	return engine.EmitDocument(d.eng), nil
}

// String renders the document, or a placeholder if it is closed.
// It implements fmt.Stringer for logging convenience; use Emit when
// the result matters.
func (d *Document) String() string {
	if d == nil || d.eng == nil || d.closed {
		return "<closed document>"
	}
	if d.editor != nil {
		return "<document being edited>"
	}
	return engine.EmitDocument(d.eng)
}

// Close releases the document. Close is idempotent; every other use of
// the document after Close panics. Documents loaded from a Stream are
// handed back to their parser, keeping shared parser state alive until
// its last document is closed.
func (d *Document) Close() error {
	if d == nil || d.eng == nil || d.closed {
		return nil
	}
	if d.editor != nil {
		d.editor.Close()
	}
	d.closed = true
	d.gen++
	d.input = nil
	if d.own == ownParser {
		return d.state.releaseDoc(d.eng)
	}
	if err := d.eng.Destroy(); err != nil {
		return engineErr(err)
	}
	return nil
}
