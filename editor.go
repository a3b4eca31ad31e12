// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package fyaml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/0k/fyaml/internal/engine"
)

// An Editor is a document's exclusive mutation session, obtained from
// Document.Edit. While the session is open, all access to the document
// outside the session panics; closing the session permanently
// invalidates every NodeRef handed out before or during it.
//
// Freshly built nodes are returned as RawNode handles. A handle starts
// detached; inserting it into the tree consumes it, and a handle that
// is never inserted should be released with Free. Each successful tree
// mutation also invalidates the session's own references, so paths (or
// fresh lookups) are the way to address nodes across mutations.
type Editor struct {
	d      *Document
	mut    uint64
	closed bool
}

func (e *Editor) check() {
	if e == nil || e.d == nil {
		panic("fyaml: use of zero Editor")
	}
	if e.closed {
		panic("fyaml: use of closed Editor")
	}
}

// guard refuses tree mutations while an iteration over the document is
// in progress.
func (e *Editor) guard() error {
	if e.d.iters > 0 {
		return ErrMutateWhileIterating
	}
	return nil
}

func (e *Editor) bump() { e.mut++ }

// Document returns the document this session mutates.
func (e *Editor) Document() *Document { e.check(); return e.d }

// Close ends the session. Close is idempotent. After Close the
// document is readable again; references created during the session
// are dead.
func (e *Editor) Close() {
	if e == nil || e.closed {
		return
	}
	e.closed = true
	e.d.editor = nil
	e.d.gen++
}

// Root returns a session-scoped reference to the document root. The
// reference lives until the next mutation in this session.
func (e *Editor) Root() (_ NodeRef, ok bool) {
	e.check()
	root := e.d.eng.Root()
	if root == nil {
		return NodeRef{}, false
	}
	return NodeRef{d: e.d, n: root, gen: e.d.gen, ed: e, mut: e.mut}, true
}

// At resolves a path to a session-scoped reference; see Document.At.
func (e *Editor) At(path string) (_ NodeRef, ok bool) {
	root, ok := e.Root()
	if !ok {
		return NodeRef{}, false
	}
	return root.At(path)
}

// rawState tracks the one-way life of a RawNode handle.
type rawState int

const (
	rawDetached rawState = iota
	rawInserted
	rawFreed
)

// A RawNode is a handle to a node built during an edit session but not
// yet linked into the tree. Inserting the handle consumes it; a handle
// that ends up unused must be released with Free. Handles never move
// between sessions.
type RawNode struct {
	e     *Editor
	n     *engine.Node
	state rawState
}

// Free releases a still-detached handle and its subtree. Freeing an
// inserted or already-freed handle is a no-op, so Free can be deferred
// unconditionally at build time.
func (h *RawNode) Free() {
	if h == nil || h.state != rawDetached {
		return
	}
	h.n.Free()
	h.state = rawFreed
}

// Kind returns the structural class of the node under the handle.
func (h *RawNode) Kind() Kind { return h.n.Kind() }

// valid checks that h can be inserted by session e.
func (h *RawNode) valid(e *Editor) error {
	if h == nil || h.n == nil {
		return engineErrf("nil node handle")
	}
	if h.e != e {
		return fmt.Errorf("%w: node handle from a different edit session", ErrDocumentMismatch)
	}
	switch h.state {
	case rawInserted:
		return engineErrf("node handle was already inserted")
	case rawFreed:
		return engineErrf("node handle was already freed")
	}
	return nil
}

// BuildYAML parses src as a freestanding fragment and returns it as a
// detached handle. Parse failures carry their position within src.
func (e *Editor) BuildYAML(src string) (*RawNode, error) {
	e.check()
	if !utf8.ValidString(src) {
		return nil, fmt.Errorf("%w: fragment is not valid UTF-8", ErrEncoding)
	}
	n, fail := engine.BuildFromString(e.d.eng, src)
	if fail != nil {
		return nil, parseFailure(fail)
	}
	return &RawNode{e: e, n: n}, nil
}

// BuildScalar returns a detached scalar node with the given content,
// taken verbatim. The emitter quotes it as needed, so text that spells
// a number or boolean still round-trips as a string.
func (e *Editor) BuildScalar(text string) (*RawNode, error) {
	e.check()
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: scalar is not valid UTF-8", ErrEncoding)
	}
	return &RawNode{e: e, n: engine.CreateScalar(e.d.eng, text)}, nil
}

// BuildNull returns a detached null node.
func (e *Editor) BuildNull() *RawNode {
	e.check()
	n := engine.CreateScalar(e.d.eng, "null")
	n.SetStyle(engine.StylePlain)
	return &RawNode{e: e, n: n}
}

// BuildSequence returns a detached empty sequence node.
func (e *Editor) BuildSequence() *RawNode {
	e.check()
	return &RawNode{e: e, n: engine.CreateSequence(e.d.eng)}
}

// BuildMapping returns a detached empty mapping node.
func (e *Editor) BuildMapping() *RawNode {
	e.check()
	return &RawNode{e: e, n: engine.CreateMapping(e.d.eng)}
}

// CopyNode deep-copies the subtree under src, which may belong to any
// document, into this session's document and returns it detached.
func (e *Editor) CopyNode(src NodeRef) (*RawNode, error) {
	e.check()
	src.check()
	return &RawNode{e: e, n: engine.Copy(e.d.eng, src.n)}, nil
}

// SetRoot installs the handle as the document root, consuming it. The
// previous root, if any, is released.
func (e *Editor) SetRoot(h *RawNode) error {
	e.check()
	if err := e.guard(); err != nil {
		return err
	}
	if err := h.valid(e); err != nil {
		return err
	}
	if err := e.d.eng.SetRoot(h.n); err != nil {
		return engineErr(err)
	}
	h.state = rawInserted
	e.bump()
	return nil
}

// SetYAML parses src as a fragment and installs it at path, replacing
// whatever is there. An empty path (or "/") replaces the root. In a
// mapping, a missing final key is appended; in a sequence the index
// must be in range, with negative indexes counting from the end. The
// node being replaced is released.
func (e *Editor) SetYAML(path, src string) error {
	e.check()
	if err := e.guard(); err != nil {
		return err
	}
	h, err := e.BuildYAML(src)
	if err != nil {
		return err
	}
	defer h.Free()

	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return e.SetRoot(h)
	}
	parentPath, leaf := splitEditPath(trimmed)
	parent := engine.ByPath(e.d.eng.Root(), parentPath)
	if parent == nil {
		return engineErrf("parent path not found: %q", "/"+parentPath)
	}

	switch parent.Kind() {
	case engine.KindMapping:
		if old, found := engine.MapSet(parent, leaf, h.n); found {
			old.Free()
		} else {
			key := engine.CreateScalar(e.d.eng, leaf)
			if err := engine.MapAppend(parent, key, h.n); err != nil {
				key.Free()
				return engineErr(err)
			}
		}

	case engine.KindSequence:
		idx, err := strconv.Atoi(leaf)
		if err != nil {
			return engineErrf("invalid sequence index %q", leaf)
		}
		count := parent.SeqCount()
		resolved := idx
		if resolved < 0 {
			resolved += count
		}
		if resolved < 0 || resolved >= count {
			return engineErrf("sequence index %d out of bounds (len %d)", idx, count)
		}
		// The successor has to be pinned before the removal changes
		// positions; the replacement goes in front of it, or at the
		// tail when the removed item was last.
		old := parent.SeqAt(resolved)
		next := parent.SeqAt(resolved + 1)
		engine.SeqRemove(parent, old).Free()
		if next == nil {
			if err := engine.SeqAppend(parent, h.n); err != nil {
				return engineErr(err)
			}
		} else if err := engine.SeqInsertBefore(parent, next, h.n); err != nil {
			return engineErr(err)
		}

	default:
		return mismatch("mapping or sequence", parent.Kind())
	}
	h.state = rawInserted
	e.bump()
	return nil
}

// Delete removes the node at path and releases it. It returns false
// with no error when the path does not resolve; deleting the root is
// an error (replace it with SetRoot instead).
func (e *Editor) Delete(path string) (bool, error) {
	e.check()
	if err := e.guard(); err != nil {
		return false, err
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return false, engineErrf("cannot delete the document root")
	}
	parentPath, leaf := splitEditPath(trimmed)
	parent := engine.ByPath(e.d.eng.Root(), parentPath)
	if parent == nil {
		return false, nil
	}

	switch parent.Kind() {
	case engine.KindMapping:
		p, ok := engine.MapDelete(parent, leaf)
		if !ok {
			return false, nil
		}
		p.Key.Free()
		p.Value.Free()

	case engine.KindSequence:
		idx, err := strconv.Atoi(leaf)
		if err != nil {
			return false, engineErrf("invalid sequence index %q", leaf)
		}
		item := parent.SeqIndex(idx)
		if item == nil {
			return false, nil
		}
		engine.SeqRemove(parent, item).Free()

	default:
		return false, mismatch("mapping or sequence", parent.Kind())
	}
	e.bump()
	return true, nil
}

// SeqAppend links a detached item at the end of the sequence under a
// detached handle, consuming the item. Building bottom-up this way
// keeps whole subtrees out of the tree until one final insertion.
func (e *Editor) SeqAppend(seq, item *RawNode) error {
	e.check()
	if err := seq.valid(e); err != nil {
		return err
	}
	if err := item.valid(e); err != nil {
		return err
	}
	if seq.n.Kind() != engine.KindSequence {
		return mismatch("sequence", seq.n.Kind())
	}
	if err := engine.SeqAppend(seq.n, item.n); err != nil {
		return engineErr(err)
	}
	item.state = rawInserted
	return nil
}

// SeqAppendAt links a detached item at the end of the sequence at path
// in the document tree, consuming the item.
func (e *Editor) SeqAppendAt(path string, item *RawNode) error {
	e.check()
	if err := e.guard(); err != nil {
		return err
	}
	if err := item.valid(e); err != nil {
		return err
	}
	target := engine.ByPath(e.d.eng.Root(), strings.Trim(path, "/"))
	if target == nil {
		return engineErrf("path not found: %q", path)
	}
	if target.Kind() != engine.KindSequence {
		return mismatch("sequence", target.Kind())
	}
	if err := engine.SeqAppend(target, item.n); err != nil {
		return engineErr(err)
	}
	item.state = rawInserted
	e.bump()
	return nil
}

// MapInsert appends a key/value pair to the mapping under a detached
// handle, consuming both the key and the value. On failure both stay
// detached and remain the caller's to free.
func (e *Editor) MapInsert(m, key, value *RawNode) error {
	e.check()
	if err := m.valid(e); err != nil {
		return err
	}
	if err := key.valid(e); err != nil {
		return err
	}
	if err := value.valid(e); err != nil {
		return err
	}
	if m.n.Kind() != engine.KindMapping {
		return mismatch("mapping", m.n.Kind())
	}
	if err := engine.MapAppend(m.n, key.n, value.n); err != nil {
		return engineErr(err)
	}
	key.state = rawInserted
	value.state = rawInserted
	return nil
}

// SetStyle applies a presentation style to a detached handle and
// returns the style it had. Styles that do not fit the node's kind
// leave it unchanged.
func (e *Editor) SetStyle(h *RawNode, s Style) (Style, error) {
	e.check()
	if err := h.valid(e); err != nil {
		return StyleAny, err
	}
	return h.n.SetStyle(s), nil
}

// SetTag attaches a YAML shorthand tag ("!name") to a detached handle.
func (e *Editor) SetTag(h *RawNode, tag string) error {
	e.check()
	if err := h.valid(e); err != nil {
		return err
	}
	if !utf8.ValidString(tag) {
		return fmt.Errorf("%w: tag is not valid UTF-8", ErrEncoding)
	}
	if err := h.n.SetTag(tag); err != nil {
		return engineErr(err)
	}
	return nil
}

// splitEditPath cuts an already trimmed path into the parent path and
// final segment.
func splitEditPath(path string) (parent, leaf string) {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return "", path
}
