// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package engine

import (
	"strings"
	"testing"

	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, src string) *Doc {
	t.Helper()
	d, fail := ParseDocument([]byte(src))
	if fail != nil {
		t.Fatalf("ParseDocument(%q): unexpected error: %v", src, fail)
	}
	return d
}

func TestParseShapes(t *testing.T) {
	d := mustParse(t, "a: 1\nb: [x, y]\nc:\n  - true\n")
	root := d.Root()
	if root == nil || root.Kind() != KindMapping {
		t.Fatalf("root = %+v, want mapping", root)
	}
	if got := root.MapGet("a").Text(); got != "1" {
		t.Errorf(`MapGet(a).Text() = %q, want "1"`, got)
	}
	b := root.MapGet("b")
	if b.Kind() != KindSequence || b.Style() != StyleFlow {
		t.Errorf("b = kind %v style %v, want flow sequence", b.Kind(), b.Style())
	}
	if got := b.SeqCount(); got != 2 {
		t.Errorf("b.SeqCount() = %d, want 2", got)
	}
	c := root.MapGet("c")
	if c.Kind() != KindSequence || c.Style() != StyleBlock {
		t.Errorf("c = kind %v style %v, want block sequence", c.Kind(), c.Style())
	}
	if got := c.SeqIndex(-1).Text(); got != "true" {
		t.Errorf(`c[-1].Text() = %q, want "true"`, got)
	}
}

func TestParseScalarStyles(t *testing.T) {
	d := mustParse(t, "s: 'one'\nd: \"two\"\np: three\nl: |\n  four\n")
	root := d.Root()
	tests := []struct {
		key   string
		style Style
		text  string
	}{
		{"s", StyleSingleQuoted, "one"},
		{"d", StyleDoubleQuoted, "two"},
		{"p", StylePlain, "three"},
		{"l", StyleLiteral, "four\n"},
	}
	for _, tc := range tests {
		n := root.MapGet(tc.key)
		if n == nil {
			t.Fatalf("key %q missing", tc.key)
		}
		if n.Style() != tc.style || n.Text() != tc.text {
			t.Errorf("%s: style %v text %q, want %v %q", tc.key, n.Style(), n.Text(), tc.style, tc.text)
		}
	}
}

func TestParseFailureLocation(t *testing.T) {
	_, fail := ParseDocument([]byte("[unclosed"))
	if fail == nil {
		t.Fatal("ParseDocument([unclosed): no error")
	}
	if fail.Line < 1 || fail.Col < 1 {
		t.Errorf("failure location = %d:%d, want both >= 1", fail.Line, fail.Col)
	}
	if fail.Msg == "" {
		t.Error("failure has empty message")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, fail := ParseDocument(nil); fail == nil {
		t.Error("ParseDocument(nil): no error")
	}
	if _, fail := ParseDocument([]byte("# comment only\n")); fail == nil {
		t.Error("ParseDocument(comment only): no error")
	}
}

func TestByPath(t *testing.T) {
	d := mustParse(t, "top:\n  list:\n    - zero\n    - one\n    - name: two\n")
	root := d.Root()
	tests := []struct {
		path string
		want string // scalar text; "" means expect nil
	}{
		{"top/list/0", "zero"},
		{"/top/list/1", "one"},
		{"top/list/-3", "zero"},
		{"top/list/2/name", "two"},
		{"top/list/3", ""},
		{"top/list/-4", ""},
		{"top/missing", ""},
		{"top/list/x", ""},
		{"top/list/0/deeper", ""},
	}
	for _, tc := range tests {
		n := ByPath(root, tc.path)
		if tc.want == "" {
			if n != nil {
				t.Errorf("ByPath(%q) = %+v, want nil", tc.path, n)
			}
			continue
		}
		if n == nil || n.Text() != tc.want {
			t.Errorf("ByPath(%q) = %v, want scalar %q", tc.path, n, tc.want)
		}
	}
	if got := ByPath(root, ""); got != root {
		t.Error("ByPath(\"\") did not return the node itself")
	}
	if got := ByPath(root, "/"); got != root {
		t.Error("ByPath(\"/\") did not return the node itself")
	}
}

func TestMutations(t *testing.T) {
	d := mustParse(t, "items:\n  - a\n  - b\n")
	seq := ByPath(d.Root(), "items")

	n := CreateScalar(d, "c")
	if err := SeqAppend(seq, n); err != nil {
		t.Fatalf("SeqAppend: %v", err)
	}
	if got := seq.SeqCount(); got != 3 {
		t.Fatalf("SeqCount = %d, want 3", got)
	}

	// Appending an attached node must fail.
	if err := SeqAppend(seq, n); err == nil {
		t.Error("SeqAppend of attached node: no error")
	}

	// Cross-document insertion must fail.
	other := mustParse(t, "x: y\n")
	stranger := CreateScalar(other, "z")
	if err := SeqAppend(seq, stranger); err == nil {
		t.Error("SeqAppend across documents: no error")
	}

	removed := SeqRemove(seq, n)
	if removed != n || n.Attached() {
		t.Fatalf("SeqRemove returned %v (attached=%v)", removed, n.Attached())
	}
	before := seq.SeqAt(1)
	if err := SeqInsertBefore(seq, before, removed); err != nil {
		t.Fatalf("SeqInsertBefore: %v", err)
	}
	var texts []string
	for i := 0; i < seq.SeqCount(); i++ {
		texts = append(texts, seq.SeqAt(i).Text())
	}
	if diff := cmp.Diff([]string{"a", "c", "b"}, texts); diff != "" {
		t.Errorf("sequence order (-want, +got):\n%s", diff)
	}
}

func TestMapMutations(t *testing.T) {
	d := mustParse(t, "a: 1\nb: 2\n")
	root := d.Root()

	old, found := MapSet(root, "a", CreateScalar(d, "10"))
	if !found || old == nil || old.Text() != "1" {
		t.Fatalf("MapSet(a) = %v, %v", old, found)
	}
	old.Free()

	if err := MapAppend(root, CreateScalar(d, "c"), CreateScalar(d, "3")); err != nil {
		t.Fatalf("MapAppend: %v", err)
	}
	if got := root.MapGet("c").Text(); got != "3" {
		t.Errorf(`MapGet(c) = %q, want "3"`, got)
	}

	p, ok := MapDelete(root, "b")
	if !ok || p.Key.Attached() || p.Value.Attached() {
		t.Fatalf("MapDelete(b) = %+v, %v", p, ok)
	}
	p.Key.Free()
	p.Value.Free()
	if root.MapGet("b") != nil {
		t.Error("key b still present after delete")
	}
}

func TestFreeMisuse(t *testing.T) {
	d := NewDoc()
	n := CreateScalar(d, "x")
	n.Free()
	mtest.MustPanic(t, n.Free)

	m := CreateMapping(d)
	if err := d.SetRoot(m); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	mtest.MustPanic(t, m.Free)
}

func TestCopy(t *testing.T) {
	src := mustParse(t, "a:\n  - 1\n  - two: 3\n")
	dst := NewDoc()
	cp := Copy(dst, src.Root())
	if cp.Attached() {
		t.Error("copy is attached")
	}
	if err := dst.SetRoot(cp); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	if got, want := EmitDocument(dst), EmitDocument(src); got != want {
		t.Errorf("copy emits %q, want %q", got, want)
	}
	// The copy is independent of the source.
	if err := src.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if ByPath(dst.Root(), "a/1/two") == nil {
		t.Error("copied tree lost content after source destroy")
	}
}

func TestEmitPreservesText(t *testing.T) {
	inputs := []string{
		"a: 1\nb: [x, y]\n",
		"s: 'one'\nd: \"two\"\n",
		"list:\n  - 1\n  - nested:\n      k: v\n",
		"block: |\n  line1\n  line2\n",
		"folded: >\n  a b c\n",
		"flowmap: {x: 1, y: 2}\n",
		"empty: []\nalso: {}\n",
	}
	for _, in := range inputs {
		d := mustParse(t, in)
		if got := EmitDocument(d); got != in {
			t.Errorf("emit of %q produced %q", in, got)
		}
	}
}

func TestEmitStability(t *testing.T) {
	// Whatever form the first emission takes, re-parsing and emitting
	// again must reproduce it exactly.
	inputs := []string{
		"a:\n  - x\n  - - deep\n    - deeper\n",
		"quoty: 'it''s'\n",
		"text: \"tab\\there\"\n",
		"num: 0x1F\nkeep: True\n",
	}
	for _, in := range inputs {
		first := EmitDocument(mustParse(t, in))
		second := EmitDocument(mustParse(t, first))
		if first != second {
			t.Errorf("unstable emission for %q:\nfirst  %q\nsecond %q", in, first, second)
		}
	}
}

func TestEmitNodeNoTrailingNewline(t *testing.T) {
	d := mustParse(t, "a:\n  b: 1\n  c: 2\n")
	got := EmitNode(ByPath(d.Root(), "a"))
	if strings.HasSuffix(got, "\n") {
		t.Errorf("EmitNode result ends with newline: %q", got)
	}
	if want := "b: 1\nc: 2"; got != want {
		t.Errorf("EmitNode = %q, want %q", got, want)
	}
}

func TestEmitQuotesAmbiguousScalars(t *testing.T) {
	d := NewDoc()
	m := CreateMapping(d)
	for _, text := range []string{"true", "42", "null", "- x", "a: b"} {
		if err := MapAppend(m, CreateScalar(d, "k"+text), CreateScalar(d, text)); err != nil {
			t.Fatalf("MapAppend: %v", err)
		}
	}
	if err := d.SetRoot(m); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	out := EmitDocument(d)
	for _, want := range []string{"'true'", "'42'", "'null'", "'- x'", "'a: b'"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %s", out, want)
		}
	}
}

func TestSetStyle(t *testing.T) {
	d := mustParse(t, "a: [1, 2]\n")
	seq := ByPath(d.Root(), "a")
	if prev := seq.SetStyle(StyleBlock); prev != StyleFlow {
		t.Errorf("SetStyle returned %v, want %v", prev, StyleFlow)
	}
	if got, want := EmitDocument(d), "a:\n  - 1\n  - 2\n"; got != want {
		t.Errorf("emit after restyle = %q, want %q", got, want)
	}
	// Scalar styles do not apply to collections.
	if seq.SetStyle(StyleLiteral); seq.Style() != StyleBlock {
		t.Errorf("collection took scalar style: %v", seq.Style())
	}
}

func TestDestroyDispatch(t *testing.T) {
	d := mustParse(t, "a: 1\n")
	if err := d.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := d.Destroy(); err == nil {
		t.Error("second Destroy: no error")
	}

	p := NewParser(strings.NewReader("a: 1\n"), nil)
	sd, fail := p.LoadDocument()
	if fail != nil {
		t.Fatalf("LoadDocument: %v", fail)
	}
	if err := sd.Destroy(); err == nil {
		t.Error("Destroy of parser-owned document: no error")
	}
	if err := p.DestroyDocument(sd); err != nil {
		t.Errorf("DestroyDocument: %v", err)
	}
	if err := p.DestroyDocument(sd); err == nil {
		t.Error("second DestroyDocument: no error")
	}
	if err := p.Destroy(); err != nil {
		t.Errorf("parser Destroy: %v", err)
	}
}
