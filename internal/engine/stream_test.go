// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package engine

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// drain loads documents until end of stream, returning the emission of
// each. A load failure stops the drain and is returned.
func drain(t *testing.T, p *Parser) ([]string, *ParseFailure) {
	t.Helper()
	var out []string
	for {
		d, fail := p.LoadDocument()
		if fail != nil {
			return out, fail
		}
		if d == nil {
			return out, nil
		}
		out = append(out, EmitDocument(d))
	}
}

func TestStreamDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "a: 1\n", []string{"a: 1\n"}},
		{"two", "a: 1\n---\nb: 2\n", []string{"a: 1\n", "b: 2\n"}},
		{"leading marker", "---\na: 1\n---\nb: 2\n", []string{"a: 1\n", "b: 2\n"}},
		{"end marker", "a: 1\n...\nb: 2\n", []string{"a: 1\n", "b: 2\n"}},
		{"inline content", "--- a: 1\n--- b: 2\n", []string{"a: 1\n", "b: 2\n"}},
		{"empty documents", "---\n---\n", []string{"", ""}},
		{"trailing marker", "a: 1\n---\n", []string{"a: 1\n", ""}},
		{"blank between", "a: 1\n\n---\n\nb: 2\n", []string{"a: 1\n", "b: 2\n"}},
		{"comment only doc", "a: 1\n---\n# nothing here\n", []string{"a: 1\n", ""}},
		{"empty stream", "", nil},
		{"blank stream", "\n  \n", nil},
		{"no trailing newline", "a: 1\n---\nb: 2", []string{"a: 1\n", "b: 2\n"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(strings.NewReader(tc.input), nil)
			got, fail := drain(t, p)
			if fail != nil {
				t.Fatalf("drain failed: %v", fail)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("documents (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestStreamErrorLocation(t *testing.T) {
	// The broken flow sequence starts at stream line 3; the reported
	// position must be in stream coordinates, not chunk coordinates.
	p := NewParser(strings.NewReader("a: 1\n---\nb: [2\n"), nil)
	docs, fail := drain(t, p)
	if len(docs) != 1 {
		t.Fatalf("got %d documents before the error, want 1", len(docs))
	}
	if fail == nil {
		t.Fatal("no failure for unclosed flow sequence")
	}
	if fail.Line < 3 {
		t.Errorf("failure line = %d, want >= 3", fail.Line)
	}
	if fail.Col < 1 {
		t.Errorf("failure column = %d, want >= 1", fail.Col)
	}

	// The failure is final.
	if _, f := p.LoadDocument(); f == nil {
		t.Error("LoadDocument after failure: no error")
	}
}

func TestStreamLazyParsing(t *testing.T) {
	// Documents are parsed one load at a time: garbage further down
	// the stream must not interfere with documents before it.
	p := NewParser(strings.NewReader("a: 1\n---\nb: [2\n"), nil)
	d, fail := p.LoadDocument()
	if fail != nil || d == nil {
		t.Fatalf("first LoadDocument = %v, %v", d, fail)
	}
	if got := ByPath(d.Root(), "a").Text(); got != "1" {
		t.Errorf(`a = %q, want "1"`, got)
	}
	if _, fail := p.LoadDocument(); fail == nil {
		t.Error("second LoadDocument: no error for broken document")
	}
}

func TestStreamResolvesAliases(t *testing.T) {
	p := NewParser(strings.NewReader("base: &b\n  x: 1\nother: *b\n"), nil)
	d, fail := p.LoadDocument()
	if fail != nil {
		t.Fatalf("LoadDocument: %v", fail)
	}
	n := ByPath(d.Root(), "other/x")
	if n == nil || n.Text() != "1" {
		t.Errorf("other/x = %v, want scalar 1", n)
	}
}

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error { c.closed = true; return nil }

func TestParserCloser(t *testing.T) {
	cr := new(closeRecorder)
	p := NewParser(strings.NewReader("a: 1\n"), cr)
	if _, fail := p.LoadDocument(); fail != nil {
		t.Fatalf("LoadDocument: %v", fail)
	}
	if err := p.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if !cr.closed {
		t.Error("closer was not closed on Destroy")
	}
	if err := p.Destroy(); err == nil {
		t.Error("second Destroy: no error")
	}
}
