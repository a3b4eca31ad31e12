// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package fyaml_test

import (
	"errors"
	"testing"

	"github.com/0k/fyaml"
	"github.com/creachadair/mds/mtest"
)

func mustParse(t *testing.T, text string) *fyaml.Document {
	t.Helper()
	d, err := fyaml.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", text, err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestParse(t *testing.T) {
	d := mustParse(t, "name: test\nitems:\n  - 1\n  - 2\n")
	root, ok := d.Root()
	if !ok {
		t.Fatal("Root: no root for non-empty document")
	}
	if !root.IsMapping() {
		t.Errorf("root kind = %v, want mapping", root.Kind())
	}
	n, ok := d.At("items/1")
	if !ok {
		t.Fatal("At(items/1): not found")
	}
	if got, err := n.ScalarStr(); err != nil || got != "2" {
		t.Errorf("items/1 = %q, %v; want \"2\", nil", got, err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	_, err := fyaml.Parse("")
	if !errors.Is(err, fyaml.ErrParse) {
		t.Errorf("Parse(\"\") error = %v, want ErrParse", err)
	}
	if _, err := fyaml.ParseBytes(nil); !errors.Is(err, fyaml.ErrParse) {
		t.Errorf("ParseBytes(nil) error = %v, want ErrParse", err)
	}
}

func TestParseErrorLocation(t *testing.T) {
	_, err := fyaml.Parse("[unclosed")
	if err == nil {
		t.Fatal("Parse([unclosed): no error")
	}
	if !errors.Is(err, fyaml.ErrParse) {
		t.Errorf("error %v does not wrap ErrParse", err)
	}
	var pe *fyaml.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a *ParseError", err)
	}
	line, col, ok := pe.Location()
	if !ok || line < 1 || col < 1 {
		t.Errorf("Location() = %d, %d, %v; want both >= 1", line, col, ok)
	}
}

func TestParseTakesFirstDocument(t *testing.T) {
	d := mustParse(t, "a: 1\n---\nb: 2\n")
	if _, ok := d.At("a"); !ok {
		t.Error("first document content missing")
	}
	if _, ok := d.At("b"); ok {
		t.Error("second document content leaked into the first")
	}
}

func TestParseBytes(t *testing.T) {
	data := []byte("key: value\n")
	d, err := fyaml.ParseBytes(data)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	defer d.Close()
	n, ok := d.At("key")
	if !ok {
		t.Fatal("At(key): not found")
	}
	if got, _ := n.ScalarStr(); got != "value" {
		t.Errorf("key = %q, want \"value\"", got)
	}
}

func TestEmitRoundTrip(t *testing.T) {
	const text = "name: 'test'\nport: 8080\nflags:\n  - a\n  - b\n"
	d := mustParse(t, text)
	got, err := d.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if got != text {
		t.Errorf("Emit = %q, want %q", got, text)
	}
}

func TestNewDocument(t *testing.T) {
	d := fyaml.New()
	defer d.Close()
	if _, ok := d.Root(); ok {
		t.Error("empty document has a root")
	}
	if got, err := d.Emit(); err != nil || got != "" {
		t.Errorf("Emit of empty document = %q, %v", got, err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	d := mustParse(t, "a: 1\n")
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestUseAfterClose(t *testing.T) {
	d := mustParse(t, "a: 1\n")
	root, _ := d.Root()
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	mtest.MustPanic(t, func() { d.Root() })
	mtest.MustPanic(t, func() { root.Kind() })
	mtest.MustPanic(t, func() { d.Edit() })
}

func TestStringOfClosed(t *testing.T) {
	d := mustParse(t, "a: 1\n")
	d.Close()
	if got := d.String(); got != "<closed document>" {
		t.Errorf("String after Close = %q", got)
	}
}
