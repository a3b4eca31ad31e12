// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

// Package fyaml reads, edits and emits YAML documents while preserving
// the presentation of the input: quoting, block styles, flow layout,
// tags and comments survive a parse/emit round trip.
//
// # Reading
//
// Parse loads a single document; every read goes through a NodeRef,
// which is a reference into the document tree rather than a copy:
//
//	doc, err := fyaml.Parse("server:\n  port: 8080\n")
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//	defer doc.Close()
//	if n, ok := doc.At("server/port"); ok {
//	   port, _ := n.Value().AsInt64()
//	   ...
//	}
//
// Paths are /-separated: mapping steps select by key, sequence steps by
// index, and negative indexes count from the end. Typed access follows
// the YAML 1.1 core schema and applies only to plain scalars: "true" is
// a boolean but "'true'" is a string. See ValueRef.
//
// A NodeRef is valid until its document is closed (or, for references
// from an Editor, until the session mutates or closes). Using a
// reference past that point is a bug in the calling code and panics;
// expected conditions like a missing key or a type that does not fit
// are reported with comma-ok results and error values instead.
//
// # Editing
//
// All mutation happens inside the document's single Editor session.
// While the session is open the rest of the document API is
// unavailable, so there is never a read of state that is in flux:
//
//	ed := doc.Edit()
//	defer ed.Close()
//	if err := ed.SetYAML("server/port", "9090"); err != nil {
//	   log.Fatalf("edit failed: %v", err)
//	}
//
// Fragments built during a session (BuildYAML, BuildScalar, ...) are
// held as RawNode handles. Inserting a handle consumes it; handles that
// end up unused are released with Free, which is safe to defer
// unconditionally.
//
// # Streams
//
// A Stream reads multi-document input one document at a time:
//
//	s, err := fyaml.NewStreamReader(r)
//	...
//	defer s.Close()
//	for doc, err := range s.Docs() {
//	   if err != nil {
//	      log.Fatalf("stream failed: %v", err)
//	   }
//	   defer doc.Close()
//	   ...
//	}
//
// Documents loaded from a stream share the parser's state and keep it
// alive until the last of them is closed, so they may freely outlive
// the Stream.
//
// # Errors
//
// Failures wrap a small set of sentinel errors (ErrParse, ErrEngine,
// ErrIO, ...) for classification with errors.Is. Parse failures with a
// known position are *ParseError values carrying a 1-based line and
// column.
package fyaml
