// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

// Package value converts YAML nodes into plain Go values that own
// their data. Unlike fyaml.ValueRef, which reads through a live
// document, the types here are snapshots: they survive the document
// they came from and marshal back to YAML on their own.
//
// Conversion applies the same plain-scalar inference as the fyaml
// package: "true" becomes a Bool, "'true'" stays a String.
package value

import (
	"fmt"

	"github.com/0k/fyaml"
	"github.com/0k/fyaml/scalar"
)

// A Value is a YAML value detached from any document. The concrete
// types are Null, Bool, Number, String, Sequence, Mapping and Tagged.
type Value interface {
	// YAML renders the value as YAML text without a trailing newline.
	YAML() string

	isValue()
}

// Null is the YAML null value.
type Null struct{}

// Bool is a YAML boolean.
type Bool bool

// A Number is a YAML number, preserving the narrowest representation
// of its spelling (see scalar.ParseNumber).
type Number struct {
	scalar.Number
}

// A String is YAML string content, with no presentation attached.
type String string

// A Sequence is an ordered list of values.
type Sequence []Value

// A Member is one key/value entry of a Mapping.
type Member struct {
	Key   Value
	Value Value
}

// A Mapping is an ordered list of members. Duplicate keys are kept in
// input order, and Find returns the first match.
type Mapping []*Member

// Find returns the first member whose key is the string key, or nil.
func (m Mapping) Find(key string) *Member {
	for _, e := range m {
		if s, ok := e.Key.(String); ok && string(s) == key {
			return e
		}
	}
	return nil
}

// A Tagged wraps a value carrying an explicit YAML tag.
type Tagged struct {
	Tag   string
	Value Value
}

func (Null) isValue()     {}
func (Bool) isValue()     {}
func (Number) isValue()   {}
func (String) isValue()   {}
func (Sequence) isValue() {}
func (Mapping) isValue()  {}
func (Tagged) isValue()   {}

// Int returns a Number holding i.
func Int(i int64) Number {
	if i >= 0 {
		return Number{scalar.Number{Kind: scalar.UintKind, Uint: uint64(i)}}
	}
	return Number{scalar.Number{Kind: scalar.IntKind, Int: i}}
}

// Float returns a Number holding f.
func Float(f float64) Number {
	return Number{scalar.Number{Kind: scalar.FloatKind, Float: f}}
}

// FromDocument converts the whole document; an empty document converts
// to Null.
func FromDocument(d *fyaml.Document) (Value, error) {
	root, ok := d.Root()
	if !ok {
		return Null{}, nil
	}
	return FromNode(root)
}

// FromNode converts the subtree under r into owned values. Unresolved
// aliases have no value form and fail with fyaml.ErrEngine; documents
// loaded from streams come with aliases already resolved.
func FromNode(r fyaml.NodeRef) (Value, error) {
	v, err := convert(r)
	if err != nil {
		return nil, err
	}
	if tag, ok := r.TagStr(); ok {
		return Tagged{Tag: tag, Value: v}, nil
	}
	return v, nil
}

func convert(r fyaml.NodeRef) (Value, error) {
	switch r.Kind() {
	case fyaml.KindSequence:
		out := Sequence{}
		var convErr error
		for it := range r.Items() {
			v, err := FromNode(it)
			if err != nil {
				convErr = err
				break
			}
			out = append(out, v)
		}
		if convErr != nil {
			return nil, convErr
		}
		return out, nil

	case fyaml.KindMapping:
		out := Mapping{}
		var convErr error
		for k, v := range r.Pairs() {
			kv, err := FromNode(k)
			if err != nil {
				convErr = err
				break
			}
			vv, err := FromNode(v)
			if err != nil {
				convErr = err
				break
			}
			out = append(out, &Member{Key: kv, Value: vv})
		}
		if convErr != nil {
			return nil, convErr
		}
		return out, nil
	}

	if r.Style() == fyaml.StyleAlias {
		return nil, fmt.Errorf("%w: cannot convert an unresolved alias", fyaml.ErrEngine)
	}
	text, err := r.ScalarStr()
	if err != nil {
		return nil, err
	}
	if r.IsNonPlain() {
		return String(text), nil
	}
	if scalar.IsNull(text) {
		return Null{}, nil
	}
	if b, ok := scalar.ParseBool(text); ok {
		return Bool(b), nil
	}
	if n, ok := scalar.ParseNumber(text); ok {
		return Number{n}, nil
	}
	return String(text), nil
}
