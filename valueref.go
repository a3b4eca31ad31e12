// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package fyaml

import (
	"github.com/0k/fyaml/internal/engine"
	"github.com/0k/fyaml/scalar"
)

// A ValueRef reads a node through the YAML type system: plain scalars
// resolve to null, bool, integer or float by their spelling, while
// quoted and block scalars are always strings. Every accessor follows
// the comma-ok pattern and never panics on a type that does not fit;
// validity tracking is inherited from the underlying NodeRef.
type ValueRef struct {
	ref NodeRef
}

// Node returns the underlying node reference.
func (v ValueRef) Node() NodeRef { return v.ref }

// inferable reports whether type inference applies: only genuine plain
// scalars take part, and returns the scalar text when it does.
func (v ValueRef) inferable() (string, bool) {
	v.ref.check()
	n := v.ref.n
	if n.Kind() != engine.KindScalar {
		return "", false
	}
	switch n.Style() {
	case engine.StylePlain, engine.StyleAny:
		return n.Text(), true
	}
	return "", false
}

// IsNull reports whether the value is null: a plain scalar spelled "",
// "~" or "null" in any capitalization.
func (v ValueRef) IsNull() bool {
	text, ok := v.inferable()
	return ok && scalar.IsNull(text)
}

// AsBool resolves a plain scalar boolean spelling.
func (v ValueRef) AsBool() (_ bool, ok bool) {
	text, ok := v.inferable()
	if !ok {
		return false, false
	}
	return scalar.ParseBool(text)
}

// AsInt64 resolves a plain scalar as a signed integer.
func (v ValueRef) AsInt64() (_ int64, ok bool) {
	text, ok := v.inferable()
	if !ok {
		return 0, false
	}
	return scalar.ParseInt(text)
}

// AsUint64 resolves a plain scalar as an unsigned integer.
func (v ValueRef) AsUint64() (_ uint64, ok bool) {
	text, ok := v.inferable()
	if !ok {
		return 0, false
	}
	return scalar.ParseUint(text)
}

// AsFloat64 resolves a plain scalar as a float. Integer spellings
// coerce, so AsFloat64 on "42" yields 42.0.
func (v ValueRef) AsFloat64() (_ float64, ok bool) {
	text, ok := v.inferable()
	if !ok {
		return 0, false
	}
	return scalar.ParseFloat(text)
}

// AsStr returns the scalar content as a string. Any scalar style
// qualifies; inference plays no part, so AsStr on a plain "42" returns
// "42". Aliases and non-UTF-8 content do not qualify.
func (v ValueRef) AsStr() (_ string, ok bool) {
	v.ref.check()
	n := v.ref.n
	if n.Kind() != engine.KindScalar || n.Style() == engine.StyleAlias {
		return "", false
	}
	s, err := v.ref.ScalarStr()
	if err != nil {
		return "", false
	}
	return s, true
}

// AsBytes returns a copy of the scalar content without any encoding
// requirement.
func (v ValueRef) AsBytes() (_ []byte, ok bool) {
	v.ref.check()
	n := v.ref.n
	if n.Kind() != engine.KindScalar || n.Style() == engine.StyleAlias {
		return nil, false
	}
	b, err := v.ref.ScalarBytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Get returns the value for key in a mapping.
func (v ValueRef) Get(key string) (_ ValueRef, ok bool) {
	r, ok := v.ref.MapGet(key)
	if !ok {
		return ValueRef{}, false
	}
	return ValueRef{r}, true
}

// Index returns the item at index i in a sequence; negative indexes
// count from the end.
func (v ValueRef) Index(i int) (_ ValueRef, ok bool) {
	r, ok := v.ref.SeqGet(i)
	if !ok {
		return ValueRef{}, false
	}
	return ValueRef{r}, true
}

// At resolves a /-separated path; see Document.At.
func (v ValueRef) At(path string) (_ ValueRef, ok bool) {
	r, ok := v.ref.At(path)
	if !ok {
		return ValueRef{}, false
	}
	return ValueRef{r}, true
}

// SeqLen returns the length of a sequence value.
func (v ValueRef) SeqLen() (int, bool) {
	n, err := v.ref.SeqLen()
	return n, err == nil
}

// MapLen returns the number of pairs of a mapping value.
func (v ValueRef) MapLen() (int, bool) {
	n, err := v.ref.MapLen()
	return n, err == nil
}
