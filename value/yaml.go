// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/0k/fyaml/internal/engine"
	"github.com/0k/fyaml/scalar"
)

// YAML renders the value in block style; see Value.YAML.
func (v Null) YAML() string     { return yamlString(v) }
func (v Bool) YAML() string     { return yamlString(v) }
func (v Number) YAML() string   { return yamlString(v) }
func (v String) YAML() string   { return yamlString(v) }
func (v Sequence) YAML() string { return yamlString(v) }
func (v Mapping) YAML() string  { return yamlString(v) }
func (v Tagged) YAML() string   { return yamlString(v) }

func yamlString(v Value) string {
	var b strings.Builder
	write(&b, v, 0)
	return b.String()
}

// inline reports whether v renders on the current line rather than as
// an indented block.
func inline(v Value) bool {
	switch t := v.(type) {
	case Sequence:
		return len(t) == 0
	case Mapping:
		return len(t) == 0
	case Tagged:
		return inline(t.Value)
	}
	return true
}

// write renders v with the cursor at column indent; continuation lines
// are padded back to that column.
func write(b *strings.Builder, v Value, indent int) {
	switch t := v.(type) {
	case Null:
		b.WriteString("null")

	case Bool:
		b.WriteString(strconv.FormatBool(bool(t)))

	case Number:
		b.WriteString(t.yamlText())

	case String:
		b.WriteString(engine.QuoteScalar(string(t)))

	case Tagged:
		b.WriteString(t.Tag)
		if inline(t.Value) {
			b.WriteByte(' ')
			write(b, t.Value, indent)
		} else {
			b.WriteByte('\n')
			pad(b, indent)
			write(b, t.Value, indent)
		}

	case Sequence:
		if len(t) == 0 {
			b.WriteString("[]")
			return
		}
		for i, it := range t {
			if i > 0 {
				b.WriteByte('\n')
				pad(b, indent)
			}
			b.WriteString("- ")
			write(b, it, indent+2)
		}

	case Mapping:
		if len(t) == 0 {
			b.WriteString("{}")
			return
		}
		for i, m := range t {
			if i > 0 {
				b.WriteByte('\n')
				pad(b, indent)
			}
			writeKey(b, m.Key)
			b.WriteByte(':')
			if inline(m.Value) {
				b.WriteByte(' ')
				write(b, m.Value, indent)
			} else if tg, ok := m.Value.(Tagged); ok {
				b.WriteString(" " + tg.Tag + "\n")
				pad(b, indent+2)
				write(b, tg.Value, indent+2)
			} else {
				b.WriteByte('\n')
				pad(b, indent+2)
				write(b, m.Value, indent+2)
			}
		}
	}
}

// writeKey renders a mapping key on one line; collection keys use flow
// form.
func writeKey(b *strings.Builder, k Value) {
	switch t := k.(type) {
	case Sequence, Mapping:
		writeFlow(b, t)
	case Tagged:
		b.WriteString(t.Tag)
		b.WriteByte(' ')
		writeKey(b, t.Value)
	default:
		write(b, k, 0)
	}
}

func writeFlow(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case Sequence:
		b.WriteByte('[')
		for i, it := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			writeFlow(b, it)
		}
		b.WriteByte(']')
	case Mapping:
		b.WriteByte('{')
		for i, m := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			writeKey(b, m.Key)
			b.WriteString(": ")
			writeFlow(b, m.Value)
		}
		b.WriteByte('}')
	case Tagged:
		b.WriteString(t.Tag)
		b.WriteByte(' ')
		writeFlow(b, t.Value)
	default:
		write(b, v, 0)
	}
}

func pad(b *strings.Builder, n int) {
	for range n {
		b.WriteByte(' ')
	}
}

// yamlText spells the number so it re-parses with the same kind: a
// float that happens to be integral still gets a decimal point.
func (n Number) yamlText() string {
	switch n.Kind {
	case scalar.UintKind:
		return strconv.FormatUint(n.Uint, 10)
	case scalar.IntKind:
		return strconv.FormatInt(n.Int, 10)
	}
	f := n.Float
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
