// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

// Package scalar implements type inference for plain YAML scalars.
//
// YAML does not mark scalar types on the wire; a plain (unquoted) scalar
// is a null, boolean, number, or string depending solely on its spelling.
// The functions in this package classify a scalar's raw text using the
// YAML 1.1 core schema rules: the resolution each function performs is
// purely lexical and never consults surrounding document context.
//
// Quoted and block scalars are always strings; callers are expected to
// check the node style before asking for inference.
package scalar

import (
	"math"
	"strconv"
	"strings"
)

// IsNull reports whether s spells the null value: the empty string, "~",
// or any capitalization of "null".
func IsNull(s string) bool {
	return s == "" || s == "~" || strings.EqualFold(s, "null")
}

// ParseBool resolves the YAML 1.1 boolean spellings. The single-letter
// forms "y" and "n" are deliberately not recognized; in practice they are
// almost always intended as strings.
func ParseBool(s string) (value, ok bool) {
	switch s {
	case "true", "True", "TRUE", "yes", "Yes", "YES", "on", "On", "ON":
		return true, true
	case "false", "False", "FALSE", "no", "No", "NO", "off", "Off", "OFF":
		return false, true
	}
	return false, false
}

// ParseInt resolves s as a signed integer. An optional leading sign is
// followed by a decimal magnitude or a 0x/0o/0b prefixed one. The full
// int64 range is accepted, including math.MinInt64, whose magnitude does
// not itself fit in an int64.
func ParseInt(s string) (int64, bool) {
	body, neg := splitSign(s)
	mag, ok := parseMagnitude(body)
	if !ok {
		return 0, false
	}
	if neg {
		if mag > 1<<63 {
			return 0, false
		}
		if mag == 1<<63 {
			return math.MinInt64, true
		}
		return -int64(mag), true
	}
	if mag > math.MaxInt64 {
		return 0, false
	}
	return int64(mag), true
}

// ParseUint resolves s as an unsigned integer. A leading "-" always
// fails, even for "-0".
func ParseUint(s string) (uint64, bool) {
	body, neg := splitSign(s)
	if neg {
		return 0, false
	}
	return parseMagnitude(body)
}

// ParseFloat resolves s as a floating-point value. The YAML special
// spellings .inf, +.inf, -.inf and .nan match in any capitalization;
// everything else goes through ordinary decimal parsing. Go-specific
// literal forms that YAML has no notion of (hexadecimal floats,
// digit-group underscores) are rejected.
func ParseFloat(s string) (float64, bool) {
	switch {
	case strings.EqualFold(s, ".inf"), strings.EqualFold(s, "+.inf"):
		return math.Inf(1), true
	case strings.EqualFold(s, "-.inf"):
		return math.Inf(-1), true
	case strings.EqualFold(s, ".nan"):
		return math.NaN(), true
	}
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberKind discriminates the active representation of a Number.
type NumberKind uint8

const (
	UintKind NumberKind = iota
	IntKind
	FloatKind
)

// A Number is the result of numeric inference on a scalar. Exactly one
// of the value fields is meaningful, selected by Kind.
type Number struct {
	Kind  NumberKind
	Uint  uint64
	Int   int64
	Float float64
}

// ParseNumber resolves s as a number, preferring the narrowest
// representation: non-negative integers become UintKind, negative ones
// IntKind, and everything else FloatKind. A scalar only qualifies as a
// float if it carries a decimal point, an exponent, or one of the
// special spellings; "42" is an integer and "inf" is a string.
func ParseNumber(s string) (Number, bool) {
	if u, ok := ParseUint(s); ok {
		return Number{Kind: UintKind, Uint: u}, true
	}
	if i, ok := ParseInt(s); ok {
		return Number{Kind: IntKind, Int: i}, true
	}
	if looksFloat(s) {
		if f, ok := ParseFloat(s); ok {
			return Number{Kind: FloatKind, Float: f}, true
		}
	}
	return Number{}, false
}

// NeedsQuoting reports whether emitting s as a plain scalar would change
// its meaning on re-parse, either by resolving to a non-string type or by
// colliding with YAML syntax. Callers that hold a string value must quote
// s whenever this returns true.
func NeedsQuoting(s string) bool {
	if IsNull(s) {
		return true
	}
	if _, ok := ParseBool(s); ok {
		return true
	}
	if _, ok := ParseNumber(s); ok {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	if strings.IndexByte("-?:,[]{}#&*!|>'\"%@` ", s[0]) >= 0 {
		return true
	}
	if strings.Contains(s, ": ") || strings.HasSuffix(s, ":") {
		return true
	}
	if strings.Contains(s, " #") {
		return true
	}
	return strings.ContainsAny(s, "\n\t")
}

func splitSign(s string) (body string, neg bool) {
	switch {
	case strings.HasPrefix(s, "-"):
		return s[1:], true
	case strings.HasPrefix(s, "+"):
		return s[1:], false
	}
	return s, false
}

// parseMagnitude parses an unsigned magnitude with an optional base
// prefix. strconv is given an explicit base so that Go literal niceties
// such as underscores stay rejected.
func parseMagnitude(s string) (uint64, bool) {
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, s = 16, s[2:]
		case 'o', 'O':
			base, s = 8, s[2:]
		case 'b', 'B':
			base, s = 2, s[2:]
		}
	}
	if strings.Contains(s, "_") {
		return 0, false
	}
	u, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, false
	}
	return u, true
}

// looksFloat reports whether s has float shape at all: a decimal point
// or an exponent marker. The special spellings all carry a dot, so they
// pass too. Plain integers fail this on purpose so they are never
// widened silently.
func looksFloat(s string) bool {
	return strings.ContainsAny(s, ".eE")
}
