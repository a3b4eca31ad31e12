// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package fyaml

import "github.com/0k/fyaml/internal/engine"

// Kind identifies the structural class of a node.
type Kind = engine.Kind

const (
	KindScalar   = engine.KindScalar
	KindSequence = engine.KindSequence
	KindMapping  = engine.KindMapping
)

// Style records how a node is presented in text form. StyleAny, the
// style of freshly built nodes, lets the emitter choose.
type Style = engine.Style

const (
	StyleAny          = engine.StyleAny
	StylePlain        = engine.StylePlain
	StyleSingleQuoted = engine.StyleSingleQuoted
	StyleDoubleQuoted = engine.StyleDoubleQuoted
	StyleLiteral      = engine.StyleLiteral
	StyleFolded       = engine.StyleFolded
	StyleFlow         = engine.StyleFlow
	StyleBlock        = engine.StyleBlock
	StyleAlias        = engine.StyleAlias
)
