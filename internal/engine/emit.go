// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package engine

import (
	"fmt"
	"strings"

	"github.com/0k/fyaml/scalar"
)

// EmitDocument renders the whole document. The result always ends with
// a newline; an empty document renders as the empty string.
func EmitDocument(d *Doc) string {
	if d.root == nil {
		return ""
	}
	return strings.Join(emitLines(d.root, 0), "\n") + "\n"
}

// EmitNode renders a single subtree. Unlike whole documents, node text
// carries no trailing newline.
func EmitNode(n *Node) string {
	return strings.Join(emitLines(n, 0), "\n")
}

// emitLines renders n as fully indented lines for block context at the
// given indent.
func emitLines(n *Node, indent int) []string {
	pad := strings.Repeat(" ", indent)
	if n.kind == KindScalar {
		s := joinHead(headText(n), inlineScalar(n, indent))
		return append(commentLines(n, pad), pad+s)
	}
	if useFlow(n) {
		return append(commentLines(n, pad), pad+joinHead(headText(n), flowText(n)))
	}
	lines := commentLines(n, pad)
	if n.kind == KindSequence {
		return append(lines, blockSequence(n, indent)...)
	}
	return append(lines, blockMapping(n, indent)...)
}

func blockMapping(n *Node, indent int) []string {
	pad := strings.Repeat(" ", indent)
	var lines []string
	for _, p := range n.pairs {
		lines = append(lines, commentLines(p.Key, pad)...)
		if p.Key.kind != KindScalar {
			// Complex key: explicit "? key" form with a flow key.
			lines = append(lines, pad+"? "+joinHead(headText(p.Key), flowText(p.Key)))
			lines = append(lines, entryLines(p.Value, pad+":", indent)...)
			continue
		}
		key := keyText(p.Key)
		lines = append(lines, entryLines(p.Value, pad+key+":", indent)...)
	}
	return lines
}

func blockSequence(n *Node, indent int) []string {
	pad := strings.Repeat(" ", indent)
	var lines []string
	for _, it := range n.items {
		lines = append(lines, commentLines(it, pad)...)
		switch {
		case it.kind == KindScalar:
			s := joinHead(headText(it), inlineScalar(it, indent))
			if s == "" {
				lines = append(lines, pad+"-")
			} else {
				lines = append(lines, pad+"- "+s)
			}
		case useFlow(it):
			lines = append(lines, pad+"- "+joinHead(headText(it), flowText(it)))
		default:
			sub := emitLines(it, indent+2)
			first := sub[0][indent+2:]
			if headText(it) != "" || strings.HasPrefix(first, "#") {
				// No compact form under an anchor, tag or comment.
				lines = append(lines, pad+"- "+headText(it))
				lines = append(lines, sub...)
			} else {
				lines = append(lines, pad+"- "+first)
				lines = append(lines, sub[1:]...)
			}
		}
	}
	return lines
}

// entryLines renders a mapping value after its already formatted lead
// ("key:" or ":" for complex keys), splitting block collections onto
// the following lines.
func entryLines(v *Node, lead string, indent int) []string {
	head := headText(v)
	if v.kind == KindScalar {
		s := joinHead(head, inlineScalar(v, indent))
		if s == "" {
			return []string{lead}
		}
		return []string{lead + " " + s}
	}
	if useFlow(v) {
		return []string{lead + " " + joinHead(head, flowText(v))}
	}
	var lines []string
	if head != "" {
		lines = append(lines, lead+" "+head)
	} else {
		lines = append(lines, lead)
	}
	return append(lines, emitLines(v, indent+2)...)
}

// useFlow reports whether a collection renders inline: either it was in
// flow style, or it is empty (for which block form has no spelling).
func useFlow(n *Node) bool {
	if n.style == StyleFlow {
		return true
	}
	return len(n.items) == 0 && len(n.pairs) == 0
}

func headText(n *Node) string {
	var parts []string
	if n.anchor != "" {
		parts = append(parts, "&"+n.anchor)
	}
	if n.tag != "" {
		parts = append(parts, n.tag)
	}
	return strings.Join(parts, " ")
}

func joinHead(head, body string) string {
	switch {
	case head == "":
		return body
	case body == "":
		return head
	}
	return head + " " + body
}

func commentLines(n *Node, pad string) []string {
	var lines []string
	for _, c := range n.comments {
		if c == "" {
			lines = append(lines, pad+"#")
		} else {
			lines = append(lines, pad+"# "+c)
		}
	}
	return lines
}

// keyText renders a scalar mapping key on a single line.
func keyText(k *Node) string {
	if k.style == StyleAlias {
		return "*" + k.text
	}
	s := joinHead(headText(k), quotableScalar(k, false))
	return s
}

// inlineScalar renders a scalar for block context at the given indent.
// Literal and folded scalars expand to a multi-line block whose body is
// indented two past the current level; everything else stays on one
// line.
func inlineScalar(n *Node, indent int) string {
	switch n.style {
	case StyleAlias:
		return "*" + n.text
	case StyleLiteral:
		return blockScalar(n.text, indent, false)
	case StyleFolded:
		return blockScalar(n.text, indent, true)
	}
	return quotableScalar(n, false)
}

// quotableScalar renders a single-line scalar, upgrading the style when
// the text cannot be represented safely as written. Plain-parsed text
// is only quoted when it would collide with syntax; text with no fixed
// style is additionally quoted when a re-parse would change its type.
func quotableScalar(n *Node, flow bool) string {
	text := n.text
	switch n.style {
	case StyleDoubleQuoted:
		return doubleQuote(text)
	case StyleSingleQuoted:
		if !singleQuotable(text) {
			return doubleQuote(text)
		}
		return singleQuote(text)
	case StyleLiteral, StyleFolded:
		// Forced inline (flow context or mapping key).
		return doubleQuote(text)
	}

	unsafe := plainUnsafe(text, flow)
	if n.style == StyleAny && !unsafe {
		unsafe = scalar.NeedsQuoting(text)
	}
	if !unsafe {
		return text
	}
	if singleQuotable(text) {
		return singleQuote(text)
	}
	return doubleQuote(text)
}

// QuoteScalar renders freestanding string content on one line, quoting
// exactly when a plain spelling would be misread as syntax or as a
// different type.
func QuoteScalar(text string) string {
	if text != "" && !plainUnsafe(text, false) && !scalar.NeedsQuoting(text) {
		return text
	}
	if singleQuotable(text) {
		return singleQuote(text)
	}
	return doubleQuote(text)
}

// plainUnsafe reports whether text emitted plain would be misread as
// syntax. This is a purely syntactic check; type ambiguity is the
// concern of scalar.NeedsQuoting.
func plainUnsafe(text string, flow bool) bool {
	if text == "" {
		return false
	}
	if text != strings.TrimSpace(text) || strings.ContainsAny(text, "\n\t") {
		return true
	}
	switch text[0] {
	case '-', '?', ':':
		if len(text) == 1 || text[1] == ' ' {
			return true
		}
	default:
		if strings.IndexByte(",[]{}#&*!|>'\"%@`", text[0]) >= 0 {
			return true
		}
	}
	if flow && strings.ContainsAny(text, ",[]{}") {
		return true
	}
	return strings.Contains(text, ": ") ||
		strings.HasSuffix(text, ":") ||
		strings.Contains(text, " #")
}

func singleQuotable(text string) bool {
	if strings.ContainsAny(text, "\n\r") {
		return false
	}
	for _, r := range text {
		if r < 0x20 {
			return false
		}
	}
	return true
}

func singleQuote(text string) string {
	return "'" + strings.ReplaceAll(text, "'", "''") + "'"
}

func doubleQuote(text string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range text {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// blockScalar renders a literal or folded block at the given indent.
// Content a block form cannot carry falls back first from folded to
// literal, then to a double-quoted line.
func blockScalar(text string, indent int, folded bool) string {
	if text == "" || leadingSpace(firstLine(text)) {
		return doubleQuote(text)
	}
	body := strings.TrimSuffix(text, "\n")
	header := "|"
	if folded {
		if !foldable(text) {
			folded = false
		} else {
			header = ">"
		}
	}
	switch {
	case !strings.HasSuffix(text, "\n"):
		header += "-"
	case strings.HasSuffix(body, "\n"):
		header += "+"
		body = text[:len(text)-1]
	}

	pad := strings.Repeat(" ", indent+2)
	var lines []string
	for i, line := range strings.Split(body, "\n") {
		if folded && i > 0 {
			// Folding turns a paragraph break back into one newline.
			lines = append(lines, "")
		}
		if line == "" {
			lines = append(lines, "")
		} else {
			lines = append(lines, pad+line)
		}
	}
	return header + "\n" + strings.Join(lines, "\n")
}

// foldable reports whether every line of text survives the fold round
// trip: more-indented lines would be taken literally and blank-line
// runs would collapse differently, so both force literal form.
func foldable(text string) bool {
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		if line == "" || leadingSpace(line) {
			return false
		}
	}
	return true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func leadingSpace(s string) bool {
	return s != "" && (s[0] == ' ' || s[0] == '\t')
}

// flowText renders any subtree on one line in flow style.
func flowText(n *Node) string {
	switch n.kind {
	case KindSequence:
		if len(n.items) == 0 {
			return "[]"
		}
		parts := make([]string, len(n.items))
		for i, it := range n.items {
			parts[i] = joinHead(headText(it), flowItem(it))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		if len(n.pairs) == 0 {
			return "{}"
		}
		parts := make([]string, len(n.pairs))
		for i, p := range n.pairs {
			parts[i] = flowItem(p.Key) + ": " + joinHead(headText(p.Value), flowItem(p.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return flowItem(n)
}

func flowItem(n *Node) string {
	if n.kind != KindScalar {
		return flowText(n)
	}
	if n.style == StyleAlias {
		return "*" + n.text
	}
	return quotableScalar(n, true)
}
