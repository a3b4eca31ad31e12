// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	keyColor     = color.New(color.FgCyan).SprintFunc()
	commentColor = color.New(color.FgBlue).SprintFunc()
	markerColor  = color.New(color.FgMagenta).SprintFunc()
	anchorColor  = color.New(color.FgYellow).SprintFunc()
)

// setupColor resolves the -color flag; "auto" enables color only when
// stdout is a terminal. The color package reads NO_COLOR on its own.
func setupColor(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			color.NoColor = true
		}
	}
}

func printMarker() { fmt.Println(markerColor("---")) }

// printYAML writes text to stdout with line-level highlighting: mapping
// keys, full-line comments and anchors. It recognizes presentation, not
// grammar, so quoted text containing ": " is colored as if it were a
// key; for a display aid that is good enough.
func printYAML(text string) {
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		fmt.Println(highlightLine(line))
	}
}

func highlightLine(line string) string {
	trimmed := strings.TrimLeft(line, " -")
	if strings.HasPrefix(trimmed, "#") {
		return commentColor(line)
	}
	indent := line[:len(line)-len(trimmed)]
	if i := keySplit(trimmed); i >= 0 {
		rest := trimmed[i+1:]
		if t, ok := strings.CutPrefix(rest, " &"); ok {
			name, tail, more := strings.Cut(t, " ")
			rest = " " + anchorColor("&"+name)
			if more {
				rest += " " + tail
			}
		}
		return indent + keyColor(trimmed[:i]) + ":" + rest
	}
	return line
}

// keySplit returns the index of the colon ending a mapping key, or -1.
// Colons inside quotes do not count.
func keySplit(s string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ':':
			if i+1 == len(s) || s[i+1] == ' ' {
				return i
			}
		case c == '#':
			return -1
		}
	}
	return -1
}
