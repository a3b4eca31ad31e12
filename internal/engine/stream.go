// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package engine

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

var (
	errDocFreed        = errors.New("document already destroyed")
	errParserDestroyed = errors.New("parser already destroyed")
)

func errInvalidRelease(d *Doc) error {
	if d.parser == nil {
		return errors.New("document is not owned by a parser")
	}
	return errors.New("document belongs to a different parser")
}

// A Parser incrementally loads the documents of a YAML stream. Input is
// consumed lazily, one document at a time: nothing past the current
// document marker is read until the next LoadDocument call. Framing
// ("---" and "..." markers at column one) is recognized here; the
// content between markers goes through the ordinary document parser
// with error positions shifted back to stream coordinates.
//
// A Parser is not restartable and, like the documents it produces, must
// be confined to one goroutine.
type Parser struct {
	r      *bufio.Reader
	closer io.Closer

	buf       bytes.Buffer
	line      int // number of the line most recently read
	open      bool
	carry     string // content trailing a "---" on the marker line
	carryLine int

	eof       bool
	failed    bool
	destroyed bool
	docs      int // loaded documents not yet released
}

// NewParser returns a parser reading the stream from r. If closer is
// non-nil it is closed when the parser is destroyed.
func NewParser(r io.Reader, closer io.Closer) *Parser {
	return &Parser{r: bufio.NewReader(r), closer: closer}
}

// LoadDocument parses and returns the next document of the stream. At a
// clean end of input it returns (nil, nil); a read or parse failure is
// final and leaves the parser unusable for further loads.
func (p *Parser) LoadDocument() (*Doc, *ParseFailure) {
	if p.destroyed {
		return nil, &ParseFailure{Msg: "parser already destroyed"}
	}
	if p.failed {
		return nil, &ParseFailure{Msg: "parser is in a failed state"}
	}
	chunk, start, ok, fail := p.nextChunk()
	if fail != nil {
		p.failed = true
		return nil, fail
	}
	if !ok {
		return nil, nil
	}
	d, fail := p.parseChunk(chunk, start)
	if fail != nil {
		p.failed = true
		return nil, fail
	}
	p.docs++
	return d, nil
}

// nextChunk accumulates input lines up to the next document boundary.
// ok is false at a clean end of stream.
func (p *Parser) nextChunk() (chunk string, start int, ok bool, fail *ParseFailure) {
	p.buf.Reset()
	open := p.open
	p.open = false
	start = p.line + 1
	if p.carry != "" {
		start = p.carryLine
		p.buf.WriteString(p.carry)
		p.buf.WriteByte('\n')
		p.carry = ""
	}

	for !p.eof {
		line, err := p.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", 0, false, &ParseFailure{Msg: err.Error(), IO: true}
		}
		if err == io.EOF {
			p.eof = true
			if line == "" {
				break
			}
		}
		p.line++
		body := strings.TrimRight(line, "\r\n")

		if isMarker(body, "---") {
			rest := strings.TrimSpace(body[3:])
			if open || p.buf.Len() > 0 {
				// Boundary of the document in progress; remember any
				// content sharing the marker line for the next one.
				p.open = true
				if rest != "" {
					p.carry = rest
					p.carryLine = p.line
				}
				return p.buf.String(), start, true, nil
			}
			open = true
			start = p.line + 1
			if rest != "" {
				p.buf.WriteString(rest)
				p.buf.WriteByte('\n')
				start = p.line
			}
			continue
		}
		if isMarker(body, "...") {
			if open || p.buf.Len() > 0 {
				return p.buf.String(), start, true, nil
			}
			continue
		}

		if p.buf.Len() == 0 && !open && strings.TrimSpace(body) == "" {
			continue // blank space between documents
		}
		if p.buf.Len() == 0 {
			start = p.line
		}
		p.buf.WriteString(body)
		p.buf.WriteByte('\n')
	}

	if open || strings.TrimSpace(p.buf.String()) != "" {
		return p.buf.String(), start, true, nil
	}
	return "", 0, false, nil
}

// isMarker reports whether body is a document marker line: the token at
// column one, alone or followed by whitespace (and, for "---", inline
// content).
func isMarker(body, marker string) bool {
	if body == marker {
		return true
	}
	return strings.HasPrefix(body, marker+" ")
}

func (p *Parser) parseChunk(chunk string, start int) (*Doc, *ParseFailure) {
	d := &Doc{parser: p}
	if strings.TrimSpace(chunk) == "" {
		return d, nil // explicit empty document, e.g. bare "---"
	}
	root, fail := parseInto(d, []byte(chunk), true)
	if fail != nil {
		if fail.Line > 0 {
			fail.Line += start - 1
		}
		return nil, fail
	}
	if root == nil {
		return d, nil // comments only
	}
	root.attached = true
	d.root = root
	return d, nil
}

// DestroyDocument releases a document loaded from this parser. This is
// the only way such documents are released; Doc.Destroy refuses them.
func (p *Parser) DestroyDocument(d *Doc) error {
	if d.parser != p {
		return errInvalidRelease(d)
	}
	if d.freed {
		return errDocFreed
	}
	d.release()
	p.docs--
	return nil
}

// Destroy tears down the parser and closes its input, if the input was
// handed over with a closer. Documents already loaded stay valid; they
// hold the converted trees, not parser state.
func (p *Parser) Destroy() error {
	if p.destroyed {
		return errParserDestroyed
	}
	p.destroyed = true
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}
