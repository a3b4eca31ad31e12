// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

package fyaml

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/0k/fyaml/internal/engine"
	"golang.org/x/sys/unix"
)

// parserState is the shared backing of a stream and the documents
// loaded from it. The parser (and with it the stream's input) is torn
// down when the last holder lets go, so documents are free to outlive
// the Stream that produced them.
type parserState struct {
	p    *engine.Parser
	refs int
}

func (s *parserState) acquire() { s.refs++ }

func (s *parserState) release() error {
	s.refs--
	if s.refs > 0 {
		return nil
	}
	if err := s.p.Destroy(); err != nil {
		return engineErr(err)
	}
	return nil
}

// releaseDoc hands a loaded document back to the parser and drops the
// document's hold on the shared state.
func (s *parserState) releaseDoc(d *engine.Doc) error {
	if err := s.p.DestroyDocument(d); err != nil {
		return engineErr(err)
	}
	return s.release()
}

// A Stream parses the documents of a multi-document YAML stream, one
// document per "---" frame, lazily: each document is read and parsed
// when the iteration asks for it. Documents are independent of the
// Stream once loaded and may be closed in any order, before or after
// the Stream itself.
//
// A Stream is not restartable: Docs yields each document once, and a
// parse failure ends the iteration for good. Like Document, a Stream
// is confined to a single goroutine.
type Stream struct {
	state  *parserState
	done   bool
	closed bool
}

type streamConfig struct {
	lineBuffered bool
	closer       io.Closer
}

// A StreamOption adjusts how a stream reads its input.
type StreamOption func(*streamConfig)

// LineBuffered selects line-at-a-time reading. This keeps interactive
// input responsive; without it the whole input is read up front before
// the first document is parsed.
func LineBuffered(on bool) StreamOption {
	return func(c *streamConfig) { c.lineBuffered = on }
}

// NewStream parses the YAML stream in text. An empty stream is valid
// and yields no documents.
func NewStream(text string) (*Stream, error) {
	return newStream(strings.NewReader(text), streamConfig{lineBuffered: true})
}

// NewStreamReader parses the YAML stream from r. Unless LineBuffered
// is selected the input is read eagerly, and a read failure surfaces
// here as ErrIO rather than during iteration.
func NewStreamReader(r io.Reader, opts ...StreamOption) (*Stream, error) {
	var cfg streamConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return newStream(r, cfg)
}

// NewStreamStdin parses the YAML stream from standard input. The
// stream reads through its own duplicate of the stdin descriptor, so
// the caller's os.Stdin is unaffected by the stream's lifetime.
func NewStreamStdin(opts ...StreamOption) (*Stream, error) {
	var cfg streamConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	fd, err := unix.Dup(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("%w: dup stdin: %v", ErrIO, err)
	}
	f := os.NewFile(uintptr(fd), "stdin")
	cfg.closer = f
	s, err := newStream(f, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func newStream(r io.Reader, cfg streamConfig) (*Stream, error) {
	if !cfg.lineBuffered {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		r = bytes.NewReader(data)
	}
	state := &parserState{p: engine.NewParser(r, cfg.closer)}
	state.acquire() // the stream's own hold
	return &Stream{state: state}, nil
}

// Docs iterates over the documents of the stream in order. Each loaded
// document is owned by the caller and must be closed. When loading a
// document fails the iteration yields (nil, error) once and stops;
// documents already yielded stay valid.
func (s *Stream) Docs() iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		for {
			if s.closed || s.done {
				return
			}
			d, fail := s.state.p.LoadDocument()
			if fail != nil {
				s.done = true
				yield(nil, parseFailure(fail))
				return
			}
			if d == nil {
				s.done = true
				return
			}
			s.state.acquire()
			doc := &Document{eng: d, own: ownParser, state: s.state}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Close drops the stream's hold on the parser. Close is idempotent.
// Input teardown happens once every document loaded from the stream is
// closed as well.
func (s *Stream) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	return s.state.release()
}
