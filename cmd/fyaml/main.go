// Copyright (C) 2025 The fyaml Authors. All Rights Reserved.

// Program fyaml reads, edits and streams YAML documents from the
// command line.
//
// Usage:
//
//	fyaml get FILE [PATH]       print the node at PATH ("" for the root)
//	fyaml set FILE PATH YAML    replace the node at PATH and rewrite FILE
//	fyaml del FILE PATH         delete the node at PATH and rewrite FILE
//	fyaml stream [FILE]         re-emit each document of a stream
//
// With no FILE, stream reads standard input. Paths are slash-separated
// mapping keys and sequence indexes, for example "servers/0/name".
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/0k/fyaml"
)

var colorFlag = flag.String("color", "auto", "colorize output: auto, always, never")

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %[1]s [flags] command args...

Commands:
  get FILE [PATH]       print the node at PATH (whole document if omitted)
  set FILE PATH YAML    replace the node at PATH and rewrite FILE
  del FILE PATH         delete the node at PATH and rewrite FILE
  stream [FILE]         re-emit each document of a stream (stdin if omitted)

Flags:
`, os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}
	setupColor(*colorFlag)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	var err error
	switch cmd {
	case "get":
		err = runGet(args)
	case "set":
		err = runSet(args)
	case "del":
		err = runDel(args)
	case "stream":
		err = runStream(args)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", os.Args[0], cmd)
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", os.Args[0], cmd, err)
		os.Exit(1)
	}
}

func loadFile(path string) (*fyaml.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fyaml.ParseBytes(data)
}

func runGet(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("get requires FILE [PATH]")
	}
	d, err := loadFile(args[0])
	if err != nil {
		return err
	}
	defer d.Close()

	if len(args) == 1 {
		text, err := d.Emit()
		if err != nil {
			return err
		}
		printYAML(text)
		return nil
	}
	ref, ok := d.At(args[1])
	if !ok {
		return fmt.Errorf("path not found: %q", args[1])
	}
	text, err := ref.Emit()
	if err != nil {
		return err
	}
	printYAML(text + "\n")
	return nil
}

func runSet(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("set requires FILE PATH YAML")
	}
	d, err := loadFile(args[0])
	if err != nil {
		return err
	}
	defer d.Close()

	ed := d.Edit()
	if err := ed.SetYAML(args[1], args[2]); err != nil {
		ed.Close()
		return err
	}
	ed.Close()
	return writeBack(d, args[0])
}

func runDel(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("del requires FILE PATH")
	}
	d, err := loadFile(args[0])
	if err != nil {
		return err
	}
	defer d.Close()

	ed := d.Edit()
	found, err := ed.Delete(args[1])
	ed.Close()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("path not found: %q", args[1])
	}
	return writeBack(d, args[0])
}

func runStream(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("stream takes at most one FILE")
	}
	var s *fyaml.Stream
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		s, err = fyaml.NewStreamReader(f)
		if err != nil {
			return err
		}
	} else {
		var err error
		s, err = fyaml.NewStreamStdin(fyaml.LineBuffered(true))
		if err != nil {
			return err
		}
	}
	defer s.Close()

	first := true
	for d, err := range s.Docs() {
		if err != nil {
			return err
		}
		text, eerr := d.Emit()
		d.Close()
		if eerr != nil {
			return eerr
		}
		if !first {
			printMarker()
		}
		first = false
		printYAML(text)
	}
	return nil
}

func writeBack(d *fyaml.Document, path string) error {
	text, err := d.Emit()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}
