// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docgen renders the clubpulse command reference. The command tree is the
// source of truth for names, usage, roles and flags; docs/commands/<cmd>.md
// contributes the short description and the Quick examples block.
//
// Output, per top-level command:
//   - docs/reference/clubpulse-<cmd>.md
//   - docs/man/share/man1/clubpulse-<cmd>.1 (md2man of the reference page)
//   - docs/tldr/clubpulse-<cmd>.md
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/command"
	"github.com/staranto/clubpulse/internal/meta"
)

func main() {
	var (
		root          string
		onlyIfChanged bool
	)
	flag.StringVar(&root, "root", ".", "repo root")
	flag.BoolVar(&onlyIfChanged, "only-if-changed", true, "only write files whose content changed")
	flag.Parse()

	n, err := run(command.NewApp(meta.Meta{}), root, onlyIfChanged)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("docgen: %d files written\n", n)
}

type layout struct {
	commands, reference, man, tldr string
}

func newLayout(root string) layout {
	return layout{
		commands:  filepath.Join(root, "docs", "commands"),
		reference: filepath.Join(root, "docs", "reference"),
		man:       filepath.Join(root, "docs", "man", "share", "man1"),
		tldr:      filepath.Join(root, "docs", "tldr"),
	}
}

// run renders every visible top-level command of app under root and returns
// how many files were written.
func run(app *cli.Command, root string, onlyIfChanged bool) (int, error) {
	dirs := newLayout(root)
	for _, d := range []string{dirs.reference, dirs.man, dirs.tldr} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return 0, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	var written, documented int
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}
		documented++

		hand, err := readHandDoc(filepath.Join(dirs.commands, cmd.Name+".md"))
		if err != nil {
			return written, err
		}

		ref := renderReference(cmd, hand)
		base := "clubpulse-" + cmd.Name
		pages := []struct {
			path string
			body []byte
		}{
			{filepath.Join(dirs.reference, base+".md"), []byte(ref)},
			{filepath.Join(dirs.man, base+".1"), md2man.Render([]byte(ref))},
			{filepath.Join(dirs.tldr, base+".md"), []byte(renderTLDR(cmd, hand))},
		}
		for _, p := range pages {
			ok, err := writeIfChanged(p.path, p.body, onlyIfChanged)
			if err != nil {
				return written, fmt.Errorf("writing %s: %w", p.path, err)
			}
			if ok {
				written++
			}
		}
	}

	if documented == 0 {
		return 0, errors.New("no visible commands to document")
	}
	return written, nil
}

// readHandDoc parses the hand-written page for a command. A missing page is
// not an error; the reference is then generated from the tree alone.
func readHandDoc(path string) (handDoc, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return handDoc{}, nil
	}
	if err != nil {
		return handDoc{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return parseHandDoc(string(raw)), nil
}

// writeIfChanged writes body to path and reports whether it did. With
// onlyIfChanged, a file whose trimmed content already matches is left alone.
func writeIfChanged(path string, body []byte, onlyIfChanged bool) (bool, error) {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(body)):
			return false, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return false, err
		}
	}
	return true, os.WriteFile(path, body, 0o644)
}
