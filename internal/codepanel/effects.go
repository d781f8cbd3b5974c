package codepanel

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by the OSC 52 clipboard when output is not a terminal.
var ErrNotTerminal = errors.New("clipboard requires an interactive terminal")

// OSC52Clipboard copies text by emitting an OSC 52 escape sequence, which
// most terminal emulators (including over SSH and tmux) forward to the
// system clipboard.
type OSC52Clipboard struct {
	out io.Writer
	fd  int
}

// NewOSC52Clipboard creates a clipboard writing to f.
func NewOSC52Clipboard(f *os.File) *OSC52Clipboard {
	return &OSC52Clipboard{out: f, fd: int(f.Fd())} //nolint:gosec // fd fits in int
}

// WriteText emits the escape sequence for text.
func (c *OSC52Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !term.IsTerminal(c.fd) {
		return ErrNotTerminal
	}
	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
	if _, err := io.WriteString(c.out, seq); err != nil {
		return fmt.Errorf("failed to write clipboard sequence: %w", err)
	}
	return nil
}

// DirSink saves downloaded files into a directory.
type DirSink struct {
	Dir string
}

// Save writes file to Dir/<file.Name>, replacing any existing file.
func (s DirSink) Save(ctx context.Context, file File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(file.Name))
	if err := os.WriteFile(path, []byte(file.Content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriterSink writes the file content to an io.Writer, e.g. stdout.
type WriterSink struct {
	W io.Writer
}

// Save writes file.Content to W.
func (s WriterSink) Save(_ context.Context, file File) error {
	_, err := io.WriteString(s.W, file.Content)
	return err
}
