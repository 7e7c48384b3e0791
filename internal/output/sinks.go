package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"

	"go-hammy-upload/internal/helpers"
)

// StdoutSink prints the formatted links to the console. It is the
// default destination when no explicit sink was chosen.
type StdoutSink struct {
	W io.Writer
}

func NewStdoutSink() *StdoutSink {
	return &StdoutSink{W: os.Stdout}
}

func (s *StdoutSink) Name() string { return "stdout" }

func (s *StdoutSink) Write(text string) error {
	_, err := fmt.Fprintln(s.W, text)
	return err
}

// FileSink appends the formatted links to a timestamped text file under
// the configured directory.
type FileSink struct {
	Path string
}

// NewFileSink builds a sink writing to links-<timestamp>.txt inside dir,
// creating the directory when missing.
func NewFileSink(dir string) (*FileSink, error) {
	if !helpers.CheckAndMakeDir(dir) {
		return nil, fmt.Errorf("creating output directory %s", dir)
	}
	name := fmt.Sprintf("links-%s.txt", time.Now().Format("2006-01-02-15-04-05"))
	return &FileSink{Path: filepath.Join(dir, name)}, nil
}

func (s *FileSink) Name() string { return "file " + s.Path }

func (s *FileSink) Write(text string) error {
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening output file %s: %w", s.Path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(text + "\n"); err != nil {
		return fmt.Errorf("writing output file %s: %w", s.Path, err)
	}
	return nil
}

// ClipboardSink places the formatted links on the system clipboard.
type ClipboardSink struct{}

func (ClipboardSink) Name() string { return "clipboard" }

func (ClipboardSink) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
