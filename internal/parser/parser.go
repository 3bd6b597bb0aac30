package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/contractgest/internal/layout"
)

// ErrUnsupportedFormat is returned for file extensions without a parser.
var ErrUnsupportedFormat = errors.New("unsupported file extension")

// Parser converts raw document bytes into positioned page layout.
type Parser interface {
	Parse(r io.Reader, filename string) (layout.Document, error)
}

// Options tunes the layout backends.
type Options struct {
	// RowTolerance is the vertical distance, in points, within which PDF
	// glyphs are treated as one line.
	RowTolerance float64
	// BlockGap is the largest gap between PDF lines, as a multiple of the
	// font size, that still keeps them in one block.
	BlockGap float64
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.RowTolerance <= 0 {
		o.RowTolerance = DefaultRowTolerance
	}
	if o.BlockGap <= 0 {
		o.BlockGap = DefaultBlockGap
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	opts = opts.withDefaults()
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{RowTolerance: opts.RowTolerance, BlockGap: opts.BlockGap, log: opts.Logger}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Parse picks a parser from filename and runs it over data.
func Parse(data []byte, filename string, opts Options) (layout.Document, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	return p.Parse(bytes.NewReader(data), filepath.Base(filename))
}

// readerAt returns r as an io.ReaderAt with its size, buffering it when r
// does not support random access.
func readerAt(r io.Reader) (io.ReaderAt, int64, error) {
	if br, ok := r.(*bytes.Reader); ok {
		return br, br.Size(), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}
