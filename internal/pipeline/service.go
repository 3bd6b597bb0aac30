package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/contractgest/internal/config"
	"github.com/dgallion1/contractgest/internal/doctree"
	"github.com/dgallion1/contractgest/internal/layout"
	"github.com/dgallion1/contractgest/internal/parser"
	"github.com/google/uuid"
)

// Cache stores assembled records keyed by source content.
type Cache interface {
	Get(ctx context.Context, key string) (*doctree.DocumentMetadata, bool, error)
	Put(ctx context.Context, key string, meta *doctree.DocumentMetadata) error
}

// Service parses documents end to end: backend, merge, classify, assemble.
type Service struct {
	assembler *Assembler
	cache     Cache
	opts      parser.Options
	log       *slog.Logger
	settings  string

	// Stats tracks recent parses.
	Stats *ParseStats

	open func(data []byte, filename string, opts parser.Options) (layout.Document, error)
}

// NewService wires a Service from configuration. cache may be nil.
func NewService(cfg config.Config, cache Cache, log *slog.Logger) *Service {
	asm := NewAssembler(cfg.HeaderBand, cfg.FooterHeight, log)
	return &Service{
		assembler: asm,
		cache:     cache,
		opts: parser.Options{
			RowTolerance: cfg.RowTolerance,
			BlockGap:     cfg.BlockGap,
			Logger:       log,
		},
		log:      log,
		settings: fmt.Sprintf("f%g:h%g:r%g:b%g", asm.FooterHeight, asm.HeaderBand, cfg.RowTolerance, cfg.BlockGap),
		Stats:    NewParseStats(cfg.StatsWindow),
		open:     parser.Parse,
	}
}

// ParseFile reads and parses the document at path.
func (s *Service) ParseFile(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s.Parse(ctx, data, filepath.Base(path))
}

// Parse builds the document record for data. filename selects the backend
// by extension.
func (s *Service) Parse(ctx context.Context, data []byte, filename string) (*Result, error) {
	start := time.Now()
	log := s.log.With("file", filename)

	hash := ContentHashHex(data)
	res := &Result{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentHash: hash,
		CreatedAt:   start,
	}
	key := cacheKey(hash, filename, s.settings)

	if s.cache != nil {
		meta, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("cache lookup failed", "error", err)
		case ok:
			log.Debug("cache hit", "content_hash", hash)
			res.Metadata = meta
			res.Cached = true
			s.Stats.Record(time.Since(start), 0, true)
			return res, nil
		}
	}

	doc, err := s.open(data, filename, s.opts)
	if err != nil {
		s.Stats.RecordFailure()
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	defer doc.Close()

	meta, err := s.assembler.Assemble(ctx, doc)
	if err != nil {
		s.Stats.RecordFailure()
		return nil, err
	}
	res.Metadata = meta
	res.Pages = doc.PageCount()
	s.Stats.Record(time.Since(start), res.Pages, false)

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, meta); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}

	log.Info("document parsed",
		"document_id", res.ID,
		"pages", res.Pages,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// cacheKey combines the content hash with the extension and the layout
// settings. The same bytes parse differently under a different backend or
// with different footer, header band, row or block thresholds.
func cacheKey(hash, filename, settings string) string {
	return hash + ":" + strings.ToLower(filepath.Ext(filename)) + ":" + settings
}
