package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/kindlecbz/pkg/archive"
	"github.com/walteh/kindlecbz/pkg/config"
	"github.com/walteh/kindlecbz/pkg/source"
	"github.com/walteh/kindlecbz/pkg/transform"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ScratchPrefix names every per-volume scratch directory.
const ScratchPrefix = "manga_kindle_"

var ErrCleanup = errors.Base("cleaning up scratch directory")

// ProgressFunc receives volume progress in percent (0-100).
type ProgressFunc func(percent float64)

// LogFunc receives one human-readable log line.
type LogFunc func(msg string)

// PageFunc receives every page result as soon as the page is done.
type PageFunc func(res PageResult)

// 🔧 Resolver enumerates the pages of one input
type Resolver interface {
	Resolve(ctx context.Context, input, scratchDir string) (*source.Volume, error)
}

// 🔧 ArchiveWriter packs finished pages
type ArchiveWriter interface {
	Write(ctx context.Context, entries []archive.Entry, dest string) error
}

// 🔧 Options contains configuration for the processor
type Options struct {
	// Resolver overrides the source resolver; nil builds one from Config.Ignore per volume
	Resolver Resolver
	// Writer overrides the archive writer
	Writer ArchiveWriter
	// RemoveAll deletes scratch directories, os.RemoveAll when nil
	RemoveAll func(path string) error
}

// 📥 Request describes one volume conversion
type Request struct {
	Input     string        // Directory, archive or image path
	OutputDir string        // Where the archive goes; Config.OutputDir when empty
	Config    config.Config // Geometry, rendering and scratch policy
	Progress  ProgressFunc  // Optional
	Log       LogFunc       // Optional
	Page      PageFunc      // Optional
}

// 📤 VolumeResult is the outcome of a converted volume
type VolumeResult struct {
	Input       string
	ArchivePath string
	Attempted   int
	Written     int
	Failures    []*PageError
	Pages       []PageResult
	// ScratchDir is the scratch directory used; it only still exists with KeepTemp.
	ScratchDir string
}

// 🎮 Processor converts one volume at a time into a device archive
type Processor struct {
	resolver  Resolver
	writer    ArchiveWriter
	removeAll func(string) error
}

// 🏭 NewProcessor creates a processor with the given options
func NewProcessor(opts Options) *Processor {
	p := &Processor{
		resolver:  opts.Resolver,
		writer:    opts.Writer,
		removeAll: opts.RemoveAll,
	}
	if p.writer == nil {
		p.writer = archive.NewWriter()
	}
	if p.removeAll == nil {
		p.removeAll = os.RemoveAll
	}
	return p
}

// PageName is the archive entry name of attempt ordinal index.
func PageName(index int) string {
	return fmt.Sprintf("%04d.jpg", index)
}

// sink serialises callbacks so parallel pages never call them concurrently.
type sink struct {
	mu       sync.Mutex
	progress ProgressFunc
	log      LogFunc
	page     PageFunc
}

func (s *sink) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log(fmt.Sprintf(format, args...))
}

// done reports a finished page and the progress reached with it.
func (s *sink) done(res PageResult, percent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Err != nil && s.log != nil {
		s.log(fmt.Sprintf("ERROR processing %s: %v", res.Err.Path, res.Err.Err))
	}
	if s.page != nil {
		s.page(res)
	}
	if s.progress != nil {
		s.progress(percent)
	}
}

// 🎯 ProcessVolume converts one input into "<base> - kindle.cbz" inside the output folder.
//
// Page failures are collected in the result and never abort the volume. Resolution,
// archive and cancellation errors abort it and no archive is written.
func (p *Processor) ProcessVolume(ctx context.Context, req Request) (*VolumeResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("input", req.Input).Logger()
	ctx = logger.WithContext(ctx)

	cfg := req.Config
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	tr, err := transform.New(cfg.Geometry, cfg.Render)
	if err != nil {
		return nil, err
	}

	resolver := p.resolver
	if resolver == nil {
		r, err := source.NewResolver(cfg.Ignore)
		if err != nil {
			return nil, errors.Errorf("creating resolver: %w", err)
		}
		resolver = r
	}

	out := &sink{progress: req.Progress, log: req.Log, page: req.Page}

	scratch, err := os.MkdirTemp("", ScratchPrefix)
	if err != nil {
		return nil, errors.Errorf("creating scratch directory: %w", err)
	}
	defer p.cleanup(ctx, scratch, cfg.KeepTemp, out)

	srcDir := filepath.Join(scratch, "src")
	pagesDir := filepath.Join(scratch, "pages")
	for _, dir := range []string{srcDir, pagesDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return nil, errors.Errorf("creating scratch directory: %w", err)
		}
	}

	if source.IsArchive(req.Input) {
		out.logf("Extracting %s...", filepath.Base(req.Input))
	}

	vol, err := resolver.Resolve(ctx, req.Input, srcDir)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", req.Input, err)
	}

	switch vol.Kind {
	case source.KindArchive:
		out.logf("Extracted %d images.", len(vol.Pages))
	case source.KindDirectory:
		out.logf("Found %d images in folder.", len(vol.Pages))
	}

	result := &VolumeResult{
		Input:      req.Input,
		Attempted:  len(vol.Pages),
		ScratchDir: scratch,
	}

	quality := cfg.Render.JPEGQuality
	if cfg.Workers > 1 {
		result.Pages, err = p.processParallel(ctx, tr, vol.Pages, pagesDir, quality, cfg.Workers, out)
	} else {
		result.Pages, err = p.processSequential(ctx, tr, vol.Pages, pagesDir, quality, out)
	}
	if err != nil {
		return nil, errors.Errorf("processing %s: %w", req.Input, err)
	}

	entries := make([]archive.Entry, 0, len(result.Pages))
	for _, res := range result.Pages {
		if res.Err != nil {
			result.Failures = append(result.Failures, res.Err)
			continue
		}
		entries = append(entries, archive.Entry{Name: PageName(res.Index), Path: res.Output})
	}
	result.Written = len(entries)

	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("processing %s: %w", req.Input, err)
	}

	dest := filepath.Join(outputDir, vol.ArchiveName())
	if err := p.writer.Write(ctx, entries, dest); err != nil {
		return nil, err
	}
	result.ArchivePath = dest
	out.logf("Saved: %s", dest)

	logger.Debug().
		Str("archive", dest).
		Int("attempted", result.Attempted).
		Int("written", result.Written).
		Int("failed", len(result.Failures)).
		Msg("volume converted")

	return result, nil
}

func (p *Processor) processSequential(ctx context.Context, tr *transform.Transformer, pages []source.Page, dir string, quality int, out *sink) ([]PageResult, error) {
	results := make([]PageResult, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.logf("Processing page %d/%d: %s", page.Index, len(pages), page.Name)

		res := processPage(tr, page, dir, quality)
		res.Total = len(pages)
		results = append(results, res)
		out.done(res, float64(i+1)/float64(len(pages))*100)
	}
	return results, nil
}

func (p *Processor) processParallel(ctx context.Context, tr *transform.Transformer, pages []source.Page, dir string, quality, workers int, out *sink) ([]PageResult, error) {
	results := make([]PageResult, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	finished := 0

	for i, page := range pages {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out.logf("Processing page %d/%d: %s", page.Index, len(pages), page.Name)

			res := processPage(tr, page, dir, quality)
			res.Total = len(pages)
			results[i] = res

			mu.Lock()
			finished++
			percent := float64(finished) / float64(len(pages)) * 100
			out.done(res, percent)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Processor) cleanup(ctx context.Context, scratch string, keep bool, out *sink) {
	logger := zerolog.Ctx(ctx)

	if keep {
		logger.Debug().Str("path", scratch).Msg("keeping scratch directory")
		return
	}

	if err := p.removeAll(scratch); err != nil {
		cerr := errors.Errorf("%w %s: %w", ErrCleanup, scratch, err)
		logger.Warn().Err(cerr).Msg("scratch directory left behind")
		out.logf("WARNING %v", cerr)
	}
}
