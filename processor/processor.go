package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"slack-file-cleaner/clients"
	"slack-file-cleaner/models"
	"slack-file-cleaner/report"
	"slack-file-cleaner/units"
)

type slackClient interface {
	ListFiles(ctx context.Context, page int, tsTo *int64) (models.FilesPage, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// ErrConfirm is returned when the deletion prompt could not be answered
var ErrConfirm = errors.New("confirmation failed")

// ConfirmFunc asks whether the matched files may be deleted
type ConfirmFunc func(count int, bytes int64) (bool, error)

// Processor lists workspace files and deletes the ones matching the filter
type Processor struct {
	client   slackClient
	renderer *report.Renderer
	logger   *log.Logger
	confirm  ConfirmFunc
	now      func() time.Time
}

// Dependencies configuration for creating a processor
type Dependencies struct {
	Client   slackClient
	Renderer *report.Renderer
	Logger   *log.Logger

	// Confirm is asked before a live deletion; nil deletes without asking
	Confirm ConfirmFunc
	Now     func() time.Time
}

// Config holds configuration for one run
type Config struct {
	List   bool
	Filter models.FilterSpec
}

// NewProcessor creates a new processor
func NewProcessor(d *Dependencies) *Processor {
	p := &Processor{
		client:   d.Client,
		renderer: d.Renderer,
		logger:   d.Logger,
		confirm:  d.Confirm,
		now:      d.Now,
	}
	if p.renderer == nil {
		p.renderer = report.NewRenderer(io.Discard)
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Main fetches the whole listing and either renders it or deletes the matches
func (p *Processor) Main(ctx context.Context, cfg Config) error {
	if !cfg.List {
		p.renderer.Criteria(cfg.Filter)
	}

	tsTo := cfg.Filter.UpperTimestamp(p.now())
	if tsTo != nil && *tsTo <= 0 {
		return fmt.Errorf("%w: no file can be older than %d days", clients.ErrNoResults, cfg.Filter.MaxAgeDays)
	}

	files, err := p.Collect(ctx, tsTo)
	if err != nil {
		return err
	}

	if cfg.List {
		return p.renderer.Files(files)
	}

	matches := Select(files, cfg.Filter)
	if !cfg.Filter.DryRun && p.confirm != nil && len(matches) > 0 {
		ok, err := p.confirm(len(matches), totalSize(matches))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfirm, err)
		}
		if !ok {
			p.logger.Println("Aborted, no files were deleted")
			return nil
		}
	}

	if len(cfg.Filter.Types) > 0 {
		p.logger.Println("Deleting files with filetypes:", strings.Join(cfg.Filter.Types, ","))
	}
	if cfg.Filter.HasMinSize {
		p.logger.Println("Deleting files larger than", units.Format(cfg.Filter.MinSize))
	}
	stats := NewDeleter(p.client, p.logger, cfg.Filter.DryRun).DeleteAll(ctx, matches)
	p.renderer.Summary(stats, cfg.Filter.DryRun)

	return nil
}

func totalSize(files []models.FileRecord) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
