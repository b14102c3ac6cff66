package clients

import (
	"context"
	"errors"

	"slack-file-cleaner/models"
)

var (
	// ErrNoResults is returned when an age-filtered listing has no pages
	ErrNoResults = errors.New("no files found")
	// ErrNoMorePages is returned by Next after the last page
	ErrNoMorePages = errors.New("no more pages")
)

type fileLister interface {
	ListFiles(ctx context.Context, page int, tsTo *int64) (models.FilesPage, error)
}

// FilePager walks the paged listing one page at a time
type FilePager struct {
	lister fileLister
	tsTo   *int64
	cursor models.PageCursor
	done   bool
}

// NewFilePager creates a pager starting at page 1. A non-nil tsTo marks an
// age-filtered listing.
func NewFilePager(lister fileLister, tsTo *int64) *FilePager {
	return &FilePager{
		lister: lister,
		tsTo:   tsTo,
	}
}

// HasNext reports whether another page can be requested
func (p *FilePager) HasNext() bool {
	return !p.done
}

// Cursor returns the position of the last fetched page
func (p *FilePager) Cursor() models.PageCursor {
	return p.cursor
}

// Next fetches the following page. A failed request ends the sequence.
func (p *FilePager) Next(ctx context.Context) (models.FilesPage, error) {
	if p.done {
		return models.FilesPage{}, ErrNoMorePages
	}

	number := p.cursor.Page + 1
	page, err := p.lister.ListFiles(ctx, number, p.tsTo)
	if err != nil {
		p.done = true
		return models.FilesPage{}, err
	}

	page.Cursor.Page = number
	p.cursor = page.Cursor

	if page.Cursor.Pages <= 0 {
		p.done = true
		if p.tsTo != nil {
			return models.FilesPage{}, ErrNoResults
		}
		return page, nil
	}

	p.done = page.Cursor.IsFinal()
	return page, nil
}
