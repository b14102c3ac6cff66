package processor

import (
	"context"

	"slack-file-cleaner/clients"
	"slack-file-cleaner/models"
)

// Collect drains the paged listing into one slice in arrival order. Any
// failed page aborts the run and the partial result is discarded.
func (p *Processor) Collect(ctx context.Context, tsTo *int64) ([]models.FileRecord, error) {
	pager := clients.NewFilePager(p.client, tsTo)

	var files []models.FileRecord
	for pager.HasNext() {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		files = append(files, page.Files...)
		p.renderer.Progress(pager.Cursor())
	}

	return files, nil
}
