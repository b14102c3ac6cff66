package processor

import (
	"context"
	"log"

	"slack-file-cleaner/models"

	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"
)

type fileDeleter interface {
	DeleteFile(ctx context.Context, fileID string) error
}

// Deleter issues delete requests for matched files
type Deleter struct {
	client fileDeleter
	logger *log.Logger
	dryRun bool
}

// NewDeleter creates a deleter; with dryRun set no request is sent
func NewDeleter(client fileDeleter, logger *log.Logger, dryRun bool) *Deleter {
	return &Deleter{
		client: client,
		logger: logger,
		dryRun: dryRun,
	}
}

// DeleteAll deletes every file concurrently and waits for all requests to
// finish. Failures are logged and counted, they never stop other deletions.
// Count and bytes cover attempted deletions, dry run included.
func (d *Deleter) DeleteAll(ctx context.Context, files []models.FileRecord) models.DeletionStats {
	var (
		stats  models.DeletionStats
		failed atomic.Int64
		wg     conc.WaitGroup
	)

	for _, f := range files {
		d.logger.Printf("Deleting: %s %s", f.Filetype, f.Name)
		stats.DeletedCount++
		stats.DeletedBytes += f.Size

		if d.dryRun {
			continue
		}

		f := f
		wg.Go(func() {
			if err := d.client.DeleteFile(ctx, f.ID); err != nil {
				failed.Inc()
				d.logger.Printf("Error deleting file %s: %v", f.Name, err)
			}
		})
	}

	wg.Wait()
	stats.Failed = failed.Load()

	return stats
}
