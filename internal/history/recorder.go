package history

import (
	"context"

	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/models"
)

// Indexer receives a copy of each appended entry.
type Indexer interface {
	Index(ctx context.Context, entry models.ReportHistoryEntry) error
}

// Recorder appends to the store and then indexes. Only the append can fail the
// call; an indexing error is logged and dropped.
type Recorder struct {
	store   Appender
	indexer Indexer
	logger  logger.Logger
}

func NewRecorder(store Appender, indexer Indexer, log logger.Logger) *Recorder {
	return &Recorder{store: store, indexer: indexer, logger: log}
}

func (r *Recorder) Record(ctx context.Context, entry models.ReportHistoryEntry) error {
	if err := r.store.Append(ctx, entry); err != nil {
		return err
	}

	if r.indexer == nil {
		return nil
	}
	if err := r.indexer.Index(ctx, entry); err != nil {
		r.logger.Warn("history entry not indexed", map[string]interface{}{
			"historyId":  entry.ID,
			"locationId": entry.LocationID,
			"error":      err.Error(),
		})
	}
	return nil
}
