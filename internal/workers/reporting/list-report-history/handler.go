// internal/workers/reporting/list-report-history/handler.go
package listreporthistory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/metrics"
	"evidly-workers/internal/common/observability"
	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/history"
	"evidly-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "list-report-history"
)

type Handler struct {
	config    *Config
	reader    history.Reader
	searcher  history.Searcher
	validator *validation.Validator
	logger    logger.Logger
}

// NewHandler takes an optional searcher; without one, queries are rejected.
func NewHandler(config *Config, reader history.Reader, searcher history.Searcher, validator *validation.Validator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		reader:    reader,
		searcher:  searcher,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.HandleContext(context.Background(), client, job)
}

func (h *Handler) HandleContext(ctx context.Context, client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"traceId":     observability.TraceID(ctx),
	})

	result, err := h.validator.ValidateJSON(validation.SchemaListReportHistory, job.Variables)
	if err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidConfigurationError(err.Error()))
		return
	}
	if !result.Valid {
		h.failJob(ctx, client, job, errors.NewInputValidationFailedError(result.Summary()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.HistoryID != "" {
		return h.get(ctx, input)
	}

	limit := history.ClampLimit(input.Limit)
	query := strings.TrimSpace(input.Query)

	var (
		entries []models.ReportHistoryEntry
		source  string
		err     error
	)
	if query == "" {
		source = SourceStore
		entries, err = h.reader.List(ctx, input.LocationID, limit)
	} else {
		if h.searcher == nil {
			return nil, errors.NewInvalidConfigurationError("history search is not configured")
		}
		source = SourceSearch
		entries, err = h.searcher.Search(ctx, input.LocationID, query, limit)
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.ReportHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Clone())
	}

	h.logger.Debug("history listed", map[string]interface{}{
		"locationId": input.LocationID,
		"source":     source,
		"count":      len(out),
		"limit":      limit,
	})

	return &Output{Entries: out, Count: len(out), Source: source}, nil
}

// get returns a single entry, which must belong to the requested location.
func (h *Handler) get(ctx context.Context, input *Input) (*Output, error) {
	entry, err := h.reader.Get(ctx, input.HistoryID)
	if err != nil {
		return nil, err
	}
	if entry.LocationID != input.LocationID {
		return nil, errors.NewHistoryNotFoundError(input.HistoryID)
	}
	return &Output{Entries: []models.ReportHistoryEntry{entry.Clone()}, Count: 1, Source: SourceStore}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	errors.NewErrorHandler(h.logger).HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
