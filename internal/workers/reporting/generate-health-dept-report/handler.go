// internal/workers/reporting/generate-health-dept-report/handler.go
package generatehealthdeptreport

import (
	"context"
	"encoding/json"
	"fmt"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/metrics"
	"evidly-workers/internal/common/observability"
	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/history"
	"evidly-workers/internal/models"
	"evidly-workers/internal/providers"
	"evidly-workers/internal/reporting"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-health-dept-report"
)

// HistoryRecorder persists the entry for a generated report.
type HistoryRecorder interface {
	Record(ctx context.Context, entry models.ReportHistoryEntry) error
}

type Handler struct {
	config    *Config
	assembler *reporting.Assembler
	providers providers.Selector
	history   HistoryRecorder
	validator *validation.Validator
	logger    logger.Logger
}

func NewHandler(config *Config, assembler *reporting.Assembler, selector providers.Selector, recorder HistoryRecorder, validator *validation.Validator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		assembler: assembler,
		providers: selector,
		history:   recorder,
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

	result, err := h.validator.ValidateJSON(validation.SchemaGenerateReport, job.Variables)
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
	cfg := input.ReportConfig

	plan, err := h.assembler.Plan(cfg)
	if err != nil {
		return nil, err
	}

	demo := h.config.DemoMode
	if input.DemoMode != nil {
		demo = *input.DemoMode
	}
	provider, err := h.providers.For(demo)
	if err != nil {
		return nil, err
	}

	snap, err := providers.LoadSnapshot(ctx, provider, cfg.LocationID, plan.Window,
		h.assembler.Thresholds().TrendPeriods, plan.Included)
	if err != nil {
		return nil, err
	}

	report, err := h.assembler.AssemblePlan(cfg, plan, snap)
	if err != nil {
		return nil, err
	}

	entry := history.NewEntry(report, input.GeneratedBy)
	if err := h.history.Record(ctx, entry); err != nil {
		if _, ok := err.(*errors.StandardError); !ok {
			err = errors.NewHistoryAppendFailedError(err)
		}
		return nil, err
	}

	metrics.ReportsGenerated.WithLabelValues(report.Jurisdiction.Key, metrics.TierLabel(cfg.IsPaidTier)).Inc()
	for _, s := range report.GatedSections {
		metrics.ReportSectionsGated.WithLabelValues(string(s)).Inc()
	}

	h.logger.Info("report generated", map[string]interface{}{
		"locationId":   cfg.LocationID,
		"jurisdiction": report.Jurisdiction.Key,
		"demoMode":     demo,
		"sections":     len(report.Sections),
		"gated":        len(report.GatedSections),
		"historyId":    entry.ID,
	})

	return &Output{Report: report, HistoryID: entry.ID}, nil
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
