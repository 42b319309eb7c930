// internal/workers/reporting/detect-missing-documents/handler.go
package detectmissingdocuments

import (
	"context"
	"encoding/json"
	"fmt"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/metrics"
	"evidly-workers/internal/common/observability"
	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/models"
	"evidly-workers/internal/providers"
	"evidly-workers/internal/reporting"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "detect-missing-documents"
)

type Handler struct {
	config    *Config
	assembler *reporting.Assembler
	providers providers.Selector
	validator *validation.Validator
	logger    logger.Logger
}

func NewHandler(config *Config, assembler *reporting.Assembler, selector providers.Selector, validator *validation.Validator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		assembler: assembler,
		providers: selector,
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

	result, err := h.validator.ValidateJSON(validation.SchemaDetectMissingDocs, job.Variables)
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
	// Resolve the template first so a bad key fails before any lookup.
	if _, err := h.assembler.Registry().Lookup(input.JurisdictionKey); err != nil {
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

	docs, err := provider.Documents(ctx, input.LocationID)
	if err != nil {
		return nil, errors.NewDataProviderFailedError("documents", err).WithMetadata("locationId", input.LocationID)
	}

	checkedAt := h.assembler.Now()
	alerts, err := h.assembler.DetectMissing(input.JurisdictionKey, docs)
	if err != nil {
		return nil, err
	}
	critical, warning := reporting.CountBySeverity(alerts)

	metrics.MissingDocumentAlerts.WithLabelValues(string(models.SeverityCritical)).Add(float64(critical))
	metrics.MissingDocumentAlerts.WithLabelValues(string(models.SeverityWarning)).Add(float64(warning))

	h.logger.Info("missing documents checked", map[string]interface{}{
		"locationId":    input.LocationID,
		"jurisdiction":  input.JurisdictionKey,
		"onFile":        len(docs),
		"criticalCount": critical,
		"warningCount":  warning,
	})

	return &Output{
		Alerts:        alerts,
		CriticalCount: critical,
		WarningCount:  warning,
		CheckedAt:     checkedAt,
	}, nil
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
