// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"evidly-workers/internal/common/config"
	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/metrics"
	"evidly-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ContextHandler is a job handler that runs under a caller-supplied context.
type ContextHandler func(ctx context.Context, client worker.JobClient, job entities.Job)

// Instrument adapts h to the Zeebe handler signature. Each job runs inside a
// span, is counted in the active-jobs gauge and job duration metrics, and a
// panicking handler fails the job instead of killing the worker.
func Instrument(taskType string, h ContextHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		ctx, span := obs.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("process.instance.key", job.ProcessInstanceKey),
		)
		defer span.End()

		status := "handled"
		defer func() {
			if r := recover(); r != nil {
				status = "panic"
				span.SetStatus(codes.Error, "handler panic")
				log.Error("job handler panicked", map[string]interface{}{
					"taskType": taskType,
					"jobKey":   job.Key,
					"panic":    fmt.Sprint(r),
				})
				failAfterPanic(ctx, client, job, r, log)
			}
			elapsed := time.Since(start)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			obs.RecordJobProcessed(ctx, taskType, status)
			obs.RecordJobDuration(ctx, taskType, elapsed, status)
		}()

		h(ctx, client, job)
	}
}

func failAfterPanic(ctx context.Context, client worker.JobClient, job entities.Job, r interface{}, log logger.Logger) {
	retries := job.Retries - 1
	if retries < 0 {
		retries = 0
	}
	_, err := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(fmt.Sprintf("handler panic: %v", r)).
		Send(ctx)
	if err != nil {
		log.Error("failed to fail job after panic", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// StartWorker opens a job worker for taskType unless it is disabled in config.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jobWorker
}
