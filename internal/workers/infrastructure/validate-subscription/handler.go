// internal/workers/infrastructure/validate-subscription/handler.go
package validatesubscription

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/metrics"
	"evidly-workers/internal/common/observability"
	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/models"
	"evidly-workers/internal/reporting"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "validate-subscription"
)

const subscriptionQuery = `SELECT organization_id, tier, expires_at, is_valid FROM organization_subscriptions WHERE organization_id = $1`

type Handler struct {
	config    *Config
	db        *sql.DB
	redis     *redis.Client
	clock     reporting.Clock
	validator *validation.Validator
	logger    logger.Logger
}

// NewHandler accepts a nil redis client, in which case every check reads Postgres.
func NewHandler(config *Config, db *sql.DB, redis *redis.Client, clock reporting.Clock, validator *validation.Validator, log logger.Logger) *Handler {
	if clock == nil {
		clock = reporting.SystemClock
	}
	return &Handler{
		config:    config,
		db:        db,
		redis:     redis,
		clock:     clock,
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

	result, err := h.validator.ValidateJSON(validation.SchemaValidateSubscription, job.Variables)
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
	sub, err := h.lookup(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}

	if !sub.IsValid {
		return nil, errors.NewSubscriptionInvalidError(fmt.Sprintf("subscription for %s is disabled", input.OrganizationID))
	}
	if !sub.Tier.IsValid() {
		return nil, errors.NewSubscriptionInvalidError(fmt.Sprintf("unknown tier %q", sub.Tier))
	}

	tier := sub.Tier
	expired := h.isExpired(sub)
	if expired && tier != models.TierFree {
		h.logger.Info("subscription expired, downgrading to free", map[string]interface{}{
			"organizationId": sub.OrganizationID,
			"tier":           string(sub.Tier),
			"expiresAt":      sub.ExpiresAt,
		})
		tier = models.TierFree
	}

	return &Output{
		IsValid:     true,
		TierLevel:   tier,
		IsPaidTier:  tier.IsPaid(),
		Expired:     expired,
		Permissions: reporting.AllowedSections(tier.IsPaid()),
	}, nil
}

// lookup reads the cache, then Postgres. Only Postgres reads are cached, and
// cache errors never fail the check.
func (h *Handler) lookup(ctx context.Context, organizationID string) (*models.OrganizationSubscription, error) {
	cacheKey := "sub:" + organizationID
	if h.redis != nil {
		if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
			var sub models.OrganizationSubscription
			if err := json.Unmarshal([]byte(val), &sub); err == nil {
				return &sub, nil
			}
		} else if !stderrors.Is(err, redis.Nil) {
			h.logger.Warn("subscription cache read failed", map[string]interface{}{
				"organizationId": organizationID,
				"error":          err.Error(),
			})
		}
	}

	var (
		sub       models.OrganizationSubscription
		tier      string
		expiresAt sql.NullString
	)
	err := h.db.QueryRowContext(ctx, subscriptionQuery, organizationID).Scan(
		&sub.OrganizationID, &tier, &expiresAt, &sub.IsValid,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewSubscriptionInvalidError(fmt.Sprintf("no subscription for organization %s", organizationID))
		}
		return nil, errors.NewSubscriptionCheckFailedError(err)
	}
	sub.Tier = models.SubscriptionTier(tier)
	sub.ExpiresAt = expiresAt.String

	if h.redis != nil {
		h.cacheSubscription(ctx, cacheKey, &sub)
	}
	return &sub, nil
}

// cacheSubscription never fails the check; encode and write errors are logged.
func (h *Handler) cacheSubscription(ctx context.Context, key string, sub *models.OrganizationSubscription) {
	data, err := json.Marshal(sub)
	if err != nil {
		h.logger.Warn("subscription cache encode failed", map[string]interface{}{
			"organizationId": sub.OrganizationID,
			"error":          err.Error(),
		})
		return
	}
	if err := h.redis.Set(ctx, key, data, h.config.cacheTTL()).Err(); err != nil {
		h.logger.Warn("subscription cache write failed", map[string]interface{}{
			"organizationId": sub.OrganizationID,
			"error":          err.Error(),
		})
	}
}

func (h *Handler) isExpired(sub *models.OrganizationSubscription) bool {
	if sub.ExpiresAt == "" {
		return false
	}
	exp, err := time.Parse(time.RFC3339, sub.ExpiresAt)
	if err != nil {
		h.logger.Debug("failed to parse expiration date, skipping expiration check", map[string]interface{}{
			"organizationId": sub.OrganizationID,
			"expiresAt":      sub.ExpiresAt,
			"error":          err.Error(),
		})
		return false
	}
	return h.clock.Now().After(exp)
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
