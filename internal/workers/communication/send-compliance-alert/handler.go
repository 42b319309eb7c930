// internal/workers/communication/send-compliance-alert/handler.go
package sendcompliancealert

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/metrics"
	"evidly-workers/internal/common/observability"
	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/models"
	"evidly-workers/internal/reporting"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-compliance-alert"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	sesClient SESService
	snsClient SNSService
	clock     reporting.Clock
	templates map[string]models.NotificationTemplate
	validator *validation.Validator
	logger    logger.Logger
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, clock reporting.Clock, validator *validation.Validator, log logger.Logger) *Handler {
	if clock == nil {
		clock = reporting.SystemClock
	}
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		clock:     clock,
		templates: loadTemplates(),
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

	result, err := h.validator.ValidateJSON(validation.SchemaSendComplianceAlert, job.Variables)
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

// execute sends at most one email and one SMS. A failure before anything was
// delivered is returned as a retryable error; a failure after a delivery only
// marks the output failed, so a retry cannot send duplicates.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{
		NotificationID: uuid.New().String(),
		SentAt:         h.clock.Now().UTC().Format(time.RFC3339),
		AlertCount:     len(input.Alerts),
		Channels:       []string{},
	}

	if len(input.Alerts) == 0 {
		output.Status = StatusSkipped
		return output, nil
	}

	template := h.templates[TemplateMissingDocuments]
	critical, warning := reporting.CountBySeverity(input.Alerts)
	facility := input.FacilityName
	if facility == "" {
		facility = input.LocationID
	}
	data := map[string]interface{}{
		"facilityName":  facility,
		"locationId":    input.LocationID,
		"criticalCount": critical,
		"warningCount":  warning,
		"alertList":     formatAlerts(input.Alerts),
	}

	if h.config.EmailEnabled && input.RecipientEmail != "" {
		subject := renderTemplate(template.Subject, data)
		body := renderTemplate(template.Body, data)
		if err := h.sendEmail(ctx, input.RecipientEmail, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":      err.Error(),
				"locationId": input.LocationID,
			})
			return nil, errors.NewNotificationSendFailedError(ChannelEmail, err).WithMetadata("locationId", input.LocationID)
		}
		output.Channels = append(output.Channels, ChannelEmail)
	}

	// SMS only goes out for critical alerts.
	if h.config.SMSEnabled && input.RecipientPhone != "" && critical > 0 {
		if err := h.sendSMS(ctx, input.RecipientPhone, renderTemplate(template.SMSBody, data)); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":      err.Error(),
				"locationId": input.LocationID,
			})
			if len(output.Channels) == 0 {
				return nil, errors.NewNotificationSendFailedError(ChannelSMS, err).WithMetadata("locationId", input.LocationID)
			}
			output.Status = StatusFailed
			return output, nil
		}
		output.Channels = append(output.Channels, ChannelSMS)
	}

	output.Status = StatusDisabled
	if len(output.Channels) > 0 {
		output.Status = StatusSent
	}

	h.logger.Info("compliance alert processed", map[string]interface{}{
		"locationId":     input.LocationID,
		"notificationId": output.NotificationID,
		"status":         output.Status,
		"channels":       output.Channels,
		"criticalCount":  critical,
		"warningCount":   warning,
	})
	return output, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
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

// formatAlerts renders one line per alert, critical first as the detector orders them.
func formatAlerts(alerts []models.MissingDocAlert) string {
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		line := fmt.Sprintf("- [%s] %s: %s", strings.ToUpper(string(a.Severity)), a.DocumentName, a.Message)
		if a.RequiredBy != "" {
			line += " (" + a.RequiredBy + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderTemplate substitutes {{key}} placeholders in a single pass over tmpl.
// Placeholders without a value render empty and substituted values are copied
// verbatim, so braces inside a value are never expanded.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end == -1 {
			break
		}
		b.WriteString(rest[:start])
		key := rest[start+2 : start+2+end]
		b.WriteString(formatValue(data[key]))
		rest = rest[start+2+end+2:]
	}
	b.WriteString(rest)

	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func loadTemplates() map[string]models.NotificationTemplate {
	return map[string]models.NotificationTemplate{
		TemplateMissingDocuments: {
			Type:    TemplateMissingDocuments,
			Subject: "Compliance documents need attention at {{facilityName}}",
			Body: "{{facilityName}} has {{criticalCount}} missing and {{warningCount}} expiring compliance documents.\n\n" +
				"{{alertList}}\n\nUpload current copies in EvidLY before your next health inspection.",
			SMSBody: "EvidLY: {{facilityName}} is missing {{criticalCount}} required compliance document(s). Check your dashboard.",
		},
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
