// internal/workers/communication/send-compliance-alert/handler_test.go
package sendcompliancealert

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/models"
	"evidly-workers/internal/reporting"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	calls         []*ses.SendEmailInput
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc == nil {
		return &ses.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
	}
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	calls       []*sns.PublishInput
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc == nil {
		return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
	}
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "alerts@evidly.com",
		Timeout:      30 * time.Second,
	}
}

func createTestHandler(t *testing.T, config *Config, sesClient SESService, snsClient SNSService) *Handler {
	t.Helper()
	validator, err := validation.NewValidator()
	require.NoError(t, err)
	return NewHandler(config, sesClient, snsClient, reporting.FixedClock(testNow), validator, logger.NewTestLogger(t))
}

func createAlert(docType, name string, severity models.Severity) models.MissingDocAlert {
	return models.MissingDocAlert{
		DocumentType: docType,
		DocumentName: name,
		Message:      name + " is not on file",
		RequiredBy:   "FDA Food Code",
		Severity:     severity,
	}
}

func createTestInput(alerts ...models.MissingDocAlert) *Input {
	return &Input{
		LocationID:     "airport",
		FacilityName:   "Airport Cafe",
		RecipientEmail: "gm@pacificcoastdining.com",
		RecipientPhone: "+15555550100",
		Alerts:         alerts,
	}
}

var (
	criticalAlert = createAlert("pest-control", "Pest Control Service Report", models.SeverityCritical)
	warningAlert  = createAlert("business-license", "Business License", models.SeverityWarning)
)

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name         string
		input        *Input
		emailEnabled bool
		smsEnabled   bool
		wantStatus   string
		wantChannels []string
	}{
		{
			name:         "critical alert goes to email and SMS",
			input:        createTestInput(criticalAlert, warningAlert),
			emailEnabled: true,
			smsEnabled:   true,
			wantStatus:   StatusSent,
			wantChannels: []string{ChannelEmail, ChannelSMS},
		},
		{
			name:         "warnings only skip SMS",
			input:        createTestInput(warningAlert),
			emailEnabled: true,
			smsEnabled:   true,
			wantStatus:   StatusSent,
			wantChannels: []string{ChannelEmail},
		},
		{
			name:         "SMS only for critical",
			input:        createTestInput(criticalAlert),
			smsEnabled:   true,
			wantStatus:   StatusSent,
			wantChannels: []string{ChannelSMS},
		},
		{
			name:         "no channel enabled",
			input:        createTestInput(criticalAlert),
			wantStatus:   StatusDisabled,
			wantChannels: []string{},
		},
		{
			name:         "SMS enabled but only warnings",
			input:        createTestInput(warningAlert),
			smsEnabled:   true,
			wantStatus:   StatusDisabled,
			wantChannels: []string{},
		},
		{
			name:         "no alerts",
			input:        createTestInput(),
			emailEnabled: true,
			smsEnabled:   true,
			wantStatus:   StatusSkipped,
			wantChannels: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			config.EmailEnabled = tt.emailEnabled
			config.SMSEnabled = tt.smsEnabled
			sesMock := &MockSESService{}
			snsMock := &MockSNSService{}

			output, err := createTestHandler(t, config, sesMock, snsMock).Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, output.Status)
			assert.Equal(t, tt.wantChannels, output.Channels)
			assert.NotEmpty(t, output.NotificationID)
			assert.Equal(t, "2026-03-15T12:00:00Z", output.SentAt)
			assert.Equal(t, len(tt.input.Alerts), output.AlertCount)
		})
	}
}

func TestHandler_Execute_EmailContent(t *testing.T) {
	sesMock := &MockSESService{}
	snsMock := &MockSNSService{}
	handler := createTestHandler(t, createTestConfig(), sesMock, snsMock)

	_, err := handler.Execute(context.Background(), createTestInput(criticalAlert, warningAlert))
	require.NoError(t, err)

	require.Len(t, sesMock.calls, 1)
	email := sesMock.calls[0]
	assert.Equal(t, []string{"gm@pacificcoastdining.com"}, email.Destination.ToAddresses)
	assert.Equal(t, "alerts@evidly.com", aws.ToString(email.Source))
	assert.Equal(t, "Compliance documents need attention at Airport Cafe", aws.ToString(email.Message.Subject.Data))

	body := aws.ToString(email.Message.Body.Text.Data)
	assert.Contains(t, body, "Airport Cafe has 1 missing and 1 expiring")
	assert.Contains(t, body, "- [CRITICAL] Pest Control Service Report: Pest Control Service Report is not on file (FDA Food Code)")
	assert.Contains(t, body, "- [WARNING] Business License")
	assert.NotContains(t, body, "{{")

	require.Len(t, snsMock.calls, 1)
	assert.Equal(t, "+15555550100", aws.ToString(snsMock.calls[0].PhoneNumber))
	assert.Contains(t, aws.ToString(snsMock.calls[0].Message), "missing 1 required")
}

func TestHandler_Execute_FacilityNameFallback(t *testing.T) {
	sesMock := &MockSESService{}
	handler := createTestHandler(t, createTestConfig(), sesMock, &MockSNSService{})

	input := createTestInput(warningAlert)
	input.FacilityName = ""
	_, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, sesMock.calls, 1)
	assert.Equal(t, "Compliance documents need attention at airport", aws.ToString(sesMock.calls[0].Message.Subject.Data))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_EmailFailure(t *testing.T) {
	sesMock := &MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, stderrors.New("MessageRejected: Email address is not verified")
		},
	}
	snsMock := &MockSNSService{}
	handler := createTestHandler(t, createTestConfig(), sesMock, snsMock)

	output, err := handler.Execute(context.Background(), createTestInput(criticalAlert))
	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotificationSendFailed))
	assert.True(t, errors.Normalize(err).Retryable)
	assert.Empty(t, snsMock.calls)
}

func TestHandler_Execute_SMSFailure(t *testing.T) {
	failingSNS := &MockSNSService{
		PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, stderrors.New("Throttling: Rate exceeded")
		},
	}

	t.Run("after email delivered", func(t *testing.T) {
		handler := createTestHandler(t, createTestConfig(), &MockSESService{}, failingSNS)

		output, err := handler.Execute(context.Background(), createTestInput(criticalAlert))
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, output.Status)
		assert.Equal(t, []string{ChannelEmail}, output.Channels)
	})

	t.Run("nothing delivered", func(t *testing.T) {
		config := createTestConfig()
		config.EmailEnabled = false
		handler := createTestHandler(t, config, &MockSESService{}, failingSNS)

		_, err := handler.Execute(context.Background(), createTestInput(criticalAlert))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeNotificationSendFailed))
	})
}

func TestHandler_RenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "simple replacement",
			template: "{{facilityName}} has {{criticalCount}} missing documents.",
			data:     map[string]interface{}{"facilityName": "Downtown Kitchen", "criticalCount": 2},
			expected: "Downtown Kitchen has 2 missing documents.",
		},
		{
			name:     "no replacements",
			template: "Static message without placeholders.",
			data:     map[string]interface{}{},
			expected: "Static message without placeholders.",
		},
		{
			name:     "missing placeholder",
			template: "Hello {{facilityName}}, your {{missing}} is here.",
			data:     map[string]interface{}{"facilityName": "Airport Cafe"},
			expected: "Hello Airport Cafe, your  is here.",
		},
		{
			name:     "unterminated placeholder",
			template: "Broken {{facilityName",
			data:     map[string]interface{}{"facilityName": "x"},
			expected: "Broken {{facilityName",
		},
		{
			name:     "braces in a value are not expanded",
			template: "{{facilityName}} has {{criticalCount}} missing documents.",
			data:     map[string]interface{}{"facilityName": "Joe's {{criticalCount}} Diner", "criticalCount": 2},
			expected: "Joe's {{criticalCount}} Diner has 2 missing documents.",
		},
		{
			name:     "unknown placeholder in a value survives",
			template: "Alerts:\n{{alertList}}",
			data:     map[string]interface{}{"alertList": "- Permit {{v2}} (critical)"},
			expected: "Alerts:\n- Permit {{v2}} (critical)",
		},
		{
			name:     "adjacent placeholders",
			template: "{{a}}{{b}}{{a}}",
			data:     map[string]interface{}{"a": "{{b}}", "b": 1},
			expected: "{{b}}1{{b}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.template, tt.data))
		})
	}
}

func TestHandler_RenderTemplate_Deterministic(t *testing.T) {
	template := "{{facilityName}}: {{criticalCount}} critical, {{warningCount}} warnings"
	data := map[string]interface{}{
		"facilityName":  "Joe's {{criticalCount}} {{warningCount}} Diner",
		"criticalCount": 2,
		"warningCount":  "{{facilityName}}",
	}
	want := "Joe's {{criticalCount}} {{warningCount}} Diner: 2 critical, {{facilityName}} warnings"

	for i := 0; i < 50; i++ {
		require.Equal(t, want, renderTemplate(template, data))
	}
}

func TestInputSchema(t *testing.T) {
	validator, err := validation.NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		variables string
		valid     bool
	}{
		{"minimal", `{"locationId":"airport","alerts":[]}`, true},
		{"with alert", `{"locationId":"airport","recipientPhone":"+1 (555) 555-0100","alerts":[{"documentName":"Health Permit","severity":"critical"}]}`, true},
		{"unknown severity", `{"locationId":"airport","alerts":[{"documentName":"Health Permit","severity":"urgent"}]}`, false},
		{"bad phone", `{"locationId":"airport","recipientPhone":"call me","alerts":[]}`, false},
		{"missing alerts", `{"locationId":"airport"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateJSON(validation.SchemaSendComplianceAlert, tt.variables)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, result.Summary())
		})
	}
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_RenderTemplate(b *testing.B) {
	tmpl := loadTemplates()[TemplateMissingDocuments]
	data := map[string]interface{}{
		"facilityName":  "Downtown Kitchen",
		"criticalCount": 1,
		"warningCount":  2,
		"alertList":     formatAlerts([]models.MissingDocAlert{criticalAlert, warningAlert}),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = renderTemplate(tmpl.Body, data)
	}
}
