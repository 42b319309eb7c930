// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/history"
	"evidly-workers/internal/models"
	"evidly-workers/internal/providers"
	"evidly-workers/internal/reporting"

	sendcompliancealert "evidly-workers/internal/workers/communication/send-compliance-alert"
	validatesubscription "evidly-workers/internal/workers/infrastructure/validate-subscription"
	detectmissingdocuments "evidly-workers/internal/workers/reporting/detect-missing-documents"
	generatehealthdeptreport "evidly-workers/internal/workers/reporting/generate-health-dept-report"
	listreporthistory "evidly-workers/internal/workers/reporting/list-report-history"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const subscriptionQuery = `SELECT organization_id, tier, expires_at, is_valid FROM organization_subscriptions WHERE organization_id = \$1`

type recordingSES struct{ sent []*ses.SendEmailInput }

func (r *recordingSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	r.sent = append(r.sent, params)
	return &ses.SendEmailOutput{MessageId: aws.String("ses-e2e")}, nil
}

type recordingSNS struct{ published []*sns.PublishInput }

func (r *recordingSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	r.published = append(r.published, params)
	return &sns.PublishOutput{MessageId: aws.String("sns-e2e")}, nil
}

// chain is the demo-mode worker set wired the way worker-manager wires it.
type chain struct {
	subscription *validatesubscription.Handler
	generate     *generatehealthdeptreport.Handler
	detect       *detectmissingdocuments.Handler
	alert        *sendcompliancealert.Handler
	history      *listreporthistory.Handler

	mock  sqlmock.Sqlmock
	redis *miniredis.Miniredis
	store *history.MemoryStore
	ses   *recordingSES
	sns   *recordingSNS
}

func setupChain(t *testing.T) *chain {
	t.Helper()
	log := logger.NewTestLogger(t)
	clock := reporting.FixedClock(testNow)

	validator, err := validation.NewValidator()
	require.NoError(t, err)

	registry, err := reporting.LoadRegistry("")
	require.NoError(t, err)
	assembler, err := reporting.NewAssembler(registry, reporting.DefaultThresholds(), clock)
	require.NoError(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	selector := providers.Selector{Demo: providers.NewFixtureProvider(clock)}
	store := history.NewMemoryStore()
	sesClient := &recordingSES{}
	snsClient := &recordingSNS{}

	return &chain{
		subscription: validatesubscription.NewHandler(
			&validatesubscription.Config{Timeout: 5 * time.Second, CacheTTL: time.Minute},
			db, rdb, clock, validator, log,
		),
		generate: generatehealthdeptreport.NewHandler(
			&generatehealthdeptreport.Config{Timeout: 10 * time.Second, DemoMode: true},
			assembler, selector, history.NewRecorder(store, nil, log), validator, log,
		),
		detect: detectmissingdocuments.NewHandler(
			&detectmissingdocuments.Config{Timeout: 5 * time.Second, DemoMode: true},
			assembler, selector, validator, log,
		),
		alert: sendcompliancealert.NewHandler(
			&sendcompliancealert.Config{EmailEnabled: true, SMSEnabled: true, FromEmail: "alerts@evidly.com", Timeout: 5 * time.Second},
			sesClient, snsClient, clock, validator, log,
		),
		history: listreporthistory.NewHandler(
			&listreporthistory.Config{Timeout: 5 * time.Second},
			store, store, validator, log,
		),
		mock:  mock,
		redis: mr,
		store: store,
		ses:   sesClient,
		sns:   snsClient,
	}
}

func (c *chain) expectSubscription(orgID string, tier models.SubscriptionTier, expiresAt interface{}) {
	c.mock.ExpectQuery(subscriptionQuery).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"organization_id", "tier", "expires_at", "is_valid"}).
			AddRow(orgID, string(tier), expiresAt, true))
}

func reportInput(locationID string, paid bool) *generatehealthdeptreport.Input {
	sections := map[models.Section]bool{}
	for _, s := range models.AllSections {
		sections[s] = true
	}
	return &generatehealthdeptreport.Input{
		ReportConfig: models.ReportConfig{
			LocationID:      locationID,
			JurisdictionKey: reporting.JurisdictionGeneric,
			DateRange:       models.DateRange30,
			Sections:        sections,
			IsPaidTier:      paid,
		},
		GeneratedBy: "maria@pacificcoastdining.com",
	}
}

func alertTypes(alerts []models.MissingDocAlert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.DocumentType)
	}
	return out
}

// ==========================
// Full Chain
// ==========================

func TestFullE2E_PaidOrganization(t *testing.T) {
	ctx := context.Background()
	c := setupChain(t)

	// 1. Subscription resolves to a paid tier and is cached.
	c.expectSubscription("org-pcd", models.TierProfessional, nil)
	sub, err := c.subscription.Execute(ctx, &validatesubscription.Input{OrganizationID: "org-pcd"})
	require.NoError(t, err)
	assert.True(t, sub.IsPaidTier)
	assert.Equal(t, models.AllSections, sub.Permissions)
	assert.True(t, c.redis.Exists("sub:org-pcd"))

	cached, err := c.subscription.Execute(ctx, &validatesubscription.Input{OrganizationID: "org-pcd"})
	require.NoError(t, err)
	assert.Equal(t, sub, cached)
	require.NoError(t, c.mock.ExpectationsWereMet())

	// 2. Report carries every section for the paid tier.
	generated, err := c.generate.Execute(ctx, reportInput(providers.LocationAirport, sub.IsPaidTier))
	require.NoError(t, err)
	report := generated.Report
	assert.Equal(t, models.AllSections, report.Sections)
	assert.Empty(t, report.GatedSections)
	assert.Equal(t, testNow, report.GeneratedAt)
	require.NotNil(t, report.FacilityInfo)
	require.NotNil(t, report.Grade)
	require.NotEmpty(t, generated.HistoryID)

	// 3. The detector alone agrees with the report's missing documents section.
	detected, err := c.detect.Execute(ctx, &detectmissingdocuments.Input{
		LocationID:      providers.LocationAirport,
		JurisdictionKey: reporting.JurisdictionGeneric,
	})
	require.NoError(t, err)
	assert.Equal(t, alertTypes(report.MissingDocs), alertTypes(detected.Alerts))
	assert.Equal(t, 2, detected.CriticalCount)

	// 4. Critical alerts go out by email and SMS.
	alert, err := c.alert.Execute(ctx, &sendcompliancealert.Input{
		LocationID:     providers.LocationAirport,
		FacilityName:   report.FacilityInfo.Name,
		RecipientEmail: "maria@pacificcoastdining.com",
		RecipientPhone: "+15555550100",
		Alerts:         detected.Alerts,
	})
	require.NoError(t, err)
	assert.Equal(t, sendcompliancealert.StatusSent, alert.Status)
	assert.Equal(t, []string{sendcompliancealert.ChannelEmail, sendcompliancealert.ChannelSMS}, alert.Channels)
	assert.Equal(t, len(detected.Alerts), alert.AlertCount)
	require.Len(t, c.ses.sent, 1)
	require.Len(t, c.sns.published, 1)
	assert.Contains(t, aws.ToString(c.ses.sent[0].Message.Subject.Data), report.FacilityInfo.Name)

	// 5. The report is in history.
	listed, err := c.history.Execute(ctx, &listreporthistory.Input{LocationID: providers.LocationAirport})
	require.NoError(t, err)
	require.Equal(t, 1, listed.Count)
	entry := listed.Entries[0]
	assert.Equal(t, generated.HistoryID, entry.ID)
	assert.Equal(t, report.Sections, entry.Sections)
	assert.Equal(t, reporting.JurisdictionGeneric, entry.JurisdictionKey)
	assert.Equal(t, "maria@pacificcoastdining.com", entry.GeneratedBy)

	one, err := c.history.Execute(ctx, &listreporthistory.Input{LocationID: providers.LocationAirport, HistoryID: generated.HistoryID})
	require.NoError(t, err)
	assert.Equal(t, listed.Entries, one.Entries)
}

func TestFullE2E_ExpiredSubscriptionIsGated(t *testing.T) {
	ctx := context.Background()
	c := setupChain(t)

	c.expectSubscription("org-lapsed", models.TierEnterprise, testNow.AddDate(0, 0, -1).Format(time.RFC3339))
	sub, err := c.subscription.Execute(ctx, &validatesubscription.Input{OrganizationID: "org-lapsed"})
	require.NoError(t, err)
	assert.True(t, sub.Expired)
	assert.False(t, sub.IsPaidTier)
	assert.Equal(t, models.TierFree, sub.TierLevel)

	generated, err := c.generate.Execute(ctx, reportInput(providers.LocationDowntown, sub.IsPaidTier))
	require.NoError(t, err)
	report := generated.Report

	assert.Equal(t, sub.Permissions, report.Sections)
	assert.Equal(t, []models.Section{models.SectionFacilityInfo, models.SectionComplianceScore}, report.Sections)
	assert.Len(t, report.GatedSections, len(models.AllSections)-2)
	assert.Nil(t, report.MissingDocs)
	assert.Nil(t, report.TrendData)
	assert.NotNil(t, report.ComplianceScore)
}

func TestFullE2E_HistoryAccumulatesAcrossTiers(t *testing.T) {
	ctx := context.Background()
	c := setupChain(t)

	paid, err := c.generate.Execute(ctx, reportInput(providers.LocationDowntown, true))
	require.NoError(t, err)
	free, err := c.generate.Execute(ctx, reportInput(providers.LocationDowntown, false))
	require.NoError(t, err)
	_, err = c.generate.Execute(ctx, reportInput(providers.LocationUniversity, true))
	require.NoError(t, err)
	assert.Equal(t, 3, c.store.Len())

	listed, err := c.history.Execute(ctx, &listreporthistory.Input{LocationID: providers.LocationDowntown})
	require.NoError(t, err)
	assert.Equal(t, listreporthistory.SourceStore, listed.Source)
	ids := []string{}
	for _, e := range listed.Entries {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{paid.HistoryID, free.HistoryID}, ids)

	searched, err := c.history.Execute(ctx, &listreporthistory.Input{LocationID: providers.LocationDowntown, Query: "trendData"})
	require.NoError(t, err)
	assert.Equal(t, listreporthistory.SourceSearch, searched.Source)
	require.Equal(t, 1, searched.Count)
	assert.Equal(t, paid.HistoryID, searched.Entries[0].ID)

	// Returned entries are copies.
	listed.Entries[0].Sections[0] = models.SectionSelfAudit
	again, err := c.history.Execute(ctx, &listreporthistory.Input{LocationID: providers.LocationDowntown})
	require.NoError(t, err)
	for _, e := range again.Entries {
		assert.Equal(t, models.SectionFacilityInfo, e.Sections[0])
	}
}

func TestFullE2E_NoAlertsSkipsNotification(t *testing.T) {
	ctx := context.Background()
	c := setupChain(t)

	out, err := c.alert.Execute(ctx, &sendcompliancealert.Input{
		LocationID:     providers.LocationDowntown,
		RecipientEmail: "maria@pacificcoastdining.com",
	})
	require.NoError(t, err)
	assert.Equal(t, sendcompliancealert.StatusSkipped, out.Status)
	assert.Empty(t, c.ses.sent)
	assert.Empty(t, c.sns.published)
}
