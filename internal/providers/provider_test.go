package providers

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"
	"evidly-workers/internal/reporting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testWindow() reporting.Window {
	return reporting.Window{Start: testNow.AddDate(0, 0, -30), End: testNow}
}

// recordingProvider serves the downtown fixture and records which lookups ran.
type recordingProvider struct {
	*FixtureProvider
	calls   []string
	failOn  string
	failErr error
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{FixtureProvider: NewFixtureProvider(reporting.FixedClock(testNow))}
}

func (r *recordingProvider) record(name string) error {
	r.calls = append(r.calls, name)
	if name == r.failOn {
		return r.failErr
	}
	return nil
}

func (r *recordingProvider) Facility(ctx context.Context, id string) (*models.FacilityInfo, error) {
	if err := r.record("facility"); err != nil {
		return nil, err
	}
	return r.FixtureProvider.Facility(ctx, id)
}

func (r *recordingProvider) Scores(ctx context.Context, id string) (*models.ComplianceScoreSet, error) {
	if err := r.record("scores"); err != nil {
		return nil, err
	}
	return r.FixtureProvider.Scores(ctx, id)
}

func (r *recordingProvider) Documents(ctx context.Context, id string) ([]models.DocumentRecord, error) {
	if err := r.record("documents"); err != nil {
		return nil, err
	}
	return r.FixtureProvider.Documents(ctx, id)
}

func (r *recordingProvider) Trend(ctx context.Context, id string, end time.Time, periods int) ([]models.TrendPoint, error) {
	if err := r.record("trend"); err != nil {
		return nil, err
	}
	return r.FixtureProvider.Trend(ctx, id, end, periods)
}

func TestSelector_For(t *testing.T) {
	demo := NewFixtureProvider(reporting.FixedClock(testNow))

	p, err := Selector{Demo: demo}.For(true)
	require.NoError(t, err)
	assert.Same(t, demo, p)

	_, err = Selector{Demo: demo}.For(false)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = Selector{}.For(true)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestLoadSnapshot_OnlyRequestedSections(t *testing.T) {
	p := newRecordingProvider()

	snap, err := LoadSnapshot(context.Background(), p, LocationDowntown, testWindow(), 12, []models.Section{
		models.SectionFacilityInfo,
		models.SectionMissingDocs,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"facility", "documents"}, p.calls)
	require.NotNil(t, snap.Facility)
	assert.Equal(t, "Downtown Kitchen", snap.Facility.Name)
	assert.NotEmpty(t, snap.Documents)
	assert.Nil(t, snap.Scores)
	assert.Nil(t, snap.Trend)
}

func TestLoadSnapshot_AllSections(t *testing.T) {
	p := NewFixtureProvider(reporting.FixedClock(testNow))

	snap, err := LoadSnapshot(context.Background(), p, LocationDowntown, testWindow(), 6, models.AllSections)
	require.NoError(t, err)

	assert.NotNil(t, snap.Facility)
	assert.NotNil(t, snap.Scores)
	assert.Len(t, snap.FoodSafety, 6)
	assert.Len(t, snap.Certifications, 4)
	assert.Len(t, snap.FireEquipment, 4)
	assert.Len(t, snap.VendorDocuments, 4)
	assert.Len(t, snap.CorrectiveActions, 3)
	assert.Len(t, snap.Trend, 6)
	assert.Len(t, snap.SelfAudit, 8)
	assert.Len(t, snap.Documents, 8)
}

func TestLoadSnapshot_WrapsProviderErrors(t *testing.T) {
	p := newRecordingProvider()
	p.failOn = "trend"
	p.failErr = stderrors.New("connection reset")

	_, err := LoadSnapshot(context.Background(), p, LocationDowntown, testWindow(), 12, []models.Section{
		models.SectionFacilityInfo,
		models.SectionTrendData,
		models.SectionMissingDocs,
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataProviderFailed))
	assert.Contains(t, err.Error(), "trend")
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, []string{"facility", "trend"}, p.calls)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, LocationDowntown, stdErr.Metadata["locationId"])
}
