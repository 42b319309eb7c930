package history

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"

	"github.com/lib/pq"
)

const (
	insertEntry = `
		INSERT INTO report_history (id, report_type, location_id, jurisdiction_key, generated_at, generated_by, sections)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectByLocation = `
		SELECT id, report_type, location_id, jurisdiction_key, generated_at, generated_by, sections
		FROM report_history
		WHERE location_id = $1
		ORDER BY generated_at DESC
		LIMIT $2`

	selectByID = `
		SELECT id, report_type, location_id, jurisdiction_key, generated_at, generated_by, sections
		FROM report_history
		WHERE id = $1`
)

// PostgresStore keeps the history in the report_history table. The table has
// no UPDATE path; a duplicate id fails on the primary key.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry models.ReportHistoryEntry) error {
	_, err := s.db.ExecContext(ctx, insertEntry,
		entry.ID,
		entry.ReportType,
		entry.LocationID,
		entry.JurisdictionKey,
		entry.GeneratedAt,
		entry.GeneratedBy,
		pq.Array(sectionStrings(entry.Sections)),
	)
	if err != nil {
		return errors.NewHistoryAppendFailedError(err).WithMetadata("historyId", entry.ID)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, locationID string, limit int) ([]models.ReportHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectByLocation, locationID, ClampLimit(limit))
	if err != nil {
		return nil, errors.NewHistoryQueryFailedError(err)
	}
	defer rows.Close()

	out := []models.ReportHistoryEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewHistoryQueryFailedError(err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewHistoryQueryFailedError(err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.ReportHistoryEntry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx, selectByID, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewHistoryNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewHistoryQueryFailedError(err)
	}
	return &entry, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (models.ReportHistoryEntry, error) {
	var (
		entry       models.ReportHistoryEntry
		generatedBy sql.NullString
		sections    pq.StringArray
	)
	if err := row.Scan(
		&entry.ID,
		&entry.ReportType,
		&entry.LocationID,
		&entry.JurisdictionKey,
		&entry.GeneratedAt,
		&generatedBy,
		&sections,
	); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return entry, err
		}
		return entry, fmt.Errorf("scan report history: %w", err)
	}

	entry.GeneratedAt = entry.GeneratedAt.UTC()
	entry.GeneratedBy = generatedBy.String
	entry.Sections = make([]models.Section, 0, len(sections))
	for _, s := range sections {
		entry.Sections = append(entry.Sections, models.Section(s))
	}
	return entry, nil
}

func sectionStrings(sections []models.Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, string(s))
	}
	return out
}
