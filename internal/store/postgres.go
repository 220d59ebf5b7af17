// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"loan-intake-workers/internal/models"
)

var (
	ErrRecordNotFound = errors.New("RECORD_NOT_FOUND")
	ErrPersistFailed  = errors.New("RECORD_PERSIST_FAILED")
)

// Record types stored in loan_records.record_type.
const (
	RecordExtraction  = "extraction"
	RecordEligibility = "eligibility_result"
	RecordCompliance  = "compliance_result"
	RecordStatus      = "status"
	RecordContact     = "contact"
)

// Schema creates the loan_records table. Pass it to PostgresClient.Migrate.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS loan_records (
		id           TEXT PRIMARY KEY,
		applicant_id TEXT NOT NULL,
		record_type  TEXT NOT NULL,
		payload      JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_loan_records_applicant ON loan_records (applicant_id, record_type)`,
}

const upsertQuery = `
	INSERT INTO loan_records (id, applicant_id, record_type, payload, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	ON CONFLICT (id) DO UPDATE
	SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

// PostgresStore keeps every applicant record as a JSONB document keyed by a
// deterministic id, so re-running a step overwrites its previous output.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func RecordID(applicantID, recordType string) string {
	return applicantID + "_" + recordType
}

// UpsertExtraction stores rec under its DocumentID, assigning a new one when
// it is empty, and returns the id used.
func (s *PostgresStore) UpsertExtraction(ctx context.Context, applicantID string, rec *models.ExtractionRecord) (string, error) {
	if rec.DocumentID == "" {
		rec.DocumentID = uuid.New().String()
	}
	return rec.DocumentID, s.upsert(ctx, rec.DocumentID, applicantID, RecordExtraction, rec)
}

func (s *PostgresStore) UpsertEligibility(ctx context.Context, applicantID string, result models.EligibilityResult) error {
	return s.upsert(ctx, RecordID(applicantID, RecordEligibility), applicantID, RecordEligibility, result)
}

func (s *PostgresStore) UpsertCompliance(ctx context.Context, applicantID string, report models.ComplianceReport) error {
	return s.upsert(ctx, RecordID(applicantID, RecordCompliance), applicantID, RecordCompliance, report)
}

func (s *PostgresStore) UpsertStatus(ctx context.Context, status models.ApplicationStatus) error {
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = s.now().UTC()
	}
	return s.upsert(ctx, RecordID(status.ApplicantID, RecordStatus), status.ApplicantID, RecordStatus, status)
}

func (s *PostgresStore) UpsertContact(ctx context.Context, contact models.ApplicantContact) error {
	return s.upsert(ctx, RecordID(contact.ApplicantID, RecordContact), contact.ApplicantID, RecordContact, contact)
}

func (s *PostgresStore) upsert(ctx context.Context, id, applicantID, recordType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPersistFailed, recordType, err)
	}

	if _, err := s.db.ExecContext(ctx, upsertQuery, id, applicantID, recordType, data, s.now().UTC()); err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrPersistFailed, id, err)
	}
	return nil
}

// ListExtractions returns the applicant's extraction records oldest first.
func (s *PostgresStore) ListExtractions(ctx context.Context, applicantID string) ([]*models.ExtractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM loan_records
		WHERE applicant_id = $1 AND record_type = $2
		ORDER BY created_at, id`, applicantID, RecordExtraction)
	if err != nil {
		return nil, fmt.Errorf("list extractions for %s: %w", applicantID, err)
	}
	defer rows.Close()

	var records []*models.ExtractionRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		var rec models.ExtractionRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode extraction: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) GetEligibility(ctx context.Context, applicantID string) (*models.EligibilityResult, error) {
	var result models.EligibilityResult
	if err := s.get(ctx, RecordID(applicantID, RecordEligibility), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *PostgresStore) GetContact(ctx context.Context, applicantID string) (*models.ApplicantContact, error) {
	var contact models.ApplicantContact
	if err := s.get(ctx, RecordID(applicantID, RecordContact), &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *PostgresStore) get(ctx context.Context, id string, out interface{}) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM loan_records WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return fmt.Errorf("get %s: %w", id, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s: %w", id, err)
	}
	return nil
}
