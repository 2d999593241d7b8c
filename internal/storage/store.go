package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/models"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

const schema = `
CREATE TABLE IF NOT EXISTS rental_applications (
    id               BIGSERIAL PRIMARY KEY,
    status           TEXT NOT NULL DEFAULT 'draft',
    building_address TEXT NOT NULL DEFAULT '',
    applicant_name   TEXT NOT NULL DEFAULT '',
    applicant_email  TEXT NOT NULL DEFAULT '',
    data             JSONB NOT NULL,
    encrypted_data   JSONB,
    application_date TIMESTAMPTZ NOT NULL DEFAULT now(),
    submitted_at     TIMESTAMPTZ,
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS rental_applications_status_idx ON rental_applications (status);
CREATE INDEX IF NOT EXISTS rental_applications_email_idx ON rental_applications (applicant_email);`

const returning = `id, status, data, encrypted_data, application_date, submitted_at, updated_at`

// Application is one persisted rental application. Data holds the bundle
// document as submitted by the client.
type Application struct {
	ID              int64           `json:"id"`
	Status          string          `json:"status"`
	Data            json.RawMessage `json:"data"`
	EncryptedData   json.RawMessage `json:"encryptedData,omitempty"`
	ApplicationDate time.Time       `json:"applicationDate"`
	SubmittedAt     *time.Time      `json:"submittedAt,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Bundle decodes the stored document.
func (a *Application) Bundle() (models.Bundle, error) {
	var b models.Bundle
	if err := json.Unmarshal(a.Data, &b); err != nil {
		return models.Bundle{}, fmt.Errorf("decode application %d: %w", a.ID, err)
	}
	return b, nil
}

type Store struct {
	db  *sql.DB
	log *internal.Logger
}

func NewStore(db *sql.DB, log *internal.Logger) *Store {
	return &Store{db: db, log: internal.OrDefault(log)}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewStorageError(fmt.Errorf("migrate: %w", err))
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*Application, error) {
	var (
		a         Application
		data      []byte
		encrypted []byte
		submitted sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.Status, &data, &encrypted, &a.ApplicationDate, &submitted, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Data = data
	if len(encrypted) > 0 {
		a.EncryptedData = encrypted
	}
	if submitted.Valid {
		t := submitted.Time
		a.SubmittedAt = &t
	}
	return &a, nil
}

// indexed extracts the searchable columns from a bundle document.
func indexed(data json.RawMessage) (address, name, email string) {
	var b models.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return "", "", ""
	}
	return strings.TrimSpace(b.Application.BuildingAddress),
		strings.TrimSpace(b.Applicant.Name),
		strings.ToLower(strings.TrimSpace(b.Applicant.Email))
}

func (s *Store) Create(ctx context.Context, data json.RawMessage) (*Application, error) {
	address, name, email := indexed(data)
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO rental_applications (status, building_address, applicant_name, applicant_email, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+returning,
		StatusDraft, address, name, email, []byte(data))

	app, err := scanApplication(row)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("insert application: %w", err))
	}
	s.log.Info("Created application %d", app.ID)
	return app, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Application, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+returning+` FROM rental_applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("get application %d: %w", id, err))
	}
	return app, nil
}

func (s *Store) List(ctx context.Context) ([]*Application, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+returning+` FROM rental_applications ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("list applications: %w", err))
	}
	defer rows.Close()

	apps := []*Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Errorf("scan application: %w", err))
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return apps, nil
}

// Update merges patch into the stored document. The merged result must
// still decode as a bundle.
func (s *Store) Update(ctx context.Context, id int64, patch json.RawMessage) (app *Application, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("begin: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current []byte
	err = tx.QueryRowContext(ctx, `SELECT data FROM rental_applications WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("lock application %d: %w", id, err))
	}

	merged, err := mergePatch(current, patch)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	var probe models.Bundle
	if err = json.Unmarshal(merged, &probe); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	address, name, email := indexed(merged)
	row := tx.QueryRowContext(ctx, `
		UPDATE rental_applications
		SET data = $2, building_address = $3, applicant_name = $4, applicant_email = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+returning,
		id, []byte(merged), address, name, email)
	app, err = scanApplication(row)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("update application %d: %w", id, err))
	}

	if err = tx.Commit(); err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("commit: %w", err))
	}
	return app, nil
}

// AttachEncryptedData stores the encrypted document payload uploaded for an
// application.
func (s *Store) AttachEncryptedData(ctx context.Context, id int64, payload json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rental_applications SET encrypted_data = $2, updated_at = now() WHERE id = $1`,
		id, []byte(payload))
	if err != nil {
		return apperrors.NewStorageError(fmt.Errorf("attach encrypted data %d: %w", id, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError(id)
	}
	return nil
}

// Submit marks the application submitted and stamps submitted_at.
func (s *Store) Submit(ctx context.Context, id int64) (*Application, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE rental_applications
		SET status = $2, submitted_at = now(), updated_at = now()
		WHERE id = $1
		RETURNING `+returning,
		id, StatusSubmitted)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("submit application %d: %w", id, err))
	}
	s.log.Info("Application %d submitted", app.ID)
	return app, nil
}
