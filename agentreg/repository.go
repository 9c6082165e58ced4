package agentreg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"estately/db"
)

var (
	// ErrRegistrationNotFound signals that the registration does not exist.
	ErrRegistrationNotFound = errors.New("agentreg: registration not found")
	// ErrDuplicateOpen signals an open registration already exists for the email.
	ErrDuplicateOpen = errors.New("agentreg: open registration already exists for email")
)

// Repository handles data access for agent registrations.
type Repository interface {
	Create(ctx context.Context, q db.Querier, reg Registration) (Registration, error)
	GetByID(ctx context.Context, q db.Querier, id string) (Registration, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Registration, error)
	List(ctx context.Context, q db.Querier, status Status) ([]Registration, error)
	SetStatus(ctx context.Context, q db.Querier, id string, status Status, at time.Time) error
	MarkApproved(ctx context.Context, q db.Querier, id, agentID, reviewerID string, at time.Time) error
	MarkRejected(ctx context.Context, q db.Querier, id, reason, reviewerID string, at time.Time) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

const registrationColumns = `
	id, registration_no, name, email, phone, whatsapp, designation,
	expertise_level, license_number, experience_years, city, state,
	zip_code, country, short_bio, detailed_bio, qualifications,
	languages_spoken, linkedin_url, facebook_url, specializations,
	documents, status, rejection_reason, agent_id, reviewed_by,
	review_date, submitted_at, updated_at
`

func (r *PGRepository) Create(ctx context.Context, q db.Querier, reg Registration) (Registration, error) {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	docs, err := json.Marshal(reg.Documents)
	if err != nil {
		return Registration{}, fmt.Errorf("agentreg: marshal documents: %w", err)
	}

	insertSQL := `
		INSERT INTO agent_registrations (
			id, registration_no, name, email, phone, whatsapp, designation,
			expertise_level, license_number, experience_years, city, state,
			zip_code, country, short_bio, detailed_bio, qualifications,
			languages_spoken, linkedin_url, facebook_url, specializations,
			documents, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING ` + registrationColumns

	out, err := scanRegistration(q.QueryRow(ctx, insertSQL,
		reg.ID, reg.RegistrationNo, reg.Name, reg.Email, reg.Phone, reg.Whatsapp,
		reg.Designation, reg.ExpertiseLevel, reg.LicenseNumber, reg.ExperienceYears,
		reg.City, reg.State, reg.ZipCode, reg.Country, reg.ShortBio, reg.DetailedBio,
		reg.Qualifications, reg.LanguagesSpoken, reg.LinkedinURL, reg.FacebookURL,
		reg.Specializations, docs, StatusSubmitted))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Registration{}, ErrDuplicateOpen
		}
		return Registration{}, fmt.Errorf("agentreg: create registration: %w", err)
	}
	return out, nil
}

func (r *PGRepository) GetByID(ctx context.Context, q db.Querier, id string) (Registration, error) {
	selectSQL := `SELECT ` + registrationColumns + ` FROM agent_registrations WHERE id = $1`
	reg, err := scanRegistration(q.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, ErrRegistrationNotFound
		}
		return Registration{}, fmt.Errorf("agentreg: get registration: %w", err)
	}
	return reg, nil
}

// GetForUpdate locks the registration row for the duration of the
// caller's transaction so concurrent decisions serialize.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Registration, error) {
	selectSQL := `SELECT ` + registrationColumns + ` FROM agent_registrations WHERE id = $1 FOR UPDATE`
	reg, err := scanRegistration(tx.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, ErrRegistrationNotFound
		}
		return Registration{}, fmt.Errorf("agentreg: lock registration: %w", err)
	}
	return reg, nil
}

func (r *PGRepository) List(ctx context.Context, q db.Querier, status Status) ([]Registration, error) {
	selectSQL := `SELECT ` + registrationColumns + ` FROM agent_registrations`
	args := []any{}
	if status != "" {
		selectSQL += ` WHERE status = $1`
		args = append(args, status)
	}
	selectSQL += ` ORDER BY submitted_at DESC`

	rows, err := q.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("agentreg: list registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("agentreg: scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("agentreg: iterate registrations: %w", err)
	}
	return regs, nil
}

func (r *PGRepository) SetStatus(ctx context.Context, q db.Querier, id string, status Status, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE agent_registrations SET status = $1, updated_at = $2 WHERE id = $3
	`, status, at, id)
	if err != nil {
		return fmt.Errorf("agentreg: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *PGRepository) MarkApproved(ctx context.Context, q db.Querier, id, agentID, reviewerID string, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE agent_registrations
		SET status = $1, agent_id = $2, reviewed_by = $3, review_date = $4, updated_at = $4
		WHERE id = $5
	`, StatusApproved, agentID, reviewerID, at, id)
	if err != nil {
		return fmt.Errorf("agentreg: mark approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *PGRepository) MarkRejected(ctx context.Context, q db.Querier, id, reason, reviewerID string, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE agent_registrations
		SET status = $1, rejection_reason = $2, reviewed_by = $3, review_date = $4, updated_at = $4
		WHERE id = $5
	`, StatusRejected, reason, reviewerID, at, id)
	if err != nil {
		return fmt.Errorf("agentreg: mark rejected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func scanRegistration(row pgx.Row) (Registration, error) {
	var (
		reg  Registration
		docs []byte
	)
	err := row.Scan(
		&reg.ID,
		&reg.RegistrationNo,
		&reg.Name,
		&reg.Email,
		&reg.Phone,
		&reg.Whatsapp,
		&reg.Designation,
		&reg.ExpertiseLevel,
		&reg.LicenseNumber,
		&reg.ExperienceYears,
		&reg.City,
		&reg.State,
		&reg.ZipCode,
		&reg.Country,
		&reg.ShortBio,
		&reg.DetailedBio,
		&reg.Qualifications,
		&reg.LanguagesSpoken,
		&reg.LinkedinURL,
		&reg.FacebookURL,
		&reg.Specializations,
		&docs,
		&reg.Status,
		&reg.RejectionReason,
		&reg.AgentID,
		&reg.ReviewedBy,
		&reg.ReviewDate,
		&reg.SubmittedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return Registration{}, err
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &reg.Documents); err != nil {
			return Registration{}, fmt.Errorf("agentreg: unmarshal documents: %w", err)
		}
	}
	return reg, nil
}
