package propertyreg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"estately/db"
)

// ErrRegistrationNotFound signals that the registration does not exist.
var ErrRegistrationNotFound = errors.New("propertyreg: registration not found")

// Repository handles data access for property registrations.
type Repository interface {
	Create(ctx context.Context, q db.Querier, reg Registration) (Registration, error)
	GetByID(ctx context.Context, q db.Querier, id string) (Registration, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Registration, error)
	List(ctx context.Context, q db.Querier, status Status) ([]Registration, error)
	MarkApproved(ctx context.Context, q db.Querier, id, propertyID, reviewerID string, at time.Time) error
	MarkRejected(ctx context.Context, q db.Querier, id, reason, reviewerID string, at time.Time) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

const registrationColumns = `
	id, customer_name, property_name, phone_number, email, place,
	category_name, sq_yards, price, location, city, state, country,
	facing_direction, road_width, status, rejection_reason, property_id,
	reviewed_by, review_date, submitted_at, updated_at
`

func (r *PGRepository) Create(ctx context.Context, q db.Querier, reg Registration) (Registration, error) {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	insertSQL := `
		INSERT INTO property_registrations (
			id, customer_name, property_name, phone_number, email, place,
			category_name, sq_yards, price, location, city, state, country,
			facing_direction, road_width, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + registrationColumns

	out, err := scanRegistration(q.QueryRow(ctx, insertSQL,
		reg.ID, reg.CustomerName, reg.PropertyName, reg.PhoneNumber, reg.Email,
		reg.Place, reg.CategoryName, reg.SqYards, reg.Price, reg.Location,
		reg.City, reg.State, reg.Country, reg.FacingDirection, reg.RoadWidth,
		StatusSubmitted))
	if err != nil {
		return Registration{}, fmt.Errorf("propertyreg: create registration: %w", err)
	}
	return out, nil
}

func (r *PGRepository) GetByID(ctx context.Context, q db.Querier, id string) (Registration, error) {
	selectSQL := `SELECT ` + registrationColumns + ` FROM property_registrations WHERE id = $1`
	reg, err := scanRegistration(q.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, ErrRegistrationNotFound
		}
		return Registration{}, fmt.Errorf("propertyreg: get registration: %w", err)
	}
	return reg, nil
}

// GetForUpdate locks the registration row for the caller's transaction.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Registration, error) {
	selectSQL := `SELECT ` + registrationColumns + ` FROM property_registrations WHERE id = $1 FOR UPDATE`
	reg, err := scanRegistration(tx.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, ErrRegistrationNotFound
		}
		return Registration{}, fmt.Errorf("propertyreg: lock registration: %w", err)
	}
	return reg, nil
}

func (r *PGRepository) List(ctx context.Context, q db.Querier, status Status) ([]Registration, error) {
	selectSQL := `SELECT ` + registrationColumns + ` FROM property_registrations`
	args := []any{}
	if status != "" {
		selectSQL += ` WHERE status = $1`
		args = append(args, status)
	}
	selectSQL += ` ORDER BY submitted_at DESC`

	rows, err := q.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("propertyreg: list registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("propertyreg: scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("propertyreg: iterate registrations: %w", err)
	}
	return regs, nil
}

func (r *PGRepository) MarkApproved(ctx context.Context, q db.Querier, id, propertyID, reviewerID string, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE property_registrations
		SET status = $1, property_id = $2, reviewed_by = $3, review_date = $4, updated_at = $4
		WHERE id = $5
	`, StatusApproved, propertyID, reviewerID, at, id)
	if err != nil {
		return fmt.Errorf("propertyreg: mark approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *PGRepository) MarkRejected(ctx context.Context, q db.Querier, id, reason, reviewerID string, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE property_registrations
		SET status = $1, rejection_reason = $2, reviewed_by = $3, review_date = $4, updated_at = $4
		WHERE id = $5
	`, StatusRejected, reason, reviewerID, at, id)
	if err != nil {
		return fmt.Errorf("propertyreg: mark rejected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func scanRegistration(row pgx.Row) (Registration, error) {
	var reg Registration
	err := row.Scan(
		&reg.ID,
		&reg.CustomerName,
		&reg.PropertyName,
		&reg.PhoneNumber,
		&reg.Email,
		&reg.Place,
		&reg.CategoryName,
		&reg.SqYards,
		&reg.Price,
		&reg.Location,
		&reg.City,
		&reg.State,
		&reg.Country,
		&reg.FacingDirection,
		&reg.RoadWidth,
		&reg.Status,
		&reg.RejectionReason,
		&reg.PropertyID,
		&reg.ReviewedBy,
		&reg.ReviewDate,
		&reg.SubmittedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return Registration{}, err
	}
	return reg, nil
}
