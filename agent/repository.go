package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"estately/db"
)

var (
	// ErrAgentNotFound signals that the agent does not exist.
	ErrAgentNotFound = errors.New("agent: not found")
	// ErrDuplicateEmail signals that an agent with this email already exists.
	ErrDuplicateEmail = errors.New("agent: email already exists")
	// ErrIdentityAttached signals the profile already carries a portal account.
	ErrIdentityAttached = errors.New("agent: portal identity already attached")
)

// Repository handles data access for agent profiles. Methods take a
// db.Querier so approval flows can keep writes inside one transaction.
type Repository interface {
	Create(ctx context.Context, q db.Querier, a Agent) (Agent, error)
	GetByID(ctx context.Context, q db.Querier, agentID string) (Agent, error)
	GetByEmail(ctx context.Context, q db.Querier, email string) (Agent, error)
	GetByPortalUser(ctx context.Context, q db.Querier, portalUserID string) (Agent, error)
	List(ctx context.Context, q db.Querier, activeOnly bool) ([]Agent, error)
	AttachPortalUser(ctx context.Context, q db.Querier, agentID, portalUserID string) error
	UpdateProfile(ctx context.Context, q db.Querier, agentID string, req UpdateProfileRequest) (Agent, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

const agentColumns = `
	id, name, email, phone, whatsapp, designation, expertise_level,
	license_number, experience_years, city, state, zip_code, country,
	short_bio, detailed_bio, qualifications, languages_spoken,
	linkedin_url, facebook_url, specializations,
	total_sales_volume, total_deals, avg_rating, review_count,
	is_active, is_accepting_clients, portal_user_id, created_at, updated_at
`

func (r *PGRepository) Create(ctx context.Context, q db.Querier, a Agent) (Agent, error) {
	insertSQL := `
		INSERT INTO agents (
			id, name, email, phone, whatsapp, designation, expertise_level,
			license_number, experience_years, city, state, zip_code, country,
			short_bio, detailed_bio, qualifications, languages_spoken,
			linkedin_url, facebook_url, specializations,
			total_sales_volume, total_deals, avg_rating, review_count,
			is_active, is_accepting_clients
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		RETURNING ` + agentColumns

	out, err := scanAgent(q.QueryRow(ctx, insertSQL,
		a.ID, a.Name, a.Email, a.Phone, a.Whatsapp, a.Designation, a.ExpertiseLevel,
		a.LicenseNumber, a.ExperienceYears, a.City, a.State, a.ZipCode, a.Country,
		a.ShortBio, a.DetailedBio, a.Qualifications, a.LanguagesSpoken,
		a.LinkedinURL, a.FacebookURL, a.Specializations,
		a.TotalSalesVolume, a.TotalDeals, a.AvgRating, a.ReviewCount,
		a.Active, a.AcceptingNew))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Agent{}, ErrDuplicateEmail
		}
		return Agent{}, fmt.Errorf("agent: create: %w", err)
	}
	return out, nil
}

func (r *PGRepository) GetByID(ctx context.Context, q db.Querier, agentID string) (Agent, error) {
	return r.getWhere(ctx, q, `id = $1`, agentID)
}

func (r *PGRepository) GetByEmail(ctx context.Context, q db.Querier, email string) (Agent, error) {
	return r.getWhere(ctx, q, `email = $1`, email)
}

func (r *PGRepository) GetByPortalUser(ctx context.Context, q db.Querier, portalUserID string) (Agent, error) {
	return r.getWhere(ctx, q, `portal_user_id = $1`, portalUserID)
}

func (r *PGRepository) getWhere(ctx context.Context, q db.Querier, cond string, arg any) (Agent, error) {
	selectSQL := `SELECT ` + agentColumns + ` FROM agents WHERE ` + cond
	a, err := scanAgent(q.QueryRow(ctx, selectSQL, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Agent{}, ErrAgentNotFound
		}
		return Agent{}, fmt.Errorf("agent: get: %w", err)
	}
	return a, nil
}

func (r *PGRepository) List(ctx context.Context, q db.Querier, activeOnly bool) ([]Agent, error) {
	selectSQL := `SELECT ` + agentColumns + ` FROM agents`
	if activeOnly {
		selectSQL += ` WHERE is_active`
	}
	selectSQL += ` ORDER BY name`

	rows, err := q.Query(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("agent: list: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("agent: scan: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("agent: iterate: %w", err)
	}
	return agents, nil
}

// AttachPortalUser links a portal account to a profile exactly once.
// A second attach attempt fails rather than silently re-pointing the profile.
func (r *PGRepository) AttachPortalUser(ctx context.Context, q db.Querier, agentID, portalUserID string) error {
	tag, err := q.Exec(ctx, `
		UPDATE agents
		SET portal_user_id = $1, updated_at = now()
		WHERE id = $2 AND portal_user_id IS NULL
	`, portalUserID, agentID)
	if err != nil {
		return fmt.Errorf("agent: attach portal user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		a, err := r.GetByID(ctx, q, agentID)
		if err != nil {
			return err
		}
		if a.PortalUserID != nil {
			return ErrIdentityAttached
		}
		return ErrAgentNotFound
	}
	return nil
}

func (r *PGRepository) UpdateProfile(ctx context.Context, q db.Querier, agentID string, req UpdateProfileRequest) (Agent, error) {
	updateSQL := `
		UPDATE agents SET
			phone = COALESCE($2, phone),
			whatsapp = COALESCE($3, whatsapp),
			short_bio = COALESCE($4, short_bio),
			detailed_bio = COALESCE($5, detailed_bio),
			is_accepting_clients = COALESCE($6, is_accepting_clients),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + agentColumns

	a, err := scanAgent(q.QueryRow(ctx, updateSQL, agentID,
		req.Phone, req.Whatsapp, req.ShortBio, req.DetailedBio, req.AcceptingNew))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Agent{}, ErrAgentNotFound
		}
		return Agent{}, fmt.Errorf("agent: update profile: %w", err)
	}
	return a, nil
}

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.Whatsapp,
		&a.Designation,
		&a.ExpertiseLevel,
		&a.LicenseNumber,
		&a.ExperienceYears,
		&a.City,
		&a.State,
		&a.ZipCode,
		&a.Country,
		&a.ShortBio,
		&a.DetailedBio,
		&a.Qualifications,
		&a.LanguagesSpoken,
		&a.LinkedinURL,
		&a.FacebookURL,
		&a.Specializations,
		&a.TotalSalesVolume,
		&a.TotalDeals,
		&a.AvgRating,
		&a.ReviewCount,
		&a.Active,
		&a.AcceptingNew,
		&a.PortalUserID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return Agent{}, err
	}
	return a, nil
}
