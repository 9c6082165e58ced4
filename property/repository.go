package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"estately/db"
)

var (
	// ErrPropertyNotFound signals that the listing does not exist
	// or is not visible to the caller.
	ErrPropertyNotFound = errors.New("property: not found")
)

// AIContent bundles the five generated fragments persisted in one write.
type AIContent struct {
	KeyHighlights     string
	InvestmentData    string
	NearbyPlaces      string
	UniqueFeatures    string
	LifestyleBenefits string
}

// Repository handles data access for property listings.
type Repository interface {
	Create(ctx context.Context, q db.Querier, p Property) (Property, error)
	GetByID(ctx context.Context, q db.Querier, id string) (Property, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Property, error)
	GetPublishedByID(ctx context.Context, q db.Querier, id string) (Property, error)
	ListPublished(ctx context.Context, q db.Querier, filter ListFilter) ([]Property, error)
	ListByAgent(ctx context.Context, q db.Querier, agentID string) ([]Property, error)
	Update(ctx context.Context, q db.Querier, p Property) (Property, error)
	SetStatus(ctx context.Context, q db.Querier, id string, status Status, at time.Time) error
	SetPublished(ctx context.Context, q db.Querier, id string, published bool, at time.Time) error
	SetAIContent(ctx context.Context, q db.Querier, id string, content AIContent, at time.Time) error
	AddViews(ctx context.Context, q db.Querier, id string, delta int64) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

const propertyColumns = `
	id, name, short_description, description, category_id, is_featured,
	price, plot_area, price_per_sqft, registration_charges, registration_amount,
	emi_available, facing_direction, road_width, title_status, status, is_published,
	street, street2, city, zip_code, state, country,
	latitude, longitude, geocoded_at,
	contact_name, contact_phone, contact_email,
	seo_title, seo_description, nearby_landmarks, agent_id, views,
	key_highlights, investment_data, nearby_places, unique_features,
	lifestyle_benefits, ai_content_generated, ai_generated_at,
	created_at, updated_at
`

func (r *PGRepository) Create(ctx context.Context, q db.Querier, p Property) (Property, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = StatusAvailable
	}
	insertSQL := `
		INSERT INTO properties (
			id, name, short_description, description, category_id, is_featured,
			price, plot_area, price_per_sqft, registration_charges, registration_amount,
			emi_available, facing_direction, road_width, title_status, status, is_published,
			street, street2, city, zip_code, state, country,
			latitude, longitude, geocoded_at,
			contact_name, contact_phone, contact_email,
			seo_title, seo_description, nearby_landmarks, agent_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
		        $27, $28, $29, $30, $31, $32, $33)
		RETURNING ` + propertyColumns

	out, err := scanProperty(q.QueryRow(ctx, insertSQL,
		p.ID, p.Name, p.ShortDescription, p.Description, p.CategoryID, p.IsFeatured,
		p.Price, p.PlotArea, p.PricePerSqft, p.RegistrationCharges, p.RegistrationAmount,
		p.EMIAvailable, p.FacingDirection, p.RoadWidth, p.TitleStatus, p.Status, p.IsPublished,
		p.Street, p.Street2, p.City, p.ZipCode, p.State, p.Country,
		p.Latitude, p.Longitude, p.GeocodedAt,
		p.ContactName, p.ContactPhone, p.ContactEmail,
		p.SEOTitle, p.SEODescription, p.NearbyLandmarks, p.AgentID))
	if err != nil {
		return Property{}, fmt.Errorf("property: create: %w", err)
	}
	return out, nil
}

func (r *PGRepository) GetByID(ctx context.Context, q db.Querier, id string) (Property, error) {
	selectSQL := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(q.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrPropertyNotFound
		}
		return Property{}, fmt.Errorf("property: get: %w", err)
	}
	return p, nil
}

// GetForUpdate locks the listing row for the caller's transaction.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Property, error) {
	selectSQL := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 FOR UPDATE`
	p, err := scanProperty(tx.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrPropertyNotFound
		}
		return Property{}, fmt.Errorf("property: lock: %w", err)
	}
	return p, nil
}

func (r *PGRepository) GetPublishedByID(ctx context.Context, q db.Querier, id string) (Property, error) {
	selectSQL := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 AND is_published`
	p, err := scanProperty(q.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrPropertyNotFound
		}
		return Property{}, fmt.Errorf("property: get published: %w", err)
	}
	return p, nil
}

// ListPublished returns the public catalogue: published listings that
// are not sold, newest first.
func (r *PGRepository) ListPublished(ctx context.Context, q db.Querier, filter ListFilter) ([]Property, error) {
	selectSQL := `SELECT ` + propertyColumns + ` FROM properties WHERE is_published AND status <> $1`
	args := []any{StatusSold}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		selectSQL += fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d)`, len(args), len(args))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		selectSQL += fmt.Sprintf(` AND city ILIKE $%d`, len(args))
	}
	if filter.Zip != "" {
		args = append(args, filter.Zip)
		selectSQL += fmt.Sprintf(` AND zip_code = $%d`, len(args))
	}
	selectSQL += ` ORDER BY created_at DESC`

	return r.list(ctx, q, selectSQL, args...)
}

func (r *PGRepository) ListByAgent(ctx context.Context, q db.Querier, agentID string) ([]Property, error) {
	selectSQL := `SELECT ` + propertyColumns + ` FROM properties WHERE agent_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, selectSQL, agentID)
}

func (r *PGRepository) list(ctx context.Context, q db.Querier, sql string, args ...any) ([]Property, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("property: list: %w", err)
	}
	defer rows.Close()

	var props []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("property: scan: %w", err)
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("property: iterate: %w", err)
	}
	return props, nil
}

// Update persists the whole mutable surface of the row. The service
// recomputes derived fields before calling this.
func (r *PGRepository) Update(ctx context.Context, q db.Querier, p Property) (Property, error) {
	updateSQL := `
		UPDATE properties SET
			name = $2, short_description = $3, description = $4, category_id = $5,
			is_featured = $6, price = $7, plot_area = $8, price_per_sqft = $9,
			registration_charges = $10, registration_amount = $11, emi_available = $12,
			facing_direction = $13, road_width = $14, title_status = $15,
			street = $16, street2 = $17, city = $18, zip_code = $19, state = $20,
			country = $21, latitude = $22, longitude = $23, geocoded_at = $24,
			contact_name = $25, contact_phone = $26, contact_email = $27,
			seo_title = $28, seo_description = $29, nearby_landmarks = $30,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + propertyColumns

	out, err := scanProperty(q.QueryRow(ctx, updateSQL,
		p.ID, p.Name, p.ShortDescription, p.Description, p.CategoryID,
		p.IsFeatured, p.Price, p.PlotArea, p.PricePerSqft,
		p.RegistrationCharges, p.RegistrationAmount, p.EMIAvailable,
		p.FacingDirection, p.RoadWidth, p.TitleStatus,
		p.Street, p.Street2, p.City, p.ZipCode, p.State,
		p.Country, p.Latitude, p.Longitude, p.GeocodedAt,
		p.ContactName, p.ContactPhone, p.ContactEmail,
		p.SEOTitle, p.SEODescription, p.NearbyLandmarks))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrPropertyNotFound
		}
		return Property{}, fmt.Errorf("property: update: %w", err)
	}
	return out, nil
}

func (r *PGRepository) SetStatus(ctx context.Context, q db.Querier, id string, status Status, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE properties SET status = $1, updated_at = $2 WHERE id = $3
	`, status, at, id)
	if err != nil {
		return fmt.Errorf("property: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *PGRepository) SetPublished(ctx context.Context, q db.Querier, id string, published bool, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE properties SET is_published = $1, updated_at = $2 WHERE id = $3
	`, published, at, id)
	if err != nil {
		return fmt.Errorf("property: set published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// SetAIContent persists all five fragments, the generated flag and the
// timestamp in a single write.
func (r *PGRepository) SetAIContent(ctx context.Context, q db.Querier, id string, content AIContent, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE properties SET
			key_highlights = $1, investment_data = $2, nearby_places = $3,
			unique_features = $4, lifestyle_benefits = $5,
			ai_content_generated = true, ai_generated_at = $6, updated_at = $6
		WHERE id = $7
	`, content.KeyHighlights, content.InvestmentData, content.NearbyPlaces,
		content.UniqueFeatures, content.LifestyleBenefits, at, id)
	if err != nil {
		return fmt.Errorf("property: set ai content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *PGRepository) AddViews(ctx context.Context, q db.Querier, id string, delta int64) error {
	_, err := q.Exec(ctx, `
		UPDATE properties SET views = views + $1 WHERE id = $2
	`, delta, id)
	if err != nil {
		return fmt.Errorf("property: add views: %w", err)
	}
	return nil
}

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(
		&p.ID, &p.Name, &p.ShortDescription, &p.Description, &p.CategoryID, &p.IsFeatured,
		&p.Price, &p.PlotArea, &p.PricePerSqft, &p.RegistrationCharges, &p.RegistrationAmount,
		&p.EMIAvailable, &p.FacingDirection, &p.RoadWidth, &p.TitleStatus, &p.Status, &p.IsPublished,
		&p.Street, &p.Street2, &p.City, &p.ZipCode, &p.State, &p.Country,
		&p.Latitude, &p.Longitude, &p.GeocodedAt,
		&p.ContactName, &p.ContactPhone, &p.ContactEmail,
		&p.SEOTitle, &p.SEODescription, &p.NearbyLandmarks, &p.AgentID, &p.Views,
		&p.KeyHighlights, &p.InvestmentData, &p.NearbyPlaces, &p.UniqueFeatures,
		&p.LifestyleBenefits, &p.AIContentGenerated, &p.AIGeneratedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Property{}, err
	}
	return p, nil
}
