package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"estately/db"
)

// Repository handles data access for property categories.
type Repository interface {
	GetByName(ctx context.Context, q db.Querier, name string) (Category, error)
	Create(ctx context.Context, q db.Querier, cat Category) (Category, error)
	EnsureByName(ctx context.Context, q db.Querier, name string) (Category, error)
	List(ctx context.Context, q db.Querier) ([]Category, error)
}

// ErrCategoryNotFound signals that no category matches the name.
var ErrCategoryNotFound = errors.New("category: not found")

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) GetByName(ctx context.Context, q db.Querier, name string) (Category, error) {
	const selectSQL = `
		SELECT id, name, seo_title, created_at
		FROM categories
		WHERE name = $1
	`
	var cat Category
	err := q.QueryRow(ctx, selectSQL, name).Scan(&cat.ID, &cat.Name, &cat.SEOTitle, &cat.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		return Category{}, fmt.Errorf("category: get by name: %w", err)
	}
	return cat, nil
}

func (r *PGRepository) Create(ctx context.Context, q db.Querier, cat Category) (Category, error) {
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	const insertSQL = `
		INSERT INTO categories (id, name, seo_title)
		VALUES ($1, $2, $3)
		RETURNING id, name, seo_title, created_at
	`
	var out Category
	err := q.QueryRow(ctx, insertSQL, cat.ID, cat.Name, cat.SEOTitle).
		Scan(&out.ID, &out.Name, &out.SEOTitle, &out.CreatedAt)
	if err != nil {
		return Category{}, fmt.Errorf("category: create: %w", err)
	}
	return out, nil
}

// EnsureByName returns the category with the given name, creating it with
// a derived SEO title when missing. Runs against the caller's querier so
// approval flows can keep it inside their transaction.
func (r *PGRepository) EnsureByName(ctx context.Context, q db.Querier, name string) (Category, error) {
	cat, err := r.GetByName(ctx, q, name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return Category{}, err
	}
	return r.Create(ctx, q, Category{
		Name:     name,
		SEOTitle: fmt.Sprintf("%s Properties", name),
	})
}

func (r *PGRepository) List(ctx context.Context, q db.Querier) ([]Category, error) {
	const selectSQL = `
		SELECT id, name, seo_title, created_at
		FROM categories
		ORDER BY name
	`
	rows, err := q.Query(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("category: list: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.SEOTitle, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("category: scan: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category: iterate: %w", err)
	}
	return cats, nil
}
