package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"estately/db"
)

// ErrInsightNotFound signals a cache miss for the city.
var ErrInsightNotFound = errors.New("insight: city not cached")

// CityInsight is the cached city-level investment summary. It lives in
// its own keyed table rather than piggybacking on a listing row, so it
// survives that listing being unpublished or deleted.
type CityInsight struct {
	City              string
	InvestmentReasons string
	GrowthPotential   string
	Infrastructure    string
	MarketTrends      string
	GeneratedAt       time.Time
}

// Store handles data access for cached city insights.
type Store interface {
	Get(ctx context.Context, q db.Querier, city string) (CityInsight, error)
	Upsert(ctx context.Context, q db.Querier, ci CityInsight) error
}

// PGStore implements Store backed by PostgreSQL.
type PGStore struct{}

func NewStore() *PGStore {
	return &PGStore{}
}

func (s *PGStore) Get(ctx context.Context, q db.Querier, city string) (CityInsight, error) {
	const selectSQL = `
		SELECT city, investment_reasons, growth_potential, infrastructure, market_trends, generated_at
		FROM city_insights
		WHERE lower(city) = lower($1)
	`
	var ci CityInsight
	err := q.QueryRow(ctx, selectSQL, city).Scan(
		&ci.City, &ci.InvestmentReasons, &ci.GrowthPotential,
		&ci.Infrastructure, &ci.MarketTrends, &ci.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CityInsight{}, ErrInsightNotFound
		}
		return CityInsight{}, fmt.Errorf("insight: get city: %w", err)
	}
	return ci, nil
}

func (s *PGStore) Upsert(ctx context.Context, q db.Querier, ci CityInsight) error {
	_, err := q.Exec(ctx, `
		INSERT INTO city_insights (city, investment_reasons, growth_potential, infrastructure, market_trends, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (city) DO UPDATE SET
			investment_reasons = EXCLUDED.investment_reasons,
			growth_potential = EXCLUDED.growth_potential,
			infrastructure = EXCLUDED.infrastructure,
			market_trends = EXCLUDED.market_trends,
			generated_at = EXCLUDED.generated_at
	`, ci.City, ci.InvestmentReasons, ci.GrowthPotential, ci.Infrastructure, ci.MarketTrends, ci.GeneratedAt)
	if err != nil {
		return fmt.Errorf("insight: upsert city: %w", err)
	}
	return nil
}
