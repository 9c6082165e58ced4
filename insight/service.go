package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"estately/db"
	"estately/metrics"
	"estately/property"
)

// LLM is the completion gateway slice this service needs. llm.Client
// satisfies it.
type LLM interface {
	Configured() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service generates descriptive content for listings and cached
// city-level investment summaries. Every failure here is soft: the
// caller gets false/nil, the log gets the detail, nothing is written.
type Service struct {
	pool    db.Querier
	props   property.Repository
	store   Store
	llm     LLM
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(pool db.Querier, props property.Repository, store Store, llm LLM, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		pool:    pool,
		props:   props,
		store:   store,
		llm:     llm,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type propertyPayload struct {
	KeyHighlights     []string `json:"key_highlights"`
	InvestmentData    []string `json:"investment_data"`
	NearbyPlaces      []string `json:"nearby_places"`
	UniqueFeatures    []string `json:"unique_features"`
	LifestyleBenefits []string `json:"lifestyle_benefits"`
}

type cityPayload struct {
	InvestmentReasons []string `json:"investment_reasons"`
	GrowthPotential   []string `json:"growth_potential"`
	Infrastructure    []string `json:"infrastructure"`
	MarketTrends      []string `json:"market_trends"`
}

// GenerateContent builds the five descriptive fragments for a listing
// and persists them in one write. Returns false without mutation on any
// soft failure (missing key, gateway error, malformed JSON).
func (s *Service) GenerateContent(ctx context.Context, propertyID string) (bool, error) {
	p, err := s.props.GetByID(ctx, s.pool, propertyID)
	if err != nil {
		return false, err
	}

	if !s.llm.Configured() {
		s.logger.Warn("ai content skipped, no api key configured",
			zap.String("property_id", p.ID))
		s.metrics.IncrementGatewayFailure("llm", "unconfigured")
		return false, nil
	}

	prompt := fmt.Sprintf(`You are a real estate marketing assistant. For the property %q located in %s, priced at %.0f with a plot area of %.0f sq ft, respond with only a JSON object containing exactly these keys, each an array of short strings: "key_highlights", "investment_data", "nearby_places", "unique_features", "lifestyle_benefits".`,
		p.Name, p.City, p.Price, p.PlotArea)

	start := s.now()
	raw, err := s.llm.Complete(ctx, prompt)
	s.metrics.ObserveGateway("llm", s.now().Sub(start))
	if err != nil {
		s.logger.Warn("ai content generation failed",
			zap.String("property_id", p.ID), zap.Error(err))
		s.metrics.IncrementGatewayFailure("llm", "request")
		return false, nil
	}

	var payload propertyPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		s.logger.Warn("ai content response was not valid json",
			zap.String("property_id", p.ID), zap.Error(err))
		s.metrics.IncrementGatewayFailure("llm", "parse")
		return false, nil
	}

	content := property.AIContent{
		KeyHighlights:     listFragment(payload.KeyHighlights),
		InvestmentData:    listFragment(payload.InvestmentData),
		NearbyPlaces:      listFragment(payload.NearbyPlaces),
		UniqueFeatures:    listFragment(payload.UniqueFeatures),
		LifestyleBenefits: listFragment(payload.LifestyleBenefits),
	}
	if err := s.props.SetAIContent(ctx, s.pool, p.ID, content, s.now()); err != nil {
		return false, err
	}
	return true, nil
}

// GenerateIfMissing triggers generation on the first detail view of a
// published listing. Failures are already soft inside GenerateContent,
// and even a store error must not break the page view.
func (s *Service) GenerateIfMissing(ctx context.Context, p *property.Property) {
	if !p.IsPublished || p.AIContentGenerated {
		return
	}
	if _, err := s.GenerateContent(ctx, p.ID); err != nil {
		s.logger.Warn("first-view ai content generation failed",
			zap.String("property_id", p.ID), zap.Error(err))
	}
}

// CityInvestmentInfo returns the four city-level fragments, serving from
// the keyed cache when present and generating (then caching) otherwise.
// Returns nil on empty city or any unrecoverable soft failure.
func (s *Service) CityInvestmentInfo(ctx context.Context, city string) (*CityInsight, error) {
	if city == "" {
		return nil, nil
	}

	cached, err := s.store.Get(ctx, s.pool, city)
	if err == nil {
		return &cached, nil
	}
	if err != ErrInsightNotFound {
		return nil, err
	}

	if !s.llm.Configured() {
		s.logger.Warn("city investment info skipped, no api key configured",
			zap.String("city", city))
		s.metrics.IncrementGatewayFailure("llm", "unconfigured")
		return nil, nil
	}

	prompt := fmt.Sprintf(`You are a real estate market analyst. For the city %q, respond with only a JSON object containing exactly these keys, each an array of short strings: "investment_reasons", "growth_potential", "infrastructure", "market_trends".`, city)

	start := s.now()
	raw, err := s.llm.Complete(ctx, prompt)
	s.metrics.ObserveGateway("llm", s.now().Sub(start))
	if err != nil {
		s.logger.Warn("city investment generation failed",
			zap.String("city", city), zap.Error(err))
		s.metrics.IncrementGatewayFailure("llm", "request")
		return nil, nil
	}

	var payload cityPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		s.logger.Warn("city investment response was not valid json",
			zap.String("city", city), zap.Error(err))
		s.metrics.IncrementGatewayFailure("llm", "parse")
		return nil, nil
	}

	ci := CityInsight{
		City:              city,
		InvestmentReasons: listFragment(payload.InvestmentReasons),
		GrowthPotential:   listFragment(payload.GrowthPotential),
		Infrastructure:    listFragment(payload.Infrastructure),
		MarketTrends:      listFragment(payload.MarketTrends),
		GeneratedAt:       s.now(),
	}
	if err := s.store.Upsert(ctx, s.pool, ci); err != nil {
		return nil, err
	}
	return &ci, nil
}
