package property

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"estately/audit"
	"estately/db"
	"estately/geocode"
	"estately/metrics"
	"estately/outbox"
)

var (
	// ErrInvalidStatus signals a status outside the three-value enumeration.
	ErrInvalidStatus = errors.New("property: invalid status")
	// ErrNotOwner signals the acting agent does not own the listing.
	ErrNotOwner = errors.New("property: listing belongs to another agent")
	// ErrInvalidInput signals listing input that fails validation.
	ErrInvalidInput = errors.New("property: invalid input")
)

// Geocoder resolves addresses to coordinates. geocode.Client satisfies it.
type Geocoder interface {
	Structured(ctx context.Context, addr geocode.Address) (*geocode.Point, error)
	Search(ctx context.Context, query string) (*geocode.Point, error)
}

// DB abstracts pgxpool.Pool for testability.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	db.Querier
}

// Service owns listing writes: derived fields are recomputed and
// geocoding refreshed before any row becomes durable.
type Service struct {
	pool      DB
	repo      Repository
	geo       Geocoder
	country   string
	chargePct float64
	metrics   *metrics.Metrics
	logger    *zap.Logger
	idGen     func() string
	now       func() time.Time
}

func NewService(pool DB, repo Repository, geo Geocoder, country string, chargePct float64, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		pool:      pool,
		repo:      repo,
		geo:       geo,
		country:   country,
		chargePct: chargePct,
		metrics:   m,
		logger:    logger,
		idGen:     uuid.NewString,
		now:       time.Now,
	}
}

// WithIDGenerator overrides the ID source for tests.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create stores a new listing in its own transaction. Publication state
// is decided by the caller (public submissions and agent submissions
// start unpublished).
func (s *Service) Create(ctx context.Context, req CreateRequest, agentID *string, published bool) (*Property, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("property: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := s.CreateIn(ctx, tx, req, agentID, published)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("property: commit tx: %w", err)
	}
	return created, nil
}

// CreateIn stores a new listing against the caller's querier so flows
// like registration approval can keep the insert inside their own
// transaction. Derived fields and coordinates are computed up front.
func (s *Service) CreateIn(ctx context.Context, q db.Querier, req CreateRequest, agentID *string, published bool) (*Property, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	charges := s.chargePct
	if req.RegistrationPct != nil {
		charges = *req.RegistrationPct
	}

	p := Property{
		ID:                  s.idGen(),
		Name:                strings.TrimSpace(req.Name),
		ShortDescription:    req.ShortDescription,
		Description:         req.Description,
		CategoryID:          req.CategoryID,
		Price:               req.Price,
		PlotArea:            req.PlotArea,
		RegistrationCharges: charges,
		EMIAvailable:        req.EMIAvailable,
		FacingDirection:     req.FacingDirection,
		RoadWidth:           req.RoadWidth,
		TitleStatus:         req.TitleStatus,
		Status:              StatusAvailable,
		IsPublished:         published,
		Street:              req.Street,
		Street2:             req.Street2,
		City:                req.City,
		ZipCode:             req.ZipCode,
		State:               req.State,
		Country:             req.Country,
		ContactName:         req.ContactName,
		ContactPhone:        req.ContactPhone,
		ContactEmail:        req.ContactEmail,
		SEOTitle:            req.SEOTitle,
		SEODescription:      req.SEODescription,
		NearbyLandmarks:     req.NearbyLandmarks,
		AgentID:             agentID,
	}
	p.recomputeFinancials()
	s.refreshCoordinates(ctx, &p)

	created, err := s.repo.Create(ctx, q, p)
	if err != nil {
		return nil, err
	}
	if err := audit.Append(ctx, q, audit.Entry{
		EntityType: "property",
		EntityID:   created.ID,
		Action:     "created",
		Detail:     map[string]any{"name": created.Name, "published": created.IsPublished},
	}, s.now()); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a partial update, recomputing derived fields and, when
// any address component changed, the coordinates.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Property, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("property: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	addrBefore := [6]string{p.Street, p.Street2, p.City, p.ZipCode, p.State, p.Country}
	applyUpdate(&p, req)
	p.recomputeFinancials()

	addrAfter := [6]string{p.Street, p.Street2, p.City, p.ZipCode, p.State, p.Country}
	if addrBefore != addrAfter {
		s.refreshCoordinates(ctx, &p)
	}

	updated, err := s.repo.Update(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("property: commit tx: %w", err)
	}
	return &updated, nil
}

// SetStatus moves the listing between available, sold and rented. When
// ownerAgentID is non-nil the listing must belong to that agent.
func (s *Service) SetStatus(ctx context.Context, id string, status Status, actorID string, ownerAgentID *string) error {
	switch status {
	case StatusAvailable, StatusSold, StatusRented:
	default:
		return ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("property: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if ownerAgentID != nil && (p.AgentID == nil || *p.AgentID != *ownerAgentID) {
		return ErrNotOwner
	}

	now := s.now()
	if err := s.repo.SetStatus(ctx, tx, id, status, now); err != nil {
		return err
	}
	if err := audit.Append(ctx, tx, audit.Entry{
		EntityType: "property",
		EntityID:   id,
		Action:     "status_changed",
		ActorID:    actorID,
		Detail:     map[string]any{"previous": string(p.Status), "next": string(status)},
	}, now); err != nil {
		return err
	}
	if err := outbox.Enqueue(ctx, tx, "property.status_changed", map[string]any{
		"property_id": id,
		"previous":    string(p.Status),
		"next":        string(status),
	}, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("property: commit tx: %w", err)
	}
	s.metrics.IncrementOutcome("property", "status_"+string(status))
	return nil
}

// SetPublished toggles public visibility.
func (s *Service) SetPublished(ctx context.Context, id string, published bool, actorID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("property: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.repo.GetForUpdate(ctx, tx, id); err != nil {
		return err
	}

	now := s.now()
	if err := s.repo.SetPublished(ctx, tx, id, published, now); err != nil {
		return err
	}
	if err := audit.Append(ctx, tx, audit.Entry{
		EntityType: "property",
		EntityID:   id,
		Action:     "publication_changed",
		ActorID:    actorID,
		Detail:     map[string]any{"published": published},
	}, now); err != nil {
		return err
	}
	if err := outbox.Enqueue(ctx, tx, "property.publication_changed", map[string]any{
		"property_id": id,
		"published":   published,
	}, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("property: commit tx: %w", err)
	}
	return nil
}

// Get returns any listing by ID (staff view).
func (s *Service) Get(ctx context.Context, id string) (*Property, error) {
	p, err := s.repo.GetByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPublished returns a published listing by ID.
func (s *Service) GetPublished(ctx context.Context, id string) (*Property, error) {
	p, err := s.repo.GetPublishedByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPublished returns the public catalogue.
func (s *Service) ListPublished(ctx context.Context, filter ListFilter) ([]Property, error) {
	return s.repo.ListPublished(ctx, s.pool, filter)
}

// ListByAgent returns every listing owned by the agent.
func (s *Service) ListByAgent(ctx context.Context, agentID string) ([]Property, error) {
	return s.repo.ListByAgent(ctx, s.pool, agentID)
}

// refreshCoordinates implements the geocode policy: an entirely empty
// address clears coordinates without a lookup; otherwise a structured
// query, one free-text fallback, and on final failure the coordinates
// are cleared and the failure logged. The save itself never fails here.
func (s *Service) refreshCoordinates(ctx context.Context, p *Property) {
	if p.addressEmpty() {
		p.Latitude, p.Longitude, p.GeocodedAt = nil, nil, nil
		return
	}

	start := s.now()
	point, err := s.geo.Structured(ctx, geocode.Address{
		Street:  p.Street,
		Street2: p.Street2,
		Zip:     p.ZipCode,
		City:    p.City,
		Country: s.country,
	})
	if err != nil {
		point, err = s.geo.Search(ctx, freeTextAddress(p, s.country))
	}
	s.metrics.ObserveGateway("geocode", s.now().Sub(start))

	if err != nil {
		s.metrics.IncrementGatewayFailure("geocode", "lookup")
		s.logger.Warn("geocoding failed, clearing coordinates",
			zap.String("property", p.Name),
			zap.String("city", p.City),
			zap.Error(err))
		p.Latitude, p.Longitude, p.GeocodedAt = nil, nil, nil
		return
	}

	now := s.now()
	p.Latitude = &point.Latitude
	p.Longitude = &point.Longitude
	p.GeocodedAt = &now
}

func freeTextAddress(p *Property, country string) string {
	parts := make([]string, 0, 6)
	for _, part := range []string{p.Street, p.Street2, p.City, p.State, p.ZipCode, country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func applyUpdate(p *Property, req UpdateRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.ShortDescription != nil {
		p.ShortDescription = *req.ShortDescription
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.PlotArea != nil {
		p.PlotArea = *req.PlotArea
	}
	if req.FacingDirection != nil {
		p.FacingDirection = *req.FacingDirection
	}
	if req.RoadWidth != nil {
		p.RoadWidth = *req.RoadWidth
	}
	if req.TitleStatus != nil {
		p.TitleStatus = *req.TitleStatus
	}
	if req.EMIAvailable != nil {
		p.EMIAvailable = *req.EMIAvailable
	}
	if req.Street != nil {
		p.Street = *req.Street
	}
	if req.Street2 != nil {
		p.Street2 = *req.Street2
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.ZipCode != nil {
		p.ZipCode = *req.ZipCode
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.ContactName != nil {
		p.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		p.ContactPhone = *req.ContactPhone
	}
	if req.ContactEmail != nil {
		p.ContactEmail = *req.ContactEmail
	}
	if req.SEOTitle != nil {
		p.SEOTitle = *req.SEOTitle
	}
	if req.SEODescription != nil {
		p.SEODescription = *req.SEODescription
	}
	if req.NearbyLandmarks != nil {
		p.NearbyLandmarks = *req.NearbyLandmarks
	}
	if req.RegistrationPct != nil {
		p.RegistrationCharges = *req.RegistrationPct
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}
}
