package propertyreg

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
	"estately/category"
	"estately/db"
	"estately/metrics"
	"estately/notify"
	"estately/outbox"
	"estately/property"
)

var (
	// ErrAlreadyApproved signals a decision was already taken in favour.
	ErrAlreadyApproved = errors.New("propertyreg: already approved")
	// ErrAlreadyRejected signals a decision was already taken against.
	ErrAlreadyRejected = errors.New("propertyreg: already rejected")
	// ErrReasonRequired signals a rejection without a reason.
	ErrReasonRequired = errors.New("propertyreg: rejection reason is required")
	// ErrInvalidSubmission signals seller input that fails validation.
	ErrInvalidSubmission = errors.New("propertyreg: invalid submission")
)

// Defaults applied when mapping a loose registration onto a listing.
const (
	defaultZipCode     = "000000"
	defaultFacing      = "north"
	defaultRoadWidth   = 30.0
	defaultTitleStatus = "pending"
)

// DB abstracts pgxpool.Pool for testability.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	db.Querier
}

// Listings is the slice of the property service the approval flow needs.
type Listings interface {
	CreateIn(ctx context.Context, q db.Querier, req property.CreateRequest, agentID *string, published bool) (*property.Property, error)
}

// Service drives the property registration workflow.
type Service struct {
	pool       DB
	repo       Repository
	categories category.Repository
	listings   Listings
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	logger     *zap.Logger
	idGen      func() string
	now        func() time.Time
}

func NewService(pool DB, repo Repository, categories category.Repository, listings Listings, notifier notify.Notifier, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		pool:       pool,
		repo:       repo,
		categories: categories,
		listings:   listings,
		notifier:   notifier,
		metrics:    m,
		logger:     logger,
		idGen:      uuid.NewString,
		now:        time.Now,
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

// Submit records a new seller-side registration.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Registration, error) {
	if strings.TrimSpace(req.PropertyName) == "" {
		return nil, fmt.Errorf("%w: property name is required", ErrInvalidSubmission)
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidSubmission)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("propertyreg: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	reg, err := s.repo.Create(ctx, tx, Registration{
		ID:              s.idGen(),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		PropertyName:    strings.TrimSpace(req.PropertyName),
		PhoneNumber:     req.PhoneNumber,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Place:           req.Place,
		CategoryName:    strings.TrimSpace(req.CategoryName),
		SqYards:         req.SqYards,
		Price:           req.Price,
		Location:        req.Location,
		City:            req.City,
		State:           req.State,
		Country:         req.Country,
		FacingDirection: req.FacingDirection,
		RoadWidth:       req.RoadWidth,
	})
	if err != nil {
		return nil, err
	}

	if err := audit.Append(ctx, tx, audit.Entry{
		EntityType: "property_registration",
		EntityID:   reg.ID,
		Action:     "submitted",
		Detail:     map[string]any{"property_name": reg.PropertyName, "city": reg.City},
	}, s.now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("propertyreg: commit tx: %w", err)
	}

	s.metrics.IncrementOutcome("property_registration", "submitted")
	return &reg, nil
}

// Get returns a registration by ID.
func (s *Service) Get(ctx context.Context, id string) (*Registration, error) {
	reg, err := s.repo.GetByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// List returns registrations, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]Registration, error) {
	return s.repo.List(ctx, s.pool, status)
}

// Approve maps the loose registration onto a full listing, creating the
// named category on demand. Everything commits in one transaction; the
// publish flag is the reviewer's call.
func (s *Service) Approve(ctx context.Context, registrationID, reviewerID string, publish bool) (*property.Property, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("propertyreg: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	reg, err := s.repo.GetForUpdate(ctx, tx, registrationID)
	if err != nil {
		return nil, err
	}
	switch reg.Status {
	case StatusApproved:
		return nil, ErrAlreadyApproved
	case StatusRejected:
		return nil, ErrAlreadyRejected
	}

	draft := BuildListingDraft(reg)
	if reg.CategoryName != "" {
		cat, err := s.categories.EnsureByName(ctx, tx, reg.CategoryName)
		if err != nil {
			return nil, err
		}
		draft.CategoryID = &cat.ID
	}

	created, err := s.listings.CreateIn(ctx, tx, draft, nil, publish)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.MarkApproved(ctx, tx, reg.ID, created.ID, reviewerID, now); err != nil {
		return nil, err
	}
	if err := audit.Append(ctx, tx, audit.Entry{
		EntityType: "property_registration",
		EntityID:   reg.ID,
		Action:     "approved",
		ActorID:    reviewerID,
		Detail:     map[string]any{"property_id": created.ID, "published": publish},
	}, now); err != nil {
		return nil, err
	}
	if err := outbox.Enqueue(ctx, tx, "property_registration.approved", map[string]any{
		"registration_id": reg.ID,
		"property_id":     created.ID,
	}, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("propertyreg: commit tx: %w", err)
	}

	s.metrics.IncrementOutcome("property_registration", "approved")
	return created, nil
}

// Reject closes an open registration; the submitter is notified when an
// email is on file, and a send failure never undoes the decision.
func (s *Service) Reject(ctx context.Context, registrationID, reviewerID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("propertyreg: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	reg, err := s.repo.GetForUpdate(ctx, tx, registrationID)
	if err != nil {
		return err
	}
	switch reg.Status {
	case StatusApproved:
		return ErrAlreadyApproved
	case StatusRejected:
		return ErrAlreadyRejected
	}

	now := s.now()
	if err := s.repo.MarkRejected(ctx, tx, reg.ID, reason, reviewerID, now); err != nil {
		return err
	}
	if err := audit.Append(ctx, tx, audit.Entry{
		EntityType: "property_registration",
		EntityID:   reg.ID,
		Action:     "rejected",
		ActorID:    reviewerID,
		Detail:     map[string]any{"reason": reason},
	}, now); err != nil {
		return err
	}
	if err := outbox.Enqueue(ctx, tx, "property_registration.rejected", map[string]any{
		"registration_id": reg.ID,
		"reason":          reason,
	}, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("propertyreg: commit tx: %w", err)
	}

	if reg.Email != "" {
		if err := s.notifier.RegistrationRejected(ctx, reg.Email, reg.CustomerName, reason); err != nil {
			s.logger.Warn("rejection notification failed",
				zap.String("email", reg.Email), zap.Error(err))
		}
	}
	s.metrics.IncrementOutcome("property_registration", "rejected")
	return nil
}

// BuildListingDraft maps the loose registration fields onto a listing
// request, filling the gaps with the standard defaults.
func BuildListingDraft(reg Registration) property.CreateRequest {
	facing := strings.ToLower(strings.TrimSpace(reg.FacingDirection))
	if facing == "" {
		facing = defaultFacing
	}
	roadWidth := reg.RoadWidth
	if roadWidth <= 0 {
		roadWidth = defaultRoadWidth
	}
	street := reg.Location
	if street == "" {
		street = reg.Place
	}
	contactName := reg.CustomerName
	if contactName == "" {
		contactName = "Property Owner"
	}

	return property.CreateRequest{
		Name:            reg.PropertyName,
		Price:           reg.Price,
		PlotArea:        reg.SqYards,
		FacingDirection: facing,
		RoadWidth:       roadWidth,
		TitleStatus:     defaultTitleStatus,
		Street:          street,
		City:            reg.City,
		ZipCode:         defaultZipCode,
		State:           reg.State,
		Country:         reg.Country,
		ContactName:     contactName,
		ContactPhone:    reg.PhoneNumber,
		ContactEmail:    reg.Email,
		SEOTitle:        reg.PropertyName,
	}
}
