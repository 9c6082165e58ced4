package agentreg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"estately/agent"
	"estately/audit"
	"estately/db"
	"estately/metrics"
	"estately/notify"
	"estately/outbox"
	"estately/portal"
)

var (
	// ErrAlreadyApproved signals a decision was already taken in favour.
	ErrAlreadyApproved = errors.New("agentreg: already approved")
	// ErrAlreadyRejected signals a decision was already taken against.
	ErrAlreadyRejected = errors.New("agentreg: already rejected")
	// ErrReasonRequired signals a rejection without a reason.
	ErrReasonRequired = errors.New("agentreg: rejection reason is required")
	// ErrInvalidSubmission signals applicant input that fails validation.
	ErrInvalidSubmission = errors.New("agentreg: invalid submission")
)

// DB abstracts pgxpool.Pool for testability. Reads go through the
// db.Querier side, workflow decisions open transactions.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	db.Querier
}

// Service drives the agent registration workflow.
type Service struct {
	pool     DB
	repo     Repository
	agents   agent.Repository
	identity *portal.Service
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	idGen    func() string
	now      func() time.Time
}

func NewService(pool DB, repo Repository, agents agent.Repository, identity *portal.Service, notifier notify.Notifier, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		agents:   agents,
		identity: identity,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		idGen:    uuid.NewString,
		now:      time.Now,
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

// Submit records a new registration in the submitted state.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Registration, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidSubmission)
	}
	if strings.TrimSpace(req.City) == "" {
		return nil, fmt.Errorf("%w: city is required", ErrInvalidSubmission)
	}

	designation := agent.Designation(req.Designation)
	if designation == "" {
		designation = agent.DesignationAgent
	}
	switch designation {
	case agent.DesignationAgent, agent.DesignationSenior, agent.DesignationPrincipal, agent.DesignationBroker:
	default:
		return nil, fmt.Errorf("%w: unknown designation %q", ErrInvalidSubmission, req.Designation)
	}

	expertise := agent.ExpertiseLevel(req.ExpertiseLevel)
	if expertise == "" {
		expertise = agent.ExpertiseStandard
	}
	switch expertise {
	case agent.ExpertiseStandard, agent.ExpertiseLuxury:
	default:
		return nil, fmt.Errorf("%w: unknown expertise level %q", ErrInvalidSubmission, req.ExpertiseLevel)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("agentreg: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id := s.idGen()
	reg, err := s.repo.Create(ctx, tx, Registration{
		ID:              id,
		RegistrationNo:  registrationNo(id),
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           req.Phone,
		Whatsapp:        req.Whatsapp,
		Designation:     designation,
		ExpertiseLevel:  expertise,
		LicenseNumber:   req.LicenseNumber,
		ExperienceYears: req.ExperienceYears,
		City:            strings.TrimSpace(req.City),
		State:           req.State,
		ZipCode:         req.ZipCode,
		Country:         req.Country,
		ShortBio:        req.ShortBio,
		DetailedBio:     req.DetailedBio,
		Qualifications:  req.Qualifications,
		LanguagesSpoken: req.LanguagesSpoken,
		LinkedinURL:     req.LinkedinURL,
		FacebookURL:     req.FacebookURL,
		Specializations: req.Specializations,
		Documents:       req.Documents,
	})
	if err != nil {
		return nil, err
	}

	if err := audit.Append(ctx, tx, audit.Entry{
		EntityType: "agent_registration",
		EntityID:   reg.ID,
		Action:     "submitted",
		Detail:     map[string]any{"email": reg.Email, "city": reg.City},
	}, s.now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("agentreg: commit tx: %w", err)
	}

	s.metrics.IncrementOutcome("agent_registration", "submitted")
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

// StartReview moves a submitted registration into under_review.
func (s *Service) StartReview(ctx context.Context, registrationID, reviewerID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("agentreg: begin tx: %w", err)
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
	case StatusUnderReview:
		return nil
	}

	now := s.now()
	if err := s.repo.SetStatus(ctx, tx, reg.ID, StatusUnderReview, now); err != nil {
		return err
	}
	if err := audit.Append(ctx, tx, audit.Entry{
		EntityType: "agent_registration",
		EntityID:   reg.ID,
		Action:     "review_started",
		ActorID:    reviewerID,
	}, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("agentreg: commit tx: %w", err)
	}
	return nil
}

// Approve turns an open registration into an agent profile with a linked
// portal account. Profile creation, identity provisioning, the status
// flip, the audit entry and the outbox event all commit together; a
// failure in any of them leaves the registration untouched.
func (s *Service) Approve(ctx context.Context, registrationID, reviewerID string) (*agent.Agent, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("agentreg: begin tx: %w", err)
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

	draft := BuildProfileDraft(reg)
	draft.ID = s.idGen()
	created, err := s.agents.Create(ctx, tx, draft)
	if err != nil {
		return nil, err
	}

	user, userCreated, err := s.identity.Provision(ctx, tx, portal.ProvisionParams{
		Login:   created.Email,
		Name:    created.Name,
		AgentID: created.ID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.agents.AttachPortalUser(ctx, tx, created.ID, user.ID); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.MarkApproved(ctx, tx, reg.ID, created.ID, reviewerID, now); err != nil {
		return nil, err
	}

	if err := audit.Append(ctx, tx, audit.Entry{
		EntityType: "agent_registration",
		EntityID:   reg.ID,
		Action:     "approved",
		ActorID:    reviewerID,
		Detail: map[string]any{
			"agent_id":       created.ID,
			"portal_user_id": user.ID,
			"login":          user.Login,
		},
	}, now); err != nil {
		return nil, err
	}
	if err := outbox.Enqueue(ctx, tx, "agent.approved", map[string]any{
		"registration_id": reg.ID,
		"agent_id":        created.ID,
		"email":           created.Email,
	}, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("agentreg: commit tx: %w", err)
	}

	if userCreated {
		if err := s.notifier.PasswordReset(ctx, user.Login); err != nil {
			s.logger.Warn("password reset send failed",
				zap.String("login", user.Login), zap.Error(err))
		}
	}
	s.metrics.IncrementOutcome("agent_registration", "approved")

	created.PortalUserID = &user.ID
	return &created, nil
}

// Reject closes an open registration with a mandatory reason.
func (s *Service) Reject(ctx context.Context, registrationID, reviewerID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("agentreg: begin tx: %w", err)
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
		EntityType: "agent_registration",
		EntityID:   reg.ID,
		Action:     "rejected",
		ActorID:    reviewerID,
		Detail:     map[string]any{"reason": reason},
	}, now); err != nil {
		return err
	}
	if err := outbox.Enqueue(ctx, tx, "agent.rejected", map[string]any{
		"registration_id": reg.ID,
		"email":           reg.Email,
		"reason":          reason,
	}, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("agentreg: commit tx: %w", err)
	}

	if err := s.notifier.RegistrationRejected(ctx, reg.Email, reg.Name, reason); err != nil {
		s.logger.Warn("rejection notification failed",
			zap.String("email", reg.Email), zap.Error(err))
	}
	s.metrics.IncrementOutcome("agent_registration", "rejected")
	return nil
}

// BuildProfileDraft maps a registration onto a fresh agent profile,
// applying the contact and bio fallbacks.
func BuildProfileDraft(reg Registration) agent.Agent {
	phone := reg.Phone
	if phone == "" && reg.Whatsapp != nil {
		phone = *reg.Whatsapp
	}

	shortBio := strings.TrimSpace(reg.ShortBio)
	if shortBio == "" {
		shortBio = fmt.Sprintf("Real estate professional from %s", reg.City)
	}
	detailedBio := strings.TrimSpace(reg.DetailedBio)
	if detailedBio == "" {
		detailedBio = shortBio
	}

	return agent.Agent{
		Name:            reg.Name,
		Email:           reg.Email,
		Phone:           phone,
		Whatsapp:        reg.Whatsapp,
		Designation:     reg.Designation,
		ExpertiseLevel:  reg.ExpertiseLevel,
		LicenseNumber:   reg.LicenseNumber,
		ExperienceYears: reg.ExperienceYears,
		City:            reg.City,
		State:           reg.State,
		ZipCode:         reg.ZipCode,
		Country:         reg.Country,
		ShortBio:        shortBio,
		DetailedBio:     detailedBio,
		Qualifications:  reg.Qualifications,
		LanguagesSpoken: reg.LanguagesSpoken,
		LinkedinURL:     reg.LinkedinURL,
		FacebookURL:     reg.FacebookURL,
		Specializations: reg.Specializations,

		TotalSalesVolume: 0,
		TotalDeals:       0,
		AvgRating:        5.0,
		ReviewCount:      0,

		Active:       true,
		AcceptingNew: true,
	}
}

// registrationNo derives the human-readable reference from the row ID.
func registrationNo(id string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return "AR-" + strings.ToUpper(short)
}
