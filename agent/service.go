package agent

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"estately/db"
	"estately/notify"
	"estately/portal"
)

// DB abstracts pgxpool.Pool for testability.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	db.Querier
}

// Service handles agent profile business logic.
type Service struct {
	pool     DB
	repo     Repository
	identity *portal.Service
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewService(pool DB, repo Repository, identity *portal.Service, notifier notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		identity: identity,
		notifier: notifier,
		logger:   logger,
	}
}

// Get returns an agent profile by ID.
func (s *Service) Get(ctx context.Context, agentID string) (*Agent, error) {
	a, err := s.repo.GetByID(ctx, s.pool, agentID)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByPortalUser resolves the profile behind a portal identity.
func (s *Service) GetByPortalUser(ctx context.Context, portalUserID string) (*Agent, error) {
	a, err := s.repo.GetByPortalUser(ctx, s.pool, portalUserID)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns agent profiles, optionally only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Agent, error) {
	return s.repo.List(ctx, s.pool, activeOnly)
}

// UpdateProfile applies agent-editable fields.
func (s *Service) UpdateProfile(ctx context.Context, agentID string, req UpdateProfileRequest) (*Agent, error) {
	a, err := s.repo.UpdateProfile(ctx, s.pool, agentID, req)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// EnsurePortalAccess provisions a portal account for the agent and
// attaches it to the profile when not already linked. A password reset is
// sent only after commit and only for newly created accounts; a send
// failure is logged and does not undo the grant.
func (s *Service) EnsurePortalAccess(ctx context.Context, agentID string) (portal.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return portal.User{}, fmt.Errorf("agent: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := s.repo.GetByID(ctx, tx, agentID)
	if err != nil {
		return portal.User{}, err
	}

	user, created, err := s.identity.Provision(ctx, tx, portal.ProvisionParams{
		Login:   a.Email,
		Name:    a.Name,
		AgentID: a.ID,
	})
	if err != nil {
		return portal.User{}, err
	}

	if a.PortalUserID == nil {
		if err := s.repo.AttachPortalUser(ctx, tx, a.ID, user.ID); err != nil {
			return portal.User{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return portal.User{}, fmt.Errorf("agent: commit tx: %w", err)
	}

	if created {
		if err := s.notifier.PasswordReset(ctx, user.Login); err != nil {
			s.logger.Warn("password reset send failed",
				zap.String("login", user.Login), zap.Error(err))
		}
	}
	return user, nil
}
