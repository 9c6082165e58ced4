package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"estately/db"
)

var (
	// ErrInvalidCredentials signals wrong login or password.
	ErrInvalidCredentials = errors.New("portal: invalid credentials")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("portal: password must be at least 8 characters")
	// ErrInactiveUser signals a deactivated account.
	ErrInactiveUser = errors.New("portal: account is inactive")
)

// Service handles portal identity business logic.
type Service struct {
	repo      Repository
	jwtSecret []byte
	now       func() time.Time
}

// LoginResult bundles the token and domain user returned after a successful login.
type LoginResult struct {
	Token string
	User  User
}

// ProvisionParams describes the account to ensure for an approved agent.
type ProvisionParams struct {
	Login   string
	Name    string
	AgentID string
}

// NewService creates a new portal identity service.
func NewService(repo Repository, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Provision ensures a portal account exists for the login, creating one
// when missing. It runs against the caller's querier so approval stays a
// single transaction. The returned bool reports whether a new account was
// created; new accounts get an unusable random password and the caller is
// expected to trigger a password reset after commit.
func (s *Service) Provision(ctx context.Context, q db.Querier, params ProvisionParams) (User, bool, error) {
	if params.Login == "" {
		return User{}, false, fmt.Errorf("portal: login is required")
	}

	existing, err := s.repo.GetByLogin(ctx, q, params.Login)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, false, err
	}

	// Nobody can log in until the reset flow sets a real password.
	placeholder, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return User{}, false, fmt.Errorf("portal: hash placeholder password: %w", err)
	}

	agentID := params.AgentID
	user, err := s.repo.Create(ctx, q, CreateUserParams{
		Login:        params.Login,
		Name:         params.Name,
		PasswordHash: string(placeholder),
		Role:         RoleAgent,
		AgentID:      &agentID,
	})
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

// Login authenticates a portal user and returns a JWT token.
func (s *Service) Login(ctx context.Context, q db.Querier, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetByLogin(ctx, q, req.Login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !user.Active {
		return LoginResult{}, ErrInactiveUser
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("portal: generate token: %w", err)
	}

	return LoginResult{Token: token, User: user}, nil
}

// SetPassword updates the account password after validating strength.
func (s *Service) SetPassword(ctx context.Context, q db.Querier, userID, password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("portal: hash password: %w", err)
	}
	return s.repo.SetPasswordHash(ctx, q, userID, string(hash))
}

// VerifyToken validates a JWT token and returns the user ID and role.
func (s *Service) VerifyToken(tokenString string) (string, Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("portal: parse token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(string)
		if !ok {
			return "", "", fmt.Errorf("portal: invalid user_id in token")
		}
		roleStr, ok := claims["role"].(string)
		if !ok {
			return "", "", fmt.Errorf("portal: invalid role in token")
		}
		role := Role(roleStr)
		if role != RoleAgent && role != RoleStaff {
			return "", "", fmt.Errorf("portal: invalid role %q in token", roleStr)
		}
		return userID, role, nil
	}
	return "", "", fmt.Errorf("portal: invalid token")
}

func (s *Service) generateToken(userID string, role Role) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     s.now().Add(24 * time.Hour).Unix(),
		"iat":     s.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
