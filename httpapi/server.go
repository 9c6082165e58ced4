package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"estately/agent"
	"estately/agentreg"
	"estately/db"
	"estately/insight"
	"estately/portal"
	"estately/property"
	"estately/propertyreg"
)

// AgentRegistrations is the slice of the agent registration workflow the
// handlers need.
type AgentRegistrations interface {
	Submit(ctx context.Context, req agentreg.SubmitRequest) (*agentreg.Registration, error)
	Get(ctx context.Context, id string) (*agentreg.Registration, error)
	List(ctx context.Context, status agentreg.Status) ([]agentreg.Registration, error)
	StartReview(ctx context.Context, registrationID, reviewerID string) error
	Approve(ctx context.Context, registrationID, reviewerID string) (*agent.Agent, error)
	Reject(ctx context.Context, registrationID, reviewerID, reason string) error
}

// PropertyRegistrations covers the seller-side precursor workflow.
type PropertyRegistrations interface {
	Submit(ctx context.Context, req propertyreg.SubmitRequest) (*propertyreg.Registration, error)
	Get(ctx context.Context, id string) (*propertyreg.Registration, error)
	List(ctx context.Context, status propertyreg.Status) ([]propertyreg.Registration, error)
	Approve(ctx context.Context, registrationID, reviewerID string, publish bool) (*property.Property, error)
	Reject(ctx context.Context, registrationID, reviewerID, reason string) error
}

// Listings covers the property catalogue operations.
type Listings interface {
	Create(ctx context.Context, req property.CreateRequest, agentID *string, published bool) (*property.Property, error)
	Update(ctx context.Context, id string, req property.UpdateRequest) (*property.Property, error)
	SetStatus(ctx context.Context, id string, status property.Status, actorID string, ownerAgentID *string) error
	SetPublished(ctx context.Context, id string, published bool, actorID string) error
	Get(ctx context.Context, id string) (*property.Property, error)
	GetPublished(ctx context.Context, id string) (*property.Property, error)
	ListPublished(ctx context.Context, filter property.ListFilter) ([]property.Property, error)
	ListByAgent(ctx context.Context, agentID string) ([]property.Property, error)
}

// Agents covers profile reads and agent self-service edits.
type Agents interface {
	Get(ctx context.Context, agentID string) (*agent.Agent, error)
	GetByPortalUser(ctx context.Context, portalUserID string) (*agent.Agent, error)
	List(ctx context.Context, activeOnly bool) ([]agent.Agent, error)
	UpdateProfile(ctx context.Context, agentID string, req agent.UpdateProfileRequest) (*agent.Agent, error)
}

// Identity covers portal authentication.
type Identity interface {
	Login(ctx context.Context, q db.Querier, req portal.LoginRequest) (portal.LoginResult, error)
	SetPassword(ctx context.Context, q db.Querier, userID, password string) error
	VerifyToken(token string) (string, portal.Role, error)
}

// Insights covers AI-generated content and the city investment cache.
type Insights interface {
	GenerateContent(ctx context.Context, propertyID string) (bool, error)
	GenerateIfMissing(ctx context.Context, p *property.Property)
	CityInvestmentInfo(ctx context.Context, city string) (*insight.CityInsight, error)
}

// ViewRecorder counts listing detail views.
type ViewRecorder interface {
	Record(ctx context.Context, propertyID string)
}

// Server is the thin HTTP layer; business rules live in the domain
// services behind the interfaces above.
type Server struct {
	logger *zap.Logger
	pool   db.Querier

	agentRegs AgentRegistrations
	propRegs  PropertyRegistrations
	listings  Listings
	agents    Agents
	identity  Identity
	insights  Insights
	views     ViewRecorder

	metricsHandler http.Handler
}

// Deps bundles everything the server needs so the constructor call in
// main stays readable.
type Deps struct {
	Logger         *zap.Logger
	Pool           db.Querier
	AgentRegs      AgentRegistrations
	PropRegs       PropertyRegistrations
	Listings       Listings
	Agents         Agents
	Identity       Identity
	Insights       Insights
	Views          ViewRecorder
	MetricsHandler http.Handler
}

func NewServer(d Deps) *Server {
	return &Server{
		logger:         d.Logger,
		pool:           d.Pool,
		agentRegs:      d.AgentRegs,
		propRegs:       d.PropRegs,
		listings:       d.Listings,
		agents:         d.Agents,
		identity:       d.Identity,
		insights:       d.Insights,
		views:          d.Views,
		metricsHandler: d.MetricsHandler,
	}
}

// Router wires all routes. Admin routes require the staff role, portal
// routes the agent role.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", s.handleListProperties)
		r.Get("/properties/{id}", s.handleGetProperty)
		r.Post("/properties/register", s.handleSubmitPropertyRegistration)
		r.Get("/cities/{city}/investment", s.handleCityInvestment)
		r.Get("/agents", s.handleListAgents)
		r.Get("/agents/{id}", s.handleGetAgent)
		r.Post("/agents/register", s.handleSubmitAgentRegistration)
		r.Post("/auth/login", s.handleLogin)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth, s.requireRole(portal.RoleStaff))
			r.Get("/agent-registrations", s.handleListAgentRegistrations)
			r.Get("/agent-registrations/{id}", s.handleGetAgentRegistration)
			r.Post("/agent-registrations/{id}/start-review", s.handleStartReview)
			r.Post("/agent-registrations/{id}/approve", s.handleApproveAgentRegistration)
			r.Post("/agent-registrations/{id}/reject", s.handleRejectAgentRegistration)
			r.Get("/property-registrations", s.handleListPropertyRegistrations)
			r.Get("/property-registrations/{id}", s.handleGetPropertyRegistration)
			r.Post("/property-registrations/{id}/approve", s.handleApprovePropertyRegistration)
			r.Post("/property-registrations/{id}/reject", s.handleRejectPropertyRegistration)
			r.Patch("/properties/{id}", s.handleAdminUpdateProperty)
			r.Post("/properties/{id}/generate-content", s.handleRegenerateContent)
		})

		r.Route("/portal", func(r chi.Router) {
			r.Use(s.requireAuth, s.requireRole(portal.RoleAgent))
			r.Get("/dashboard", s.handleDashboard)
			r.Patch("/profile", s.handleUpdateProfile)
			r.Post("/password", s.handleSetPassword)
			r.Get("/properties", s.handlePortalListProperties)
			r.Post("/properties", s.handlePortalCreateProperty)
			r.Post("/properties/{id}/status", s.handlePortalSetStatus)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
