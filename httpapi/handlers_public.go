package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"estately/agentreg"
	"estately/portal"
	"estately/property"
	"estately/propertyreg"
)

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	props, err := s.listings.ListPublished(r.Context(), property.ListFilter{
		Search: q.Get("search"),
		City:   q.Get("city"),
		Zip:    q.Get("zip"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": toPropertyViews(props)})
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.listings.GetPublished(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.views.Record(r.Context(), p.ID)
	s.insights.GenerateIfMissing(r.Context(), p)

	// Re-read so freshly generated content shows up on the first view.
	if p.IsPublished && !p.AIContentGenerated {
		if refreshed, err := s.listings.GetPublished(r.Context(), id); err == nil {
			p = refreshed
		}
	}
	writeJSON(w, http.StatusOK, toPropertyView(*p))
}

func (s *Server) handleSubmitPropertyRegistration(w http.ResponseWriter, r *http.Request) {
	var req propertyreg.SubmitRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	reg, err := s.propRegs.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyRegistrationView(*reg))
}

func (s *Server) handleCityInvestment(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	ci, err := s.insights.CityInvestmentInfo(r.Context(), city)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ci == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no investment information available"))
		return
	}
	writeJSON(w, http.StatusOK, toCityInsightView(*ci))
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.agents.List(r.Context(), true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": toAgentViews(agents)})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	a, err := s.agents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentView(*a))
}

func (s *Server) handleSubmitAgentRegistration(w http.ResponseWriter, r *http.Request) {
	var req agentreg.SubmitRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	reg, err := s.agentRegs.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgentRegistrationView(*reg))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req portal.LoginRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	result, err := s.identity.Login(r.Context(), s.pool, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user": map[string]any{
			"id":       result.User.ID,
			"login":    result.User.Login,
			"name":     result.User.Name,
			"role":     result.User.Role,
			"agent_id": result.User.AgentID,
		},
	})
}
