package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"estately/agent"
	"estately/property"
)

// profile resolves the agent behind the authenticated portal user.
func (s *Server) profile(r *http.Request) (*agent.Agent, error) {
	return s.agents.GetByPortalUser(r.Context(), userID(r.Context()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	a, err := s.profile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	props, err := s.listings.ListByAgent(r.Context(), a.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	counts := map[string]int{}
	var views int64
	for _, p := range props {
		counts[string(p.Status)]++
		views += p.Views
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":         toAgentView(*a),
		"properties":    toPropertyViews(props),
		"status_counts": counts,
		"total_views":   views,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	a, err := s.profile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req agent.UpdateProfileRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	updated, err := s.agents.UpdateProfile(r.Context(), a.ID, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentView(*updated))
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	if err := s.identity.SetPassword(r.Context(), s.pool, userID(r.Context()), req.Password); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePortalListProperties(w http.ResponseWriter, r *http.Request) {
	a, err := s.profile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	props, err := s.listings.ListByAgent(r.Context(), a.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": toPropertyViews(props)})
}

// handlePortalCreateProperty stores an agent submission. Listings always
// start unpublished; staff decide visibility.
func (s *Server) handlePortalCreateProperty(w http.ResponseWriter, r *http.Request) {
	a, err := s.profile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req property.CreateRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	created, err := s.listings.Create(r.Context(), req, &a.ID, false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyView(*created))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handlePortalSetStatus(w http.ResponseWriter, r *http.Request) {
	a, err := s.profile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req setStatusRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.listings.SetStatus(r.Context(), id, property.Status(req.Status), userID(r.Context()), &a.ID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
