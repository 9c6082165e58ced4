package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"estately/agentreg"
	"estately/property"
	"estately/propertyreg"
)

func (s *Server) handleListAgentRegistrations(w http.ResponseWriter, r *http.Request) {
	status := agentreg.Status(r.URL.Query().Get("status"))
	regs, err := s.agentRegs.List(r.Context(), status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]agentRegistrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, toAgentRegistrationView(reg))
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": views})
}

func (s *Server) handleGetAgentRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := s.agentRegs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentRegistrationView(*reg))
}

func (s *Server) handleStartReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.agentRegs.StartReview(r.Context(), id, userID(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApproveAgentRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	created, err := s.agentRegs.Approve(r.Context(), id, userID(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentView(*created))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRejectAgentRegistration(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.agentRegs.Reject(r.Context(), id, userID(r.Context()), req.Reason); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPropertyRegistrations(w http.ResponseWriter, r *http.Request) {
	status := propertyreg.Status(r.URL.Query().Get("status"))
	regs, err := s.propRegs.List(r.Context(), status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]propertyRegistrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, toPropertyRegistrationView(reg))
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": views})
}

func (s *Server) handleGetPropertyRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := s.propRegs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyRegistrationView(*reg))
}

type approvePropertyRequest struct {
	Publish bool `json:"publish"`
}

func (s *Server) handleApprovePropertyRegistration(w http.ResponseWriter, r *http.Request) {
	var req approvePropertyRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			s.badRequest(w)
			return
		}
	}
	id := chi.URLParam(r, "id")
	created, err := s.propRegs.Approve(r.Context(), id, userID(r.Context()), req.Publish)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyView(*created))
}

func (s *Server) handleRejectPropertyRegistration(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.propRegs.Reject(r.Context(), id, userID(r.Context()), req.Reason); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// adminPropertyPatch extends the partial update with the two staff-only
// toggles.
type adminPropertyPatch struct {
	property.UpdateRequest
	Status      *string `json:"status"`
	IsPublished *bool   `json:"is_published"`
}

func (s *Server) handleRegenerateContent(w http.ResponseWriter, r *http.Request) {
	generated, err := s.insights.GenerateContent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"generated": generated})
}

func (s *Server) handleAdminUpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req adminPropertyPatch
	if err := decode(r, &req); err != nil {
		s.badRequest(w)
		return
	}
	id := chi.URLParam(r, "id")
	actor := userID(r.Context())

	if _, err := s.listings.Update(r.Context(), id, req.UpdateRequest); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Status != nil {
		if err := s.listings.SetStatus(r.Context(), id, property.Status(*req.Status), actor, nil); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.IsPublished != nil {
		if err := s.listings.SetPublished(r.Context(), id, *req.IsPublished, actor); err != nil {
			s.writeError(w, err)
			return
		}
	}

	p, err := s.listings.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyView(*p))
}
