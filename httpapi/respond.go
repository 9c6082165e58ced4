package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"estately/agent"
	"estately/agentreg"
	"estately/portal"
	"estately/property"
	"estately/propertyreg"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError translates domain sentinels into HTTP statuses. Anything
// unrecognized is an internal error and its detail stays in the log.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, agentreg.ErrRegistrationNotFound),
		errors.Is(err, propertyreg.ErrRegistrationNotFound),
		errors.Is(err, property.ErrPropertyNotFound),
		errors.Is(err, agent.ErrAgentNotFound),
		errors.Is(err, portal.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, agentreg.ErrAlreadyApproved),
		errors.Is(err, agentreg.ErrAlreadyRejected),
		errors.Is(err, propertyreg.ErrAlreadyApproved),
		errors.Is(err, propertyreg.ErrAlreadyRejected),
		errors.Is(err, agentreg.ErrDuplicateOpen),
		errors.Is(err, agent.ErrDuplicateEmail),
		errors.Is(err, portal.ErrDuplicateLogin):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, agentreg.ErrReasonRequired),
		errors.Is(err, propertyreg.ErrReasonRequired),
		errors.Is(err, agentreg.ErrInvalidSubmission),
		errors.Is(err, propertyreg.ErrInvalidSubmission),
		errors.Is(err, property.ErrInvalidInput),
		errors.Is(err, property.ErrInvalidStatus),
		errors.Is(err, portal.ErrWeakPassword):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, portal.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody(err.Error()))
	case errors.Is(err, property.ErrNotOwner),
		errors.Is(err, portal.ErrInactiveUser):
		writeJSON(w, http.StatusForbidden, errorBody(err.Error()))
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) badRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
}
