// internal/api/errors.go
package api

import (
	"encoding/json"
	"net/http"

	apperrors "culturis/internal/common/errors"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err as {"detail": ...}. Upstream failures also carry
// the recommendation API status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se := apperrors.AsStandardError(err)
	status := apperrors.HTTPStatus(err)

	resp := ErrorResponse{Detail: se.Message}
	if se.Code != apperrors.ErrCodeValidation && se.Details != "" {
		resp.Detail = se.Message + ": " + se.Details
	}
	if se.Code == apperrors.ErrCodeUpstreamAPIFailed {
		upstream := apperrors.UpstreamStatus(err)
		resp.UpstreamStatus = &upstream
	}

	fields := map[string]interface{}{
		"path":   r.URL.Path,
		"status": status,
		"code":   se.Code,
		"error":  err.Error(),
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithContext(r.Context()).Error("request failed", fields)
	} else {
		s.logger.WithContext(r.Context()).Warn("request rejected", fields)
	}

	writeJSON(w, status, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, r, apperrors.NewValidationError("Invalid request body: "+err.Error()))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeError(w, r, apperrors.NewValidationError(err.Error()))
		return false
	}
	return true
}
