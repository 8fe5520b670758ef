package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
	"github.com/MikeSquared-Agency/annotator/internal/export"
	"github.com/MikeSquared-Agency/annotator/internal/session"
)

// OpenRequest starts a session over a dataset file.
type OpenRequest struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path,omitempty"` // empty rewrites the input in place
}

// SubmitRequest is posted for a row. Action "navigate" only moves to
// GotoRow; anything else saves Labels.
type SubmitRequest struct {
	Action  string          `json:"action"`
	Labels  []dataset.Label `json:"labels"`
	GotoRow *int            `json:"goto_row,omitempty"`
}

const (
	actionSave     = "save"
	actionNavigate = "navigate"
)

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.manager.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// openSession handles POST /api/v1/sessions
func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.InputPath == "" {
		writeError(w, http.StatusBadRequest, "input_path is required")
		return
	}

	sess, err := s.manager.Open(req.InputPath, req.OutputPath)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Summary())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Summary())
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.manager.Close(id); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// serveCurrent handles GET .../rows/current
func (s *Server) serveCurrent(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := s.manager.Serve(id, nil)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// serveRow handles GET .../rows/{row}
func (s *Server) serveRow(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	row, ok := rowParam(w, r)
	if !ok {
		return
	}
	view, err := s.manager.Serve(id, &row)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// submitRow handles POST .../rows/{row}
func (s *Server) submitRow(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	row, ok := rowParam(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	switch req.Action {
	case actionNavigate:
		if req.GotoRow == nil {
			writeError(w, http.StatusBadRequest, "goto_row is required for navigate")
			return
		}
		res, err := s.manager.Navigate(id, *req.GotoRow)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case "", actionSave:
		res, err := s.manager.Save(r.Context(), id, row, req.Labels)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
	}
}

// exportSession handles GET .../export.xlsx
func (s *Server) exportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="session-%s.xlsx"`, sess.ID()))
	if err := export.WriteWorkbook(w, sess.Records()); err != nil {
		slog.Error("export failed", "session_id", sess.ID(), "error", err)
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, ok := sessionID(w, r)
	if !ok {
		return nil, false
	}
	sess, err := s.manager.Get(id)
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid session id: %v", err))
		return uuid.Nil, false
	}
	return id, true
}

func rowParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid row: %v", err))
		return 0, false
	}
	return row, true
}

// writeSessionError maps the error taxonomy onto HTTP status codes.
func writeSessionError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrUnknownSession):
		code = http.StatusNotFound
	case errors.Is(err, dataset.ErrOutOfRange):
		code = http.StatusBadRequest
	case errors.Is(err, dataset.ErrConfig):
		code = http.StatusBadRequest
	case errors.Is(err, dataset.ErrParse):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, dataset.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, dataset.ErrStorage):
		code = http.StatusInternalServerError
	}
	writeError(w, code, err.Error())
}
