package web

import (
	"net/http"

	"odincal/internal/model"
	"odincal/internal/planner"
)

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.List(r.Context())
	if err != nil {
		writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

type idResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var a model.Activity
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	id, err := s.events.Add(r.Context(), a)
	if err != nil {
		writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

type sharedRequest struct {
	Activity     model.Activity `json:"activity"`
	CharacterIDs []string       `json:"characterIds"`
}

type idsResponse struct {
	IDs []string `json:"ids"`
}

// handleAddShared stores one copy of the activity per selected character.
func (s *Server) handleAddShared(w http.ResponseWriter, r *http.Request) {
	var req sharedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	ids, err := s.events.AddShared(r.Context(), req.Activity, req.CharacterIDs)
	if err != nil {
		writePlannerError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusCreated, idsResponse{IDs: ids})
}

func (s *Server) handleResetGlobal(w http.ResponseWriter, r *http.Request) {
	if err := s.events.ResetGlobal(r.Context(), s.now()); err != nil {
		writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetActivity accepts definition, occurrence or segment ids.
func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	a, ok, err := s.events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writePlannerError(w, err)
		return
	}
	if !ok {
		writePlannerError(w, planner.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.In(s.loc))
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	var p planner.ActivityPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	id := model.BaseID(r.PathValue("id"))
	if err := s.events.Update(r.Context(), id, p); err != nil {
		writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id := model.BaseID(r.PathValue("id"))
	if err := s.events.Delete(r.Context(), id); err != nil {
		writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
