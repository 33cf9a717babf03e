package web

import (
	"net/http"

	"odincal/internal/model"
	"odincal/internal/planner"
)

type accountsResponse struct {
	Accounts         []model.Account `json:"accounts"`
	CurrentAccountID string          `json:"currentAccountId"`
	MaxSubCharacters int             `json:"maxSubCharacters"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, current, err := s.roster.Accounts(r.Context())
	if err != nil {
		writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountsResponse{
		Accounts:         accounts,
		CurrentAccountID: current,
		MaxSubCharacters: s.roster.MaxSubCharacters(),
	})
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	id, err := s.roster.AddAccount(r.Context(), req.Name)
	if err != nil {
		writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleRenameAccount(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.roster.RenameAccount(r.Context(), r.PathValue("id"), req.Name); err != nil {
		writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSwitchAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.Switch(r.Context(), r.PathValue("id")); err != nil {
		writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCharacter(w http.ResponseWriter, r *http.Request) {
	var c model.Character
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	id, err := s.roster.AddCharacter(r.Context(), r.PathValue("id"), c)
	if err != nil {
		writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var p planner.CharacterPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.roster.UpdateCharacter(r.Context(), r.PathValue("id"), p); err != nil {
		writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.DeleteCharacter(r.Context(), r.PathValue("id")); err != nil {
		writePlannerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
