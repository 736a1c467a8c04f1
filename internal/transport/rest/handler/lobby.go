package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lection/internal/model"
	"lection/internal/repository"
	"lection/internal/service"
	"lection/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// LobbyHandler handles the lobby lifecycle endpoints
type LobbyHandler struct {
	lobbySvc  *service.LobbyService
	statsRepo repository.StatsRepo
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobbySvc *service.LobbyService, statsRepo repository.StatsRepo) *LobbyHandler {
	return &LobbyHandler{
		lobbySvc:  lobbySvc,
		statsRepo: statsRepo,
	}
}

// CreateLobbyRequest is the request body for creating a lobby
type CreateLobbyRequest struct {
	Group           string                `json:"group"`
	MembershipLevel model.MembershipLevel `json:"lobbyMembershipLevel"`
}

// JoinRequest is the request body for joining a lobby
type JoinRequest struct {
	Name   string `json:"name"`
	UserID string `json:"userid"`
}

// PromptRequest is the request body for a host prompt submission
type PromptRequest struct {
	Prompt any `json:"prompt"`
}

// Create handles POST /v1/lobbies
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	joincode, err := h.lobbySvc.Create(r.Context(), model.LobbyInit{
		HostID:          hostID,
		Group:           req.Group,
		MembershipLevel: req.MembershipLevel,
	})
	if err != nil {
		if errors.Is(err, service.ErrCodeSpaceExhausted) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create lobby")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"joincode": joincode})
}

// Join handles POST /v1/lobbies/{joincode}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	joincode, ok := joinCodeVar(w, r)
	if !ok {
		return
	}

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.lobbySvc.Join(r.Context(), joincode, req.Name, req.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, model.JoinResult{Joined: false, Message: "server error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SubmitResponse handles POST /v1/lobbies/{joincode}/responses/{userid}
func (h *LobbyHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	joincode, ok := joinCodeVar(w, r)
	if !ok {
		return
	}
	userid := mux.Vars(r)["userid"]

	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.lobbySvc.SubmitResponse(r.Context(), joincode, userid, payload); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to submit response")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// SubmitPrompt handles POST /v1/lobbies/{joincode}/prompts
func (h *LobbyHandler) SubmitPrompt(w http.ResponseWriter, r *http.Request) {
	joincode, ok := joinCodeVar(w, r)
	if !ok {
		return
	}

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.lobbySvc.SubmitPrompt(r.Context(), joincode, req.Prompt); err != nil {
		if errors.Is(err, service.ErrLobbyNotFound) {
			writeError(w, http.StatusNotFound, "lobby not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to submit prompt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// Close handles POST /v1/lobbies/{joincode}/close
func (h *LobbyHandler) Close(w http.ResponseWriter, r *http.Request) {
	joincode, ok := joinCodeVar(w, r)
	if !ok {
		return
	}

	if err := h.lobbySvc.Close(r.Context(), joincode); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to close lobby")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "lobby closed"})
}

// ActiveCount handles GET /v1/stats/active
func (h *LobbyHandler) ActiveCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.statsRepo.ActiveCount(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read active count")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func joinCodeVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	joincode, err := strconv.Atoi(mux.Vars(r)["joincode"])
	if err != nil || joincode < 0 || joincode >= 1000000 {
		writeError(w, http.StatusBadRequest, "invalid join code")
		return 0, false
	}
	return joincode, true
}
