package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abusesystem/backend/internal/middleware"
	"github.com/abusesystem/backend/internal/models"
	"github.com/abusesystem/backend/internal/services"
)

type PunishHandler struct {
	punisher    *services.PunishmentService
	staff       *services.StaffService
	users       services.UserStore
	points      services.PointsStore
	templates   services.TemplateStore
	punishments services.PunishmentStore
}

func NewPunishHandler(punisher *services.PunishmentService, staff *services.StaffService, users services.UserStore, points services.PointsStore, templates services.TemplateStore, punishments services.PunishmentStore) *PunishHandler {
	return &PunishHandler{
		punisher:    punisher,
		staff:       staff,
		users:       users,
		points:      points,
		templates:   templates,
		punishments: punishments,
	}
}

// Punish records an infraction against a player and issues the escalated
// punishment, if the player's points reach a template threshold.
func (h *PunishHandler) Punish(w http.ResponseWriter, r *http.Request) {
	var req models.PunishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	staffID := middleware.GetStaffID(r.Context())
	staff, err := h.staff.GetByID(staffID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.punisher.Punish(ctx, req.Player, staff.PlayerUUID, req.Reason, req.Evidence)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPlayer):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("This player does not exist"))
		case errors.Is(err, services.ErrUnknownReason):
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("This reason does not exist"))
		case errors.Is(err, services.ErrAlreadyBanned):
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("This player is already banned"))
		case errors.Is(err, services.ErrAlreadyMuted):
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("This player is already muted"))
		default:
			log.Printf("[punish] issue failed player=%s reason=%s err=%v", req.Player, req.Reason, err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to issue punishment"))
		}
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(result))
}

// ListReasons returns the offense categories punishments can be issued for.
func (h *PunishHandler) ListReasons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reasons, err := h.templates.ListReasons(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list reasons"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(reasons))
}

// ListPunishments returns a player's punishment history, newest first.
func (h *PunishHandler) ListPunishments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.FindByLatestName(ctx, chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to look up player"))
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("This player does not exist"))
		return
	}

	punishments, err := h.punishments.ListByPlayer(ctx, user.UUID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list punishments"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(punishments))
}

// GetPoints returns a player's accumulated points for one reason.
func (h *PunishHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("reason query parameter is required"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.FindByLatestName(ctx, chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to look up player"))
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("This player does not exist"))
		return
	}

	points, err := h.points.Get(ctx, user.UUID, reason)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to read points"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"player": user.LatestName,
		"reason": reason,
		"points": points,
	}))
}
