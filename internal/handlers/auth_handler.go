package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abusesystem/backend/internal/middleware"
	"github.com/abusesystem/backend/internal/models"
	"github.com/abusesystem/backend/internal/services"
)

type AuthHandler struct {
	staffService  *services.StaffService
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthHandler(staffService *services.StaffService, jwtSecret string, jwtExpiration time.Duration) *AuthHandler {
	return &AuthHandler{
		staffService:  staffService,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	staff, err := h.staffService.Register(&req)
	if err != nil {
		if err == services.ErrNameExists {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Name already registered"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create staff account"))
		return
	}

	token, err := h.generateToken(staff.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.StaffAuthResponse{
		Token: token,
		Staff: *staff,
	}))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	staff, err := h.staffService.Login(&req)
	if err != nil {
		if err == services.ErrStaffNotFound || err == services.ErrInvalidPassword {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid name or password"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Login failed"))
		return
	}

	token, err := h.generateToken(staff.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.StaffAuthResponse{
		Token: token,
		Staff: *staff,
	}))
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetStaffID(r.Context())
	if staffID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	staff, err := h.staffService.GetByID(staffID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Staff account not found"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(staff))
}

func (h *AuthHandler) generateToken(staffID string) (string, error) {
	claims := jwt.MapClaims{
		"staff_id": staffID,
		"exp":      time.Now().Add(h.jwtExpiration).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
