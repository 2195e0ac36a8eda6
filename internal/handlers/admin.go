package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/repository"
	"github.com/glassolution/berry/internal/services"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	userRepo       repository.UserRepository
	settingsRepo   repository.SettingsRepository
	accountService *services.AccountService
}

func NewAdminHandler(
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	accountService *services.AccountService,
) *AdminHandler {
	return &AdminHandler{
		userRepo:       userRepo,
		settingsRepo:   settingsRepo,
		accountService: accountService,
	}
}

func (handler *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := handler.userRepo.FindAll(r.Context())
	if err != nil {
		slog.Error("finding users", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load users"})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func (handler *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var request createUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	user, err := handler.accountService.CreateUser(r.Context(), request.Name, request.Email, request.Role)
	if err != nil {
		writeServiceError(w, "creating user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type updateRoleRequest struct {
	Role models.Role `json:"role"`
}

func (handler *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var request updateRoleRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	user, err := handler.accountService.SetRole(r.Context(), chi.URLParam(r, "id"), request.Role)
	if err != nil {
		writeServiceError(w, "updating role", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type settingsRequest struct {
	CalendarName *string `json:"calendar_name"`
}

func (handler *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var request settingsRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if request.CalendarName != nil {
		name := strings.TrimSpace(*request.CalendarName)
		if name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "calendar_name must not be blank"})
			return
		}
		if err := handler.settingsRepo.Set(r.Context(), repository.SettingCalendarName, name); err != nil {
			slog.Error("updating settings", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}
