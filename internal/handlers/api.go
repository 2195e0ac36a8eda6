package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/glassolution/berry/internal/dietplan"
	"github.com/glassolution/berry/internal/middleware"
	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/repository"
	"github.com/glassolution/berry/internal/services"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type APIHandler struct {
	dietService    *services.DietService
	accountService *services.AccountService
	tokenRepo      repository.APITokenRepository
}

func NewAPIHandler(
	dietService *services.DietService,
	accountService *services.AccountService,
	tokenRepo repository.APITokenRepository,
) *APIHandler {
	return &APIHandler{
		dietService:    dietService,
		accountService: accountService,
		tokenRepo:      tokenRepo,
	}
}

func (handler *APIHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	profile, err := handler.dietService.Profile(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "loading profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (handler *APIHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var input services.ProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	profile, err := handler.dietService.SaveProfile(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, "saving profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (handler *APIHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	plan, err := handler.dietService.CurrentPlan(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "loading plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (handler *APIHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	plan, err := handler.dietService.GeneratePlan(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "generating plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (handler *APIHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	category := dietplan.Category(r.URL.Query().Get("category"))
	if category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		return
	}

	options, err := handler.dietService.FoodOptions(r.Context(), user.ID, category)
	if err != nil {
		writeServiceError(w, "listing foods", err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

type replaceItemRequest struct {
	FoodID string `json:"food_id"`
}

func (handler *APIHandler) ReplaceItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	mealIndex, err := strconv.Atoi(chi.URLParam(r, "meal"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "meal must be an index"})
		return
	}
	itemIndex, err := strconv.Atoi(chi.URLParam(r, "item"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item must be an index"})
		return
	}

	var request replaceItemRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.FoodID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "food_id is required"})
		return
	}

	plan, err := handler.dietService.ReplaceItem(r.Context(), user.ID, mealIndex, itemIndex, request.FoodID)
	if err != nil {
		writeServiceError(w, "replacing meal item", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (handler *APIHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokens, err := handler.tokenRepo.FindByUserID(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "listing tokens", err)
		return
	}
	if tokens == nil {
		tokens = []models.APIToken{}
	}
	writeJSON(w, http.StatusOK, tokens)
}

type createTokenRequest struct {
	Name          string            `json:"name"`
	Scope         models.TokenScope `json:"scope"`
	ExpiresInDays int               `json:"expires_in_days"`
}

func (handler *APIHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request createTokenRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.ExpiresInDays < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expires_in_days must not be negative"})
		return
	}

	created, rawToken, err := handler.accountService.IssueToken(
		r.Context(), user, request.Name, request.Scope, time.Duration(request.ExpiresInDays)*24*time.Hour,
	)
	if err != nil {
		writeServiceError(w, "creating token", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         created.ID,
		"name":       created.Name,
		"scope":      created.Scope,
		"expires_at": created.ExpiresAt,
		"token":      rawToken,
	})
}

func (handler *APIHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := handler.accountService.RevokeToken(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "deleting token", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

// writeServiceError maps domain errors to statuses and logs anything unexpected.
func writeServiceError(w http.ResponseWriter, action string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrTokenNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, dietplan.ErrMealNotFound),
		errors.Is(err, dietplan.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, dietplan.ErrUnknownFood):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrFoodNotAllowed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		slog.Error(action, "error", err)
		writeJSON(w, status, map[string]string{"error": action + " failed"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
