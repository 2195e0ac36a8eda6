package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/services"
)

type ICalHandler struct {
	accountService *services.AccountService
	mealCalendar   *services.MealCalendar
}

func NewICalHandler(accountService *services.AccountService, mealCalendar *services.MealCalendar) *ICalHandler {
	return &ICalHandler{
		accountService: accountService,
		mealCalendar:   mealCalendar,
	}
}

// Feed serves the meal schedule to calendar clients, which can only pass
// credentials in the query string.
func (handler *ICalHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user, err := handler.accountService.Authenticate(r.Context(), r.URL.Query().Get("token"), models.TokenScopeICal)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	feed, err := handler.mealCalendar.Render(r.Context(), user.ID)
	if errors.Is(err, services.ErrProfileNotFound) {
		http.Error(w, "No diet plan yet", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("rendering meal calendar", "error", err, "user_id", user.ID)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=berry-meals.ics")
	w.Write([]byte(feed))
}
