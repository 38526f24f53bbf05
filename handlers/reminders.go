package handlers

import (
	"encoding/json"
	"net/http"
	"rabbit-bot/middleware"
	"rabbit-bot/models"
	"rabbit-bot/reminders"
	"strconv"

	"github.com/rs/zerolog/log"
)

type ReminderHandler struct {
	reminders *reminders.Service
}

func NewReminderHandler(svc *reminders.Service) *ReminderHandler {
	return &ReminderHandler{reminders: svc}
}

// List returns all reminders, or one channel's with ?channel=<id>.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.Reminder
		err  error
	)
	if raw := r.URL.Query().Get("channel"); raw != "" {
		channel, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			http.Error(w, "Invalid channel id", http.StatusBadRequest)
			return
		}
		list, err = h.reminders.ListForChannel(r.Context(), channel)
	} else {
		list, err = h.reminders.All(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Str("component", "http").Str("subject", middleware.GetSubject(r)).Msg("failed to load reminders")
		http.Error(w, "Failed to fetch reminders", http.StatusInternalServerError)
		return
	}

	if list == nil {
		list = []models.Reminder{}
	}
	log.Debug().Str("component", "http").Str("subject", middleware.GetSubject(r)).Int("count", len(list)).Msg("reminders listed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
