package api

import (
	"net/http"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/services/notifications"
)

// GetNotifications lists the user's notifications newest first; unread=true
// keeps only unread ones.
func (api *API) GetNotifications(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	unreadOnly := false
	if unread := parseUrlQueryToBool(r.URL.Query().Get("unread")); unread != nil {
		unreadOnly = *unread
	}

	list, err := notifications.GetNotifications(r.Context(), api.Db, user.Username, unreadOnly)
	if err != nil {
		respondWithServiceError(w, logger, notifications.ErrorMap, err, "Failed to get notifications")
		return
	}

	unreadCount, err := notifications.UnreadCount(r.Context(), api.Db, user.Username)
	if err != nil {
		respondWithServiceError(w, logger, notifications.ErrorMap, err, "Failed to count notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, notifications.NotificationsResponse{
		Notifications: list,
		UnreadCount:   unreadCount,
	})
}

func (api *API) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req notifications.MarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}

	updated, err := notifications.MarkRead(r.Context(), api.Db, user.Username, req)
	if err != nil {
		respondWithServiceError(w, logger, notifications.ErrorMap, err, "Failed to mark notifications read")
		return
	}

	respondWithJSON(w, http.StatusOK, notifications.MarkReadResponse{Updated: updated})
}

func (api *API) Broadcast(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	var req notifications.BroadcastRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}

	notified, err := notifications.Broadcast(r.Context(), api.Db, api.Pool, req)
	if err != nil {
		respondWithServiceError(w, logger, notifications.ErrorMap, err, "Failed to send announcement")
		return
	}

	respondWithJSON(w, http.StatusOK, notifications.BroadcastResponse{Notified: notified})
}
