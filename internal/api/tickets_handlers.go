package api

import (
	"context"
	"net/http"

	"github.com/lealre/moviereviews/internal/auth"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/services/tickets"
)

func (api *API) CreateTicket(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req tickets.CreateTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}
	req.Username = user.Username
	if req.Email == "" {
		req.Email = user.Email
	}

	id, err := tickets.CreateTicket(r.Context(), api.Db, req)
	if err != nil {
		respondWithServiceError(w, logger, tickets.ErrorMap, err, "Failed to create ticket")
		return
	}

	respondWithJSON(w, http.StatusCreated, tickets.CreateTicketResponse{Id: id})
}

func (api *API) GetUserTickets(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	list, err := tickets.GetUserTickets(r.Context(), api.Db, user.Username)
	if err != nil {
		respondWithServiceError(w, logger, tickets.ErrorMap, err, "Failed to list tickets")
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

// GetTickets is the admin listing; status filters when present.
func (api *API) GetTickets(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	list, err := tickets.GetTickets(r.Context(), api.Db, r.URL.Query().Get("status"))
	if err != nil {
		respondWithServiceError(w, logger, tickets.ErrorMap, err, "Failed to list tickets")
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

func (api *API) GetTicket(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	ticket, err := tickets.GetTicket(r.Context(), api.Db, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, logger, tickets.ErrorMap, err, "Failed to get ticket")
		return
	}

	respondWithJSON(w, http.StatusOK, ticket)
}

func (api *API) RespondToTicket(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	admin := auth.GetUserFromContext(r.Context())

	var req tickets.RespondRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}

	adminUsername := ""
	if admin != nil {
		adminUsername = admin.Username
	}

	updated, err := tickets.Respond(r.Context(), api.Db, r.PathValue("id"), adminUsername, req)
	if err != nil {
		respondWithServiceError(w, logger, tickets.ErrorMap, err, "Failed to respond to ticket")
		return
	}

	respondWithJSON(w, http.StatusOK, tickets.StatusResponse{Updated: updated})
}

func (api *API) CloseTicket(w http.ResponseWriter, r *http.Request) {
	api.setTicketStatus(w, r, tickets.Close)
}

func (api *API) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	api.setTicketStatus(w, r, tickets.Resolve)
}

func (api *API) setTicketStatus(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, db mongodb.TicketStore, ticketId string) (bool, error)) {
	logger := logx.FromContext(r.Context())

	updated, err := transition(r.Context(), api.Db, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, logger, tickets.ErrorMap, err, "Failed to update ticket")
		return
	}

	respondWithJSON(w, http.StatusOK, tickets.StatusResponse{Updated: updated})
}
