package tickets

import (
	"context"
	"strings"
	"testing"

	"github.com/lealre/moviereviews/internal/memstore"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/stretchr/testify/require"
)

func openTicket(t *testing.T, store *memstore.Store, username, subject string) string {
	t.Helper()
	id, err := CreateTicket(context.Background(), store, CreateTicketRequest{
		Username: username,
		Email:    username + "@example.com",
		Subject:  subject,
		Message:  "It does not work",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func TestCreateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("New tickets are open without responses", func(t *testing.T) {
		store := memstore.New()
		id := openTicket(t, store, "carol", "Login broken")

		ticket, err := GetTicket(ctx, store, id)
		require.NoError(t, err)
		require.Equal(t, mongodb.TicketStatusOpen, ticket.Status)
		require.Empty(t, ticket.Responses)
		require.Equal(t, "carol", ticket.Username)
	})

	t.Run("Validation cases", func(t *testing.T) {
		store := memstore.New()

		cases := []CreateTicketRequest{
			{Username: "carol", Message: "no subject"},
			{Username: "carol", Subject: "no message"},
			{Username: "carol", Subject: "s", Message: "m", Email: "not-an-email"},
			{Subject: "s", Message: "m"},
		}
		for _, req := range cases {
			_, err := CreateTicket(ctx, store, req)
			require.ErrorIs(t, err, ErrInvalidTicket)
		}
	})
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	t.Run("Response moves the ticket to in_progress and notifies the submitter", func(t *testing.T) {
		store := memstore.New()
		id := openTicket(t, store, "carol", "Login broken")
		text := strings.Repeat("a", 150)

		updated, err := Respond(ctx, store, id, "admin", RespondRequest{ResponseText: text})
		require.NoError(t, err)
		require.True(t, updated)

		ticket, err := GetTicket(ctx, store, id)
		require.NoError(t, err)
		require.Equal(t, mongodb.TicketStatusInProgress, ticket.Status)
		require.Len(t, ticket.Responses, 1)
		require.Equal(t, "admin", ticket.Responses[0].AdminUsername)
		require.Equal(t, text, ticket.Responses[0].ResponseText)

		ns, err := store.GetNotificationsByUser(ctx, "carol", true)
		require.NoError(t, err)
		require.Len(t, ns, 1)
		require.Equal(t, mongodb.NotificationTypeSupportResponse, ns[0].Type)
		require.Equal(t, "Support Response: Login broken", ns[0].Title)
		require.Equal(t, strings.Repeat("a", 100)+"...", ns[0].Message)
		require.Equal(t, id, ns[0].TicketId)
	})

	t.Run("Short responses are not truncated", func(t *testing.T) {
		store := memstore.New()
		id := openTicket(t, store, "carol", "Question")

		_, err := Respond(ctx, store, id, "admin", RespondRequest{ResponseText: "Fixed"})
		require.NoError(t, err)

		ns, err := store.GetNotificationsByUser(ctx, "carol", true)
		require.NoError(t, err)
		require.Len(t, ns, 1)
		require.Equal(t, "Fixed", ns[0].Message)
	})

	t.Run("A failed notification keeps the response", func(t *testing.T) {
		store := memstore.New()
		id := openTicket(t, store, "carol", "Login broken")
		store.SetFault(func(op, key string) error {
			if op == "AddNotification" {
				return mongodb.ErrStoreUnavailable
			}
			return nil
		})

		updated, err := Respond(ctx, store, id, "admin", RespondRequest{ResponseText: "On it"})
		require.NoError(t, err)
		require.True(t, updated)

		ticket, err := GetTicket(ctx, store, id)
		require.NoError(t, err)
		require.Len(t, ticket.Responses, 1)
	})

	t.Run("Error cases", func(t *testing.T) {
		store := memstore.New()
		id := openTicket(t, store, "carol", "Login broken")

		_, err := Respond(ctx, store, "missing", "admin", RespondRequest{ResponseText: "x"})
		require.ErrorIs(t, err, ErrTicketNotFound)
		_, err = Respond(ctx, store, id, "admin", RespondRequest{})
		require.ErrorIs(t, err, ErrInvalidResponse)
		_, err = Respond(ctx, store, id, "", RespondRequest{ResponseText: "x"})
		require.ErrorIs(t, err, ErrAdminUsernameMissing)
	})
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	id := openTicket(t, store, "carol", "Login broken")

	updated, err := Resolve(ctx, store, id)
	require.NoError(t, err)
	require.True(t, updated)

	ticket, err := GetTicket(ctx, store, id)
	require.NoError(t, err)
	require.Equal(t, mongodb.TicketStatusResolved, ticket.Status)

	updated, err = Close(ctx, store, id)
	require.NoError(t, err)
	require.True(t, updated)

	updated, err = Close(ctx, store, id)
	require.NoError(t, err)
	require.True(t, updated, "closing twice still matches the ticket")

	_, err = Close(ctx, store, "missing")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestGetTickets(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	first := openTicket(t, store, "carol", "First")
	openTicket(t, store, "dave", "Second")
	openTicket(t, store, "carol", "Third")

	_, err := Close(ctx, store, first)
	require.NoError(t, err)

	all, err := GetTickets(ctx, store, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Third", all[0].Subject)

	open, err := GetTickets(ctx, store, mongodb.TicketStatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 2)

	_, err = GetTickets(ctx, store, "pending")
	require.ErrorIs(t, err, ErrInvalidStatusFilter)

	mine, err := GetUserTickets(ctx, store, "carol")
	require.NoError(t, err)
	require.Len(t, mine, 2)
}
