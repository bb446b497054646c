package tickets

import (
	"context"
	"errors"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/metrics"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/services/notifications"
	"go.uber.org/zap"
)

// CreateTicket opens a new support ticket and returns its id.
func CreateTicket(ctx context.Context, db mongodb.TicketStore, req CreateTicketRequest) (string, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return "", ErrInvalidTicket
	}

	ticket, err := db.AddTicket(ctx, mongodb.TicketDb{
		Username: req.Username,
		Email:    req.Email,
		Subject:  req.Subject,
		Message:  req.Message,
	})
	if err != nil {
		return "", err
	}

	metrics.NewMetrics().TicketTransitions.WithLabelValues(mongodb.TicketStatusOpen).Inc()
	logx.FromContext(ctx).Info("support ticket created",
		zap.String("ticketId", ticket.Id),
		zap.String("username", ticket.Username),
	)

	return ticket.Id, nil
}

/*
Respond appends an admin response to the ticket and moves it to in_progress,
then notifies the ticket's submitter with a support_response notification.

The response is kept even when the notification cannot be written; that
failure is only logged.
*/
func Respond(ctx context.Context, db mongodb.Store, ticketId, adminUsername string, req RespondRequest) (bool, error) {
	if adminUsername == "" {
		return false, ErrAdminUsernameMissing
	}
	if err := validate.StructCtx(ctx, req); err != nil {
		return false, ErrInvalidResponse
	}

	logger := logx.FromContext(ctx).With(zap.String("ticketId", ticketId))

	ticket, err := getTicket(ctx, db, ticketId)
	if err != nil {
		return false, err
	}

	updated, err := db.AddTicketResponse(ctx, ticketId, mongodb.TicketResponseDb{
		AdminUsername: adminUsername,
		ResponseText:  req.ResponseText,
	})
	if err != nil {
		return false, err
	}
	if !updated {
		return false, ErrTicketNotFound
	}
	metrics.NewMetrics().TicketTransitions.WithLabelValues(mongodb.TicketStatusInProgress).Inc()

	_, err = notifications.Notify(ctx, db, mongodb.NotificationDb{
		Username:      ticket.Username,
		Type:          mongodb.NotificationTypeSupportResponse,
		Title:         "Support Response: " + ticket.Subject,
		Message:       preview(req.ResponseText),
		TicketId:      ticket.Id,
		TicketSubject: ticket.Subject,
	})
	if err != nil {
		logger.Warn("could not notify ticket submitter", zap.Error(err))
	}

	logger.Info("support ticket answered", zap.String("admin", adminUsername))
	return true, nil
}

// Close marks the ticket closed whatever its current status. Closing an
// already closed ticket succeeds and changes nothing but updatedAt.
func Close(ctx context.Context, db mongodb.TicketStore, ticketId string) (bool, error) {
	return setStatus(ctx, db, ticketId, mongodb.TicketStatusClosed)
}

// Resolve marks the ticket resolved whatever its current status.
func Resolve(ctx context.Context, db mongodb.TicketStore, ticketId string) (bool, error) {
	return setStatus(ctx, db, ticketId, mongodb.TicketStatusResolved)
}

func setStatus(ctx context.Context, db mongodb.TicketStore, ticketId, status string) (bool, error) {
	matched, err := db.SetTicketStatus(ctx, ticketId, status)
	if err != nil {
		return false, err
	}
	if !matched {
		return false, ErrTicketNotFound
	}

	metrics.NewMetrics().TicketTransitions.WithLabelValues(status).Inc()
	logx.FromContext(ctx).Info("support ticket status changed",
		zap.String("ticketId", ticketId),
		zap.String("status", status),
	)
	return true, nil
}

func GetTicket(ctx context.Context, db mongodb.TicketStore, ticketId string) (Ticket, error) {
	ticket, err := getTicket(ctx, db, ticketId)
	if err != nil {
		return Ticket{}, err
	}
	return MapDbTicketToApiTicket(ticket), nil
}

func getTicket(ctx context.Context, db mongodb.TicketStore, ticketId string) (mongodb.TicketDb, error) {
	ticket, err := db.GetTicketById(ctx, ticketId)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return mongodb.TicketDb{}, ErrTicketNotFound
		}
		return mongodb.TicketDb{}, err
	}
	return ticket, nil
}

// GetTickets lists tickets newest first, optionally only those in status.
func GetTickets(ctx context.Context, db mongodb.TicketStore, status string) ([]Ticket, error) {
	if status != "" && !validStatus(status) {
		return []Ticket{}, ErrInvalidStatusFilter
	}

	ticketsDb, err := db.GetTickets(ctx, status)
	return mapTickets(ctx, ticketsDb, err)
}

func GetUserTickets(ctx context.Context, db mongodb.TicketStore, username string) ([]Ticket, error) {
	ticketsDb, err := db.GetTicketsByUser(ctx, username)
	return mapTickets(ctx, ticketsDb, err)
}

func mapTickets(ctx context.Context, ticketsDb []mongodb.TicketDb, err error) ([]Ticket, error) {
	if err != nil {
		if errors.Is(err, mongodb.ErrStoreUnavailable) {
			logx.FromContext(ctx).Warn("tickets unavailable, returning empty list", zap.Error(err))
			return []Ticket{}, nil
		}
		return []Ticket{}, err
	}

	tickets := make([]Ticket, 0, len(ticketsDb))
	for _, t := range ticketsDb {
		tickets = append(tickets, MapDbTicketToApiTicket(t))
	}
	return tickets, nil
}
