package tickets

import "github.com/lealre/moviereviews/internal/mongodb"

func MapDbTicketToApiTicket(t mongodb.TicketDb) Ticket {
	responses := make([]TicketResponse, 0, len(t.Responses))
	for _, r := range t.Responses {
		responses = append(responses, TicketResponse{
			AdminUsername: r.AdminUsername,
			ResponseText:  r.ResponseText,
			RespondedAt:   r.RespondedAt,
		})
	}

	return Ticket{
		Id:        t.Id,
		Username:  t.Username,
		Email:     t.Email,
		Subject:   t.Subject,
		Message:   t.Message,
		Status:    t.Status,
		Responses: responses,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
