package tickets

import "time"

type Ticket struct {
	Id        string           `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Subject   string           `json:"subject"`
	Message   string           `json:"message"`
	Status    string           `json:"status"`
	Responses []TicketResponse `json:"responses"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type TicketResponse struct {
	AdminUsername string    `json:"adminUsername"`
	ResponseText  string    `json:"responseText"`
	RespondedAt   time.Time `json:"respondedAt"`
}

// CreateTicketRequest carries the ticket form. Username and Email are filled
// from the authenticated user when the form leaves them empty.
type CreateTicketRequest struct {
	Username string `json:"-" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Message  string `json:"message" validate:"required,max=5000"`
}

type CreateTicketResponse struct {
	Id string `json:"id"`
}

type RespondRequest struct {
	ResponseText string `json:"responseText" validate:"required,max=5000"`
}

type StatusResponse struct {
	Updated bool `json:"updated"`
}
