package memstore

import (
	"context"
	"time"

	"github.com/lealre/moviereviews/internal/mongodb"
)

func copyTicket(t mongodb.TicketDb) mongodb.TicketDb {
	t.Responses = append([]mongodb.TicketResponseDb{}, t.Responses...)
	return t
}

func (s *Store) AddTicket(ctx context.Context, ticket mongodb.TicketDb) (mongodb.TicketDb, error) {
	if err := s.check("AddTicket", ticket.Username); err != nil {
		return mongodb.TicketDb{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	ticket.Id = newId()
	ticket.Status = mongodb.TicketStatusOpen
	ticket.Responses = []mongodb.TicketResponseDb{}
	ticket.CreatedAt = ts
	ticket.UpdatedAt = ts
	s.tickets[ticket.Id] = &row[mongodb.TicketDb]{val: ticket, seq: s.next()}

	return copyTicket(ticket), nil
}

func (s *Store) GetTicketById(ctx context.Context, id string) (mongodb.TicketDb, error) {
	if err := s.check("GetTicketById", id); err != nil {
		return mongodb.TicketDb{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.tickets[id]
	if !ok {
		return mongodb.TicketDb{}, mongodb.ErrRecordNotFound
	}
	return copyTicket(r.val), nil
}

func (s *Store) GetTickets(ctx context.Context, status string) ([]mongodb.TicketDb, error) {
	if err := s.check("GetTickets", status); err != nil {
		return []mongodb.TicketDb{}, err
	}
	return s.findTickets(func(t mongodb.TicketDb) bool {
		return status == "" || t.Status == status
	}), nil
}

func (s *Store) GetTicketsByUser(ctx context.Context, username string) ([]mongodb.TicketDb, error) {
	if err := s.check("GetTicketsByUser", username); err != nil {
		return []mongodb.TicketDb{}, err
	}
	return s.findTickets(func(t mongodb.TicketDb) bool {
		return t.Username == username
	}), nil
}

func (s *Store) findTickets(match func(mongodb.TicketDb) bool) []mongodb.TicketDb {
	s.mu.RLock()
	var rows []*row[mongodb.TicketDb]
	for _, r := range s.tickets {
		if match(r.val) {
			rows = append(rows, &row[mongodb.TicketDb]{val: copyTicket(r.val), seq: r.seq})
		}
	}
	s.mu.RUnlock()

	newestFirst(rows, func(t mongodb.TicketDb) time.Time { return t.CreatedAt })

	return values(rows)
}

func (s *Store) CountTickets(ctx context.Context, status string) (int, error) {
	if err := s.check("CountTickets", status); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, r := range s.tickets {
		if status == "" || r.val.Status == status {
			total++
		}
	}
	return total, nil
}

func (s *Store) AddTicketResponse(ctx context.Context, id string, response mongodb.TicketResponseDb) (bool, error) {
	if err := s.check("AddTicketResponse", id); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.tickets[id]
	if !ok {
		return false, nil
	}

	ts := now()
	response.RespondedAt = ts
	r.val.Responses = append(r.val.Responses, response)
	r.val.Status = mongodb.TicketStatusInProgress
	r.val.UpdatedAt = ts
	return true, nil
}

func (s *Store) SetTicketStatus(ctx context.Context, id string, status string) (bool, error) {
	if err := s.check("SetTicketStatus", id); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.tickets[id]
	if !ok {
		return false, nil
	}
	r.val.Status = status
	r.val.UpdatedAt = now()
	return true, nil
}
