package memstore

import (
	"context"
	"strings"

	"github.com/lealre/moviereviews/internal/mongodb"
)

func (s *Store) AddUser(ctx context.Context, user mongodb.UserDb) (mongodb.UserDb, error) {
	if err := s.check("AddUser", user.Username); err != nil {
		return mongodb.UserDb{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, r := range s.users {
		if r.val.Username == user.Username || (user.Email != "" && r.val.Email == user.Email) {
			return mongodb.UserDb{}, mongodb.ErrDuplicateKey
		}
	}

	ts := now()
	user.Id = newId()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	s.users[user.Id] = &row[mongodb.UserDb]{val: user, seq: s.next()}

	return user, nil
}

func (s *Store) GetUserById(ctx context.Context, id string) (mongodb.UserDb, error) {
	if err := s.check("GetUserById", id); err != nil {
		return mongodb.UserDb{}, err
	}
	return s.findUser(func(u mongodb.UserDb) bool { return u.Id == id })
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (mongodb.UserDb, error) {
	if err := s.check("GetUserByUsername", username); err != nil {
		return mongodb.UserDb{}, err
	}
	return s.findUser(func(u mongodb.UserDb) bool { return u.Username == username })
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (mongodb.UserDb, error) {
	if err := s.check("GetUserByEmail", email); err != nil {
		return mongodb.UserDb{}, err
	}
	email = strings.ToLower(email)
	return s.findUser(func(u mongodb.UserDb) bool { return u.Email == email })
}

func (s *Store) findUser(match func(mongodb.UserDb) bool) (mongodb.UserDb, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.users {
		if match(r.val) {
			return r.val, nil
		}
	}
	return mongodb.UserDb{}, mongodb.ErrRecordNotFound
}

func (s *Store) DistinctUsernames(ctx context.Context) ([]string, error) {
	if err := s.check("DistinctUsernames", ""); err != nil {
		return []string{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set := map[string]struct{}{}
	for _, r := range s.users {
		if r.val.Username != "" {
			set[r.val.Username] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}
