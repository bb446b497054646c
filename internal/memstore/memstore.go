// Package memstore is an in-process implementation of mongodb.Store. It backs
// the service tests and the "memory" store backend used for local runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lealre/moviereviews/internal/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FaultFunc lets tests make a named operation fail. key is the username or
// slug the call is about; returning nil lets the call through.
type FaultFunc func(op, key string) error

type row[T any] struct {
	val T
	seq uint64
}

// Store keeps every collection in maps guarded by a single mutex, so each
// method is atomic with respect to the others. Unique keys mirror the MongoDB
// indexes created by mongodb.CreateAllIndexes.
type Store struct {
	mu  sync.RWMutex
	seq uint64

	movies        map[string]*row[mongodb.MovieDb]
	reviews       map[string]*row[mongodb.ReviewDb]
	watchlists    map[string]*row[mongodb.WatchlistDb]
	notifications map[string]*row[mongodb.NotificationDb]
	history       map[string]*row[mongodb.ViewHistoryDb]
	tickets       map[string]*row[mongodb.TicketDb]
	users         map[string]*row[mongodb.UserDb]

	faultMu sync.RWMutex
	fault   FaultFunc
}

var _ mongodb.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		movies:        map[string]*row[mongodb.MovieDb]{},
		reviews:       map[string]*row[mongodb.ReviewDb]{},
		watchlists:    map[string]*row[mongodb.WatchlistDb]{},
		notifications: map[string]*row[mongodb.NotificationDb]{},
		history:       map[string]*row[mongodb.ViewHistoryDb]{},
		tickets:       map[string]*row[mongodb.TicketDb]{},
		users:         map[string]*row[mongodb.UserDb]{},
	}
}

// SetFault installs f as the fault hook; nil removes it.
func (s *Store) SetFault(f FaultFunc) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.fault = f
}

func (s *Store) check(op, key string) error {
	s.faultMu.RLock()
	f := s.fault
	s.faultMu.RUnlock()
	if f == nil {
		return nil
	}
	return f(op, key)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.check("Ping", ""); err != nil {
		return err
	}
	return ctx.Err()
}

// next must be called with mu held for writing.
func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// snapshot copies r while mu is held. List methods sort and return snapshots
// after unlocking, since writers update rows in place.
func (r *row[T]) snapshot() *row[T] {
	c := *r
	return &c
}

func pairKey(a, b string) string {
	return a + "\x00" + b
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newId() string {
	return primitive.NewObjectID().Hex()
}

// newestFirst sorts rows by the given timestamp descending, breaking ties by
// insertion order so the latest write comes first.
func newestFirst[T any](rows []*row[T], at func(T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := at(rows[i].val), at(rows[j].val)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].seq > rows[j].seq
	})
}

func byInsertion[T any](rows []*row[T]) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
}

func values[T any](rows []*row[T]) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.val)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
