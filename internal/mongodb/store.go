package mongodb

import "context"

// Store is the set of collection operations the services consume. *DB
// implements it against MongoDB and memstore implements it in process.
type Store interface {
	MovieStore
	ReviewStore
	WatchlistStore
	NotificationStore
	TicketStore
	ViewHistoryStore
	UserStore

	Ping(ctx context.Context) error
}

type MovieStore interface {
	GetMovieBySlug(ctx context.Context, slug string) (MovieDb, error)
	GetMovies(ctx context.Context, query MovieQuery) ([]MovieDb, error)
	CountMovies(ctx context.Context) (int, error)
	AddMovie(ctx context.Context, movie MovieDb) (MovieDb, error)
	UpdateMovie(ctx context.Context, slug string, update MovieUpdate) error
	DeleteMovie(ctx context.Context, slug string) (bool, error)
	SetMovieAggregate(ctx context.Context, slug string, avgRating float64, reviewCount int) error
}

type ReviewStore interface {
	UpsertReview(ctx context.Context, review ReviewDb) (ReviewDb, bool, error)
	GetReview(ctx context.Context, movieSlug, username string) (ReviewDb, error)
	GetReviewsByMovie(ctx context.Context, movieSlug string, skip, limit int) ([]ReviewDb, error)
	CountReviewsByMovie(ctx context.Context, movieSlug string) (int, error)
	DeleteReview(ctx context.Context, movieSlug, username string) (bool, error)
	DeleteReviewsByMovie(ctx context.Context, movieSlug string) (int64, error)
	AggregateReviews(ctx context.Context, movieSlug string) (float64, int, error)
}

type WatchlistStore interface {
	AddWatchlistEntry(ctx context.Context, entry WatchlistDb) (WatchlistDb, error)
	GetWatchlistEntry(ctx context.Context, username, movieSlug string) (WatchlistDb, error)
	DeleteWatchlistEntry(ctx context.Context, username, movieSlug string) (bool, error)
	DeleteWatchlistByMovie(ctx context.Context, movieSlug string) (int64, error)
	GetWatchlistByUser(ctx context.Context, username string) ([]WatchlistDb, error)
	GetWatchlistUsernames(ctx context.Context, movieSlug string) ([]string, error)
	DistinctWatchlistUsernames(ctx context.Context) ([]string, error)
}

type NotificationStore interface {
	AddNotification(ctx context.Context, notification NotificationDb) (NotificationDb, error)
	GetNotificationsByUser(ctx context.Context, username string, unreadOnly bool) ([]NotificationDb, error)
	CountUnreadNotifications(ctx context.Context, username string) (int, error)
	MarkMovieNotificationsRead(ctx context.Context, username, movieSlug string) (int64, error)
	MarkTicketNotificationsRead(ctx context.Context, username, ticketId string) (int64, error)
	DistinctNotificationUsernames(ctx context.Context) ([]string, error)
}

type TicketStore interface {
	AddTicket(ctx context.Context, ticket TicketDb) (TicketDb, error)
	GetTicketById(ctx context.Context, id string) (TicketDb, error)
	GetTickets(ctx context.Context, status string) ([]TicketDb, error)
	GetTicketsByUser(ctx context.Context, username string) ([]TicketDb, error)
	CountTickets(ctx context.Context, status string) (int, error)
	AddTicketResponse(ctx context.Context, id string, response TicketResponseDb) (bool, error)
	SetTicketStatus(ctx context.Context, id string, status string) (bool, error)
}

type ViewHistoryStore interface {
	UpsertView(ctx context.Context, username, movieSlug, movieTitle string) error
	GetViewHistory(ctx context.Context, username string, limit int) ([]ViewHistoryDb, error)
}

type UserStore interface {
	AddUser(ctx context.Context, user UserDb) (UserDb, error)
	GetUserById(ctx context.Context, id string) (UserDb, error)
	GetUserByUsername(ctx context.Context, username string) (UserDb, error)
	GetUserByEmail(ctx context.Context, email string) (UserDb, error)
	DistinctUsernames(ctx context.Context) ([]string, error)
}

var _ Store = (*DB)(nil)
