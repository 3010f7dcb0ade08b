package book

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
)

var (
	// errors
	ErrNotFound = errors.New("book not found")
)

type (
	Repository interface {
		CreateBook(ctx context.Context, b Book, exec ...core.DBExecutor) (Book, error)
		GetBookByID(ctx context.Context, id string, exec ...core.DBExecutor) (Book, error)
		// QueryBooks applies AND operation on available QueryFilter fields.
		QueryBooks(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Book, error)
		UpdateBook(ctx context.Context, b Book, readAt *null.Time, exec ...core.DBExecutor) (Book, error)
		DeleteBooksByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nb NewBook) (Book, error)
		GetByID(ctx context.Context, id string) (Book, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Book, error)
		QueryByClub(ctx context.Context, clubID string) ([]Book, error)
		Update(ctx context.Context, id string, ub UpdateBook) (Book, error)
		MarkRead(ctx context.Context, id string) (Book, error)
		MarkUnread(ctx context.Context, id string) (Book, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nb NewBook) (Book, error) {
	now := time.Now().UTC()
	b := Book{
		ClubID:    nb.ClubID,
		Title:     nb.Title,
		Author:    nb.Author,
		Month:     nb.Month,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateBook(ctx, b)
}

func (svc *service) GetByID(ctx context.Context, id string) (Book, error) {
	return svc.repo.GetBookByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Book, error) {
	return svc.repo.QueryBooks(ctx, filter, ordering)
}

func (svc *service) QueryByClub(ctx context.Context, clubID string) ([]Book, error) {
	return svc.repo.QueryBooks(
		ctx,
		&QueryFilter{ClubID: clubID},
		[]core.DBOrdering{{Field: "month", Ascending: true}},
	)
}

func (svc *service) Update(ctx context.Context, id string, ub UpdateBook) (Book, error) {
	b := Book{
		ID:        id,
		Title:     ub.Title,
		Author:    ub.Author,
		Month:     ub.Month,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateBook(ctx, b, nil)
}

// MarkRead stamps the book with the current time. Marking an already-read book
// refreshes the stamp.
func (svc *service) MarkRead(ctx context.Context, id string) (Book, error) {
	readAt := null.TimeFrom(time.Now().UTC())
	return svc.repo.UpdateBook(ctx, Book{ID: id, UpdatedAt: time.Now().UTC()}, &readAt)
}

func (svc *service) MarkUnread(ctx context.Context, id string) (Book, error) {
	readAt := null.Time{}
	return svc.repo.UpdateBook(ctx, Book{ID: id, UpdatedAt: time.Now().UTC()}, &readAt)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteBooksByID(ctx, ids)
}
