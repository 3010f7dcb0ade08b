package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/book"
)

type bookRepository struct {
	db *bookTable
}

var _ book.Repository = (*bookRepository)(nil) // interface compliance check

func NewBookRepository(db *DB) book.Repository {
	return &bookRepository{db: db.book}
}

func (repo *bookRepository) query() []book.Book {
	books := make([]book.Book, 0, len(repo.db.table))
	for _, b := range repo.db.table {
		books = append(books, *b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Month < books[j].Month })
	return books
}

func (repo *bookRepository) CreateBook(ctx context.Context, b book.Book, exec ...core.DBExecutor) (book.Book, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	b.ID = uuid.New().String()
	repo.db.table[b.ID] = &b
	return b, nil
}

func (repo *bookRepository) GetBookByID(ctx context.Context, id string, exec ...core.DBExecutor) (book.Book, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if b, ok := repo.db.table[id]; ok {
		return *b, nil
	}
	return book.Book{}, book.ErrNotFound
}

func (repo *bookRepository) QueryBooks(ctx context.Context, filter *book.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]book.Book, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	books := repo.query()
	if filter == nil {
		return books, nil
	}

	if filter.ClubID != "" {
		var filtered []book.Book
		for _, b := range books {
			if b.ClubID == filter.ClubID {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}
	if books != nil && filter.Month != "" {
		var filtered []book.Book
		for _, b := range books {
			if b.Month == filter.Month {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}
	if books != nil && filter.IsRead != nil {
		var filtered []book.Book
		for _, b := range books {
			if b.IsRead() == *filter.IsRead {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}

	return books, nil
}

func (repo *bookRepository) UpdateBook(ctx context.Context, b book.Book, readAt *null.Time, exec ...core.DBExecutor) (book.Book, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origBook, ok := repo.db.table[b.ID]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	if b.Title != "" {
		origBook.Title = b.Title
	}
	if b.Author != "" {
		origBook.Author = b.Author
	}
	if b.Month != "" {
		origBook.Month = b.Month
	}
	if readAt != nil {
		origBook.ReadAt = *readAt
	}
	if !b.UpdatedAt.IsZero() {
		origBook.UpdatedAt = b.UpdatedAt
	}

	return *origBook, nil
}

func (repo *bookRepository) DeleteBooksByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
