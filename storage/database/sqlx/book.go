package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/book"
)

const bookColumns = `id, club_id, title, author, month, read_at, created_at, updated_at`

type dbBook struct {
	ID        string    `db:"id"`
	ClubID    string    `db:"club_id"`
	Title     string    `db:"title"`
	Author    string    `db:"author"`
	Month     string    `db:"month"`
	ReadAt    null.Time `db:"read_at"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (b dbBook) toBook() book.Book {
	return book.Book{
		ID:        b.ID,
		ClubID:    b.ClubID,
		Title:     b.Title,
		Author:    b.Author,
		Month:     b.Month,
		ReadAt:    b.ReadAt,
		CreatedAt: b.CreatedAt.Time,
		UpdatedAt: b.UpdatedAt.Time,
	}
}

type bookRepository struct {
	db *sqlx.DB
}

var _ book.Repository = (*bookRepository)(nil) // interface compliance check

func NewBookRepository(db *sqlx.DB) *bookRepository {
	return &bookRepository{db: db}
}

func (repo bookRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return book.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo bookRepository) CreateBook(ctx context.Context, b book.Book, exec ...core.DBExecutor) (book.Book, error) {
	b.ID = uuid.New().String()
	query := `
		INSERT INTO book (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookColumns
	var row dbBook
	err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query,
		b.ID, b.ClubID, b.Title, b.Author, b.Month, b.ReadAt,
		null.TimeFrom(b.CreatedAt.UTC()), null.TimeFrom(b.UpdatedAt.UTC()),
	)
	if err != nil {
		return book.Book{}, errors.Wrap(err, "inserting book")
	}
	return row.toBook(), nil
}

func (repo bookRepository) GetBookByID(ctx context.Context, id string, exec ...core.DBExecutor) (book.Book, error) {
	var row dbBook
	query := `SELECT ` + bookColumns + ` FROM book WHERE id = $1`
	if err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query, id); err != nil {
		return book.Book{}, repo.trapNoRowsErr(err, "getting book")
	}
	return row.toBook(), nil
}

func (repo bookRepository) QueryBooks(ctx context.Context, filter *book.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]book.Book, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.ClubID != "" {
			conds = append(conds, "club_id = "+arg(filter.ClubID))
		}
		if filter.Month != "" {
			conds = append(conds, "month = "+arg(filter.Month))
		}
		if filter.IsRead != nil {
			if *filter.IsRead {
				conds = append(conds, "read_at IS NOT NULL")
			} else {
				conds = append(conds, "read_at IS NULL")
			}
		}
	}

	query := `SELECT ` + bookColumns + ` FROM book` + whereClause(conds) + orderClause(ordering, "month ASC")
	var rows []dbBook
	if err := sqlx.SelectContext(ctx, extContext(repo.db, exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying books")
	}
	books := make([]book.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toBook())
	}
	return books, nil
}

func (repo bookRepository) UpdateBook(ctx context.Context, b book.Book, readAt *null.Time, exec ...core.DBExecutor) (book.Book, error) {
	var sets []string
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if b.Title != "" {
		set("title", b.Title)
	}
	if b.Author != "" {
		set("author", b.Author)
	}
	if b.Month != "" {
		set("month", b.Month)
	}
	if readAt != nil {
		set("read_at", *readAt)
	}
	if !b.UpdatedAt.IsZero() {
		set("updated_at", b.UpdatedAt.UTC())
	}
	if len(sets) == 0 {
		return repo.GetBookByID(ctx, b.ID, exec...)
	}

	args = append(args, b.ID)
	query := fmt.Sprintf(`UPDATE book SET %s WHERE id = $%d RETURNING %s`, joinSets(sets), len(args), bookColumns)
	var row dbBook
	if err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query, args...); err != nil {
		return book.Book{}, repo.trapNoRowsErr(err, "updating book")
	}
	return row.toBook(), nil
}

func (repo bookRepository) DeleteBooksByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM book WHERE id IN ` + inParams(1, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := extContext(repo.db, exec).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting books")
	}
	return nil
}
