package book

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
)

// Book is an entry on a club's reading list, planned for a calendar month.
// ReadAt is null until the club marks the book as read.
type Book struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"club_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Month     string    `json:"month"` // "YYYY-MM"
	ReadAt    null.Time `json:"read_at"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// IsRead reports whether the club finished this book.
func (b Book) IsRead() bool { return b.ReadAt.Valid }

// NewBook contains information needed to create a new Book.
type NewBook struct {
	ClubID string `json:"club_id" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Month  string `json:"month" validate:"required,monthkey"`
}

func (nb *NewBook) Validate(validate *validator.Validate) error {
	nb.Title = core.CleanString(nb.Title)
	nb.Author = core.CleanString(nb.Author)
	nb.Month = core.CleanString(nb.Month)
	return validate.Struct(nb)
}

// UpdateBook defines what information may be provided to modify an existing Book.
// Zero-value fields are left unchanged.
type UpdateBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Month  string `json:"month" validate:"omitempty,monthkey"`
}

func (ub *UpdateBook) Validate(validate *validator.Validate) error {
	ub.Title = core.CleanString(ub.Title)
	ub.Author = core.CleanString(ub.Author)
	ub.Month = core.CleanString(ub.Month)
	return validate.Struct(ub)
}

type QueryFilter struct {
	ClubID string `query:"club_id"`
	Month  string `query:"month"`
	IsRead *bool  `query:"is_read"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClubID == "" && qf.Month == "" && qf.IsRead == nil
}

func (qf *QueryFilter) Clean() {
	qf.ClubID = core.CleanString(qf.ClubID)
	qf.Month = core.CleanString(qf.Month)
}
