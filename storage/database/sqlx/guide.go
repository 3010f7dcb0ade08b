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
	"github.com/trezcool/kitabu/core/guide"
)

const guideColumns = `id, club_id, title, description, file_name, content_type, size, uploaded_by, created_at`

type dbGuide struct {
	ID          string      `db:"id"`
	ClubID      null.String `db:"club_id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	FileName    string      `db:"file_name"`
	ContentType string      `db:"content_type"`
	Size        int64       `db:"size"`
	UploadedBy  string      `db:"uploaded_by"`
	CreatedAt   null.Time   `db:"created_at"`
}

func (g dbGuide) toGuide() guide.Guide {
	return guide.Guide{
		ID:          g.ID,
		ClubID:      g.ClubID,
		Title:       g.Title,
		Description: g.Description,
		FileName:    g.FileName,
		ContentType: g.ContentType,
		Size:        g.Size,
		UploadedBy:  g.UploadedBy,
		CreatedAt:   g.CreatedAt.Time,
	}
}

type guideRepository struct {
	db *sqlx.DB
}

var _ guide.Repository = (*guideRepository)(nil) // interface compliance check

func NewGuideRepository(db *sqlx.DB) *guideRepository {
	return &guideRepository{db: db}
}

func (repo guideRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return guide.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo guideRepository) CreateGuide(ctx context.Context, g guide.Guide, exec ...core.DBExecutor) (guide.Guide, error) {
	g.ID = uuid.New().String()
	query := `
		INSERT INTO guide (` + guideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + guideColumns
	var row dbGuide
	err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query,
		g.ID, g.ClubID, g.Title, g.Description, g.FileName, g.ContentType, g.Size, g.UploadedBy,
		null.TimeFrom(g.CreatedAt.UTC()),
	)
	if err != nil {
		return guide.Guide{}, errors.Wrap(err, "inserting guide")
	}
	return row.toGuide(), nil
}

func (repo guideRepository) GetGuideByID(ctx context.Context, id string, exec ...core.DBExecutor) (guide.Guide, error) {
	var row dbGuide
	query := `SELECT ` + guideColumns + ` FROM guide WHERE id = $1`
	if err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query, id); err != nil {
		return guide.Guide{}, repo.trapNoRowsErr(err, "getting guide")
	}
	return row.toGuide(), nil
}

func (repo guideRepository) QueryGuides(ctx context.Context, filter *guide.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]guide.Guide, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		// club-scoped queries also surface shared (club-less) guides
		if filter.ClubID != "" {
			conds = append(conds, "(club_id = "+arg(filter.ClubID)+" OR club_id IS NULL)")
		}
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			conds = append(conds, "(title ILIKE "+arg(val)+" OR description ILIKE "+arg(val)+")")
		}
	}

	query := `SELECT ` + guideColumns + ` FROM guide` + whereClause(conds) + orderClause(ordering, "created_at DESC")
	var rows []dbGuide
	if err := sqlx.SelectContext(ctx, extContext(repo.db, exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying guides")
	}
	guides := make([]guide.Guide, 0, len(rows))
	for _, row := range rows {
		guides = append(guides, row.toGuide())
	}
	return guides, nil
}

func (repo guideRepository) DeleteGuidesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM guide WHERE id IN ` + inParams(1, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := extContext(repo.db, exec).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting guides")
	}
	return nil
}
