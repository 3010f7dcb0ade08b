package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/survey"
)

const surveyColumns = `id, type, club_id, student_id, author_id, questions, created_at, updated_at`

// dbQuestions maps survey questions to a JSONB column.
type dbQuestions []survey.Question

func (q dbQuestions) Value() (driver.Value, error) {
	return json.Marshal(q)
}

func (q *dbQuestions) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	case nil:
		*q = nil
		return nil
	}
	return errors.Errorf("unsupported questions column type %T", src)
}

type dbSurvey struct {
	ID        string      `db:"id"`
	Type      string      `db:"type"`
	ClubID    string      `db:"club_id"`
	StudentID string      `db:"student_id"`
	AuthorID  string      `db:"author_id"`
	Questions dbQuestions `db:"questions"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (s dbSurvey) toSurvey() survey.Survey {
	return survey.Survey{
		ID:        s.ID,
		Type:      s.Type,
		ClubID:    s.ClubID,
		StudentID: s.StudentID,
		AuthorID:  s.AuthorID,
		Questions: s.Questions,
		CreatedAt: s.CreatedAt.Time,
		UpdatedAt: s.UpdatedAt.Time,
	}
}

type surveyRepository struct {
	db *sqlx.DB
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(db *sqlx.DB) *surveyRepository {
	return &surveyRepository{db: db}
}

func (repo surveyRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return survey.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo surveyRepository) CreateSurvey(ctx context.Context, svy survey.Survey, exec ...core.DBExecutor) (survey.Survey, error) {
	svy.ID = uuid.New().String()
	query := `
		INSERT INTO survey (` + surveyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + surveyColumns
	var row dbSurvey
	err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query,
		svy.ID, svy.Type, svy.ClubID, svy.StudentID, svy.AuthorID, dbQuestions(svy.Questions),
		null.TimeFrom(svy.CreatedAt.UTC()), null.TimeFrom(svy.UpdatedAt.UTC()),
	)
	if err != nil {
		return survey.Survey{}, errors.Wrap(err, "inserting survey")
	}
	return row.toSurvey(), nil
}

func (repo surveyRepository) GetSurveyByID(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Survey, error) {
	var row dbSurvey
	query := `SELECT ` + surveyColumns + ` FROM survey WHERE id = $1`
	if err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query, id); err != nil {
		return survey.Survey{}, repo.trapNoRowsErr(err, "getting survey")
	}
	return row.toSurvey(), nil
}

func (repo surveyRepository) QuerySurveys(ctx context.Context, filter *survey.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]survey.Survey, error) {
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
		if filter.StudentID != "" {
			conds = append(conds, "student_id = "+arg(filter.StudentID))
		}
		if filter.Type != "" {
			conds = append(conds, "type = "+arg(filter.Type))
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
		}
	}

	query := `SELECT ` + surveyColumns + ` FROM survey` + whereClause(conds) + orderClause(ordering, "created_at ASC")
	var rows []dbSurvey
	if err := sqlx.SelectContext(ctx, extContext(repo.db, exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying surveys")
	}
	surveys := make([]survey.Survey, 0, len(rows))
	for _, row := range rows {
		surveys = append(surveys, row.toSurvey())
	}
	return surveys, nil
}

func (repo surveyRepository) UpdateSurvey(ctx context.Context, svy survey.Survey, exec ...core.DBExecutor) (survey.Survey, error) {
	query := `UPDATE survey SET questions = $1, updated_at = $2 WHERE id = $3 RETURNING ` + surveyColumns
	var row dbSurvey
	err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query,
		dbQuestions(svy.Questions), null.TimeFrom(svy.UpdatedAt.UTC()), svy.ID,
	)
	if err != nil {
		return survey.Survey{}, repo.trapNoRowsErr(err, "updating survey")
	}
	return row.toSurvey(), nil
}

func (repo surveyRepository) DeleteSurveysByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM survey WHERE id IN ` + inParams(1, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := extContext(repo.db, exec).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting surveys")
	}
	return nil
}
