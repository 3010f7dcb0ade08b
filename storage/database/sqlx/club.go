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
	"github.com/trezcool/kitabu/core/club"
)

const (
	clubColumns    = `id, name, description, teacher_id, max_members, created_at, updated_at`
	meetingColumns = `id, club_id, title, date, location, notes, created_at, updated_at`
)

type dbClub struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	TeacherID   string    `db:"teacher_id"`
	MaxMembers  null.Int  `db:"max_members"`
	CreatedAt   null.Time `db:"created_at"`
	UpdatedAt   null.Time `db:"updated_at"`
}

func (c dbClub) toClub() club.Club {
	return club.Club{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		TeacherID:   c.TeacherID,
		MaxMembers:  c.MaxMembers,
		CreatedAt:   c.CreatedAt.Time,
		UpdatedAt:   c.UpdatedAt.Time,
	}
}

type dbMeeting struct {
	ID        string    `db:"id"`
	ClubID    string    `db:"club_id"`
	Title     string    `db:"title"`
	Date      null.Time `db:"date"`
	Location  string    `db:"location"`
	Notes     string    `db:"notes"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (m dbMeeting) toMeeting() club.Meeting {
	return club.Meeting{
		ID:        m.ID,
		ClubID:    m.ClubID,
		Title:     m.Title,
		Date:      m.Date.Time,
		Location:  m.Location,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt.Time,
		UpdatedAt: m.UpdatedAt.Time,
	}
}

type clubRepository struct {
	db *sqlx.DB
}

var _ club.Repository = (*clubRepository)(nil) // interface compliance check

func NewClubRepository(db *sqlx.DB) *clubRepository {
	return &clubRepository{db: db}
}

func (repo clubRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo clubRepository) CreateClub(ctx context.Context, c club.Club, exec ...core.DBExecutor) (club.Club, error) {
	c.ID = uuid.New().String()
	query := `
		INSERT INTO club (` + clubColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + clubColumns
	var row dbClub
	err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query,
		c.ID, c.Name, c.Description, c.TeacherID, c.MaxMembers,
		null.TimeFrom(c.CreatedAt.UTC()), null.TimeFrom(c.UpdatedAt.UTC()),
	)
	if err != nil {
		return club.Club{}, errors.Wrap(err, "inserting club")
	}
	return row.toClub(), nil
}

func (repo clubRepository) GetClubByID(ctx context.Context, id string, exec ...core.DBExecutor) (club.Club, error) {
	var row dbClub
	query := `SELECT ` + clubColumns + ` FROM club WHERE id = $1`
	if err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query, id); err != nil {
		return club.Club{}, repo.trapNoRowsErr(err, club.ErrNotFound, "getting club")
	}
	return row.toClub(), nil
}

func (repo clubRepository) QueryClubs(ctx context.Context, filter *club.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]club.Club, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			conds = append(conds, "name ILIKE "+arg("%"+filter.Search+"%"))
		}
		if filter.TeacherID != "" {
			conds = append(conds, "teacher_id = "+arg(filter.TeacherID))
		}
	}

	query := `SELECT ` + clubColumns + ` FROM club` + whereClause(conds) + orderClause(ordering, "name ASC")
	var rows []dbClub
	if err := sqlx.SelectContext(ctx, extContext(repo.db, exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying clubs")
	}
	clubs := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		clubs = append(clubs, row.toClub())
	}
	return clubs, nil
}

func (repo clubRepository) UpdateClub(ctx context.Context, c club.Club, maxMembers null.Int, exec ...core.DBExecutor) (club.Club, error) {
	var sets []string
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if c.Name != "" {
		set("name", c.Name)
	}
	if c.Description != "" {
		set("description", c.Description)
	}
	if c.TeacherID != "" {
		set("teacher_id", c.TeacherID)
	}
	if maxMembers.Valid {
		set("max_members", maxMembers)
	}
	if !c.UpdatedAt.IsZero() {
		set("updated_at", c.UpdatedAt.UTC())
	}
	if len(sets) == 0 {
		return repo.GetClubByID(ctx, c.ID, exec...)
	}

	args = append(args, c.ID)
	query := fmt.Sprintf(`UPDATE club SET %s WHERE id = $%d RETURNING %s`, joinSets(sets), len(args), clubColumns)
	var row dbClub
	if err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query, args...); err != nil {
		return club.Club{}, repo.trapNoRowsErr(err, club.ErrNotFound, "updating club")
	}
	return row.toClub(), nil
}

func (repo clubRepository) DeleteClubsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM club WHERE id IN ` + inParams(1, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := extContext(repo.db, exec).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting clubs")
	}
	return nil
}

func (repo clubRepository) CreateMeeting(ctx context.Context, m club.Meeting, exec ...core.DBExecutor) (club.Meeting, error) {
	m.ID = uuid.New().String()
	query := `
		INSERT INTO meeting (` + meetingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + meetingColumns
	var row dbMeeting
	err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query,
		m.ID, m.ClubID, m.Title, null.TimeFrom(m.Date.UTC()), m.Location, m.Notes,
		null.TimeFrom(m.CreatedAt.UTC()), null.TimeFrom(m.UpdatedAt.UTC()),
	)
	if err != nil {
		return club.Meeting{}, errors.Wrap(err, "inserting meeting")
	}
	return row.toMeeting(), nil
}

func (repo clubRepository) GetMeetingByID(ctx context.Context, id string, exec ...core.DBExecutor) (club.Meeting, error) {
	var row dbMeeting
	query := `SELECT ` + meetingColumns + ` FROM meeting WHERE id = $1`
	if err := sqlx.GetContext(ctx, extContext(repo.db, exec), &row, query, id); err != nil {
		return club.Meeting{}, repo.trapNoRowsErr(err, club.ErrMeetingNotFound, "getting meeting")
	}
	return row.toMeeting(), nil
}

func (repo clubRepository) QueryMeetingsByClub(ctx context.Context, clubID string, exec ...core.DBExecutor) ([]club.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meeting WHERE club_id = $1 ORDER BY date ASC`
	var rows []dbMeeting
	if err := sqlx.SelectContext(ctx, extContext(repo.db, exec), &rows, query, clubID); err != nil {
		return nil, errors.Wrap(err, "querying meetings")
	}
	meetings := make([]club.Meeting, 0, len(rows))
	for _, row := range rows {
		meetings = append(meetings, row.toMeeting())
	}
	return meetings, nil
}

func (repo clubRepository) DeleteMeetingsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM meeting WHERE id IN ` + inParams(1, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := extContext(repo.db, exec).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting meetings")
	}
	return nil
}

func (repo clubRepository) SetMeetingAttendance(ctx context.Context, att club.Attendance, exec ...core.DBExecutor) error {
	query := `
		INSERT INTO meeting_attendance (meeting_id, student_id, present)
		VALUES ($1, $2, $3)
		ON CONFLICT (meeting_id, student_id) DO UPDATE SET present = EXCLUDED.present`
	if _, err := extContext(repo.db, exec).ExecContext(ctx, query, att.MeetingID, att.StudentID, att.Present); err != nil {
		return errors.Wrap(err, "setting meeting attendance")
	}
	return nil
}

func (repo clubRepository) GetMeetingAttendance(ctx context.Context, meetingID string, exec ...core.DBExecutor) ([]club.Attendance, error) {
	query := `SELECT meeting_id, student_id, present FROM meeting_attendance WHERE meeting_id = $1 ORDER BY student_id`
	rows, err := extContext(repo.db, exec).QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, errors.Wrap(err, "querying meeting attendance")
	}
	defer func() { _ = rows.Close() }()

	var atts []club.Attendance
	for rows.Next() {
		var att club.Attendance
		if err = rows.Scan(&att.MeetingID, &att.StudentID, &att.Present); err != nil {
			return nil, errors.Wrap(err, "scanning meeting attendance")
		}
		atts = append(atts, att)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying meeting attendance")
	}
	return atts, nil
}
