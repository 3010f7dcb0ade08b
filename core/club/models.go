package club

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
)

// Club is a reading club run by a teacher. MaxMembers is null for clubs with
// no membership cap.
type Club struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	TeacherID   string      `json:"teacher_id"`
	MaxMembers  null.Int    `json:"max_members"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewClub contains information needed to create a new Club.
type NewClub struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	TeacherID   string   `json:"teacher_id" validate:"required"`
	MaxMembers  null.Int `json:"max_members"`
}

func (nc *NewClub) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	if err := validate.Struct(nc); err != nil {
		return err
	}
	if nc.MaxMembers.Valid && nc.MaxMembers.Int < 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "max_members", Error: "must be at least 1"})
	}
	return nil
}

// UpdateClub defines what information may be provided to modify an existing Club.
// Zero-value fields are left unchanged; MaxMembers is only applied when valid.
type UpdateClub struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TeacherID   string   `json:"teacher_id"`
	MaxMembers  null.Int `json:"max_members"`
}

func (uc *UpdateClub) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	if err := validate.Struct(uc); err != nil {
		return err
	}
	if uc.MaxMembers.Valid && uc.MaxMembers.Int < 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "max_members", Error: "must be at least 1"})
	}
	return nil
}

// Meeting is a scheduled club session.
type Meeting struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"club_id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"` // UTC
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewMeeting contains information needed to create a new Meeting.
type NewMeeting struct {
	ClubID   string    `json:"club_id" validate:"required"`
	Title    string    `json:"title" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
}

func (nm *NewMeeting) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Location = core.CleanString(nm.Location)
	nm.Notes = core.CleanString(nm.Notes)
	return validate.Struct(nm)
}

// Attendance records whether a student showed up to a meeting.
type Attendance struct {
	MeetingID string `json:"meeting_id"`
	StudentID string `json:"student_id"`
	Present   bool   `json:"present"`
}

type QueryFilter struct {
	Search    string `query:"search"`
	TeacherID string `query:"teacher_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.TeacherID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TeacherID = core.CleanString(qf.TeacherID)
}
