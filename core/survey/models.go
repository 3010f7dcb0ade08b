package survey

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kitabu/core"
)

// Survey types: who evaluated the student.
const (
	TypeSelf    = "self-assessment"
	TypeTeacher = "teacher-assessment"
	TypeParent  = "parent-assessment"
)

// Types lists all known survey types.
var Types = []string{TypeSelf, TypeTeacher, TypeParent}

// Question is a single rated item on a survey. The question text doubles as
// the skill key when aggregating ratings across surveys.
type Question struct {
	Text   string `json:"question" validate:"required"`
	Rating int    `json:"rating" validate:"min=0,max=5"`
}

// Survey is a set of rated questions submitted about a club student by
// themselves, their teacher or a parent.
type Survey struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	ClubID    string     `json:"club_id"`
	StudentID string     `json:"student_id"`
	AuthorID  string     `json:"author_id"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

// NewSurvey contains information needed to create a new Survey.
type NewSurvey struct {
	Type      string     `json:"type" validate:"required,oneof=self-assessment teacher-assessment parent-assessment"`
	ClubID    string     `json:"club_id" validate:"required"`
	StudentID string     `json:"student_id" validate:"required"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

func (ns *NewSurvey) Validate(validate *validator.Validate) error {
	ns.Type = core.CleanString(ns.Type, true /* lower */)
	for i := range ns.Questions {
		ns.Questions[i].Text = core.CleanString(ns.Questions[i].Text)
	}
	return validate.Struct(ns)
}

// UpdateSurvey defines what information may be provided to modify an existing Survey.
// Type, club and student are fixed at creation.
type UpdateSurvey struct {
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

func (us *UpdateSurvey) Validate(validate *validator.Validate) error {
	for i := range us.Questions {
		us.Questions[i].Text = core.CleanString(us.Questions[i].Text)
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	ClubID      string    `query:"club_id"`
	StudentID   string    `query:"student_id"`
	Type        string    `query:"type"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClubID == "" && qf.StudentID == "" && qf.Type == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.ClubID = core.CleanString(qf.ClubID)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
}
