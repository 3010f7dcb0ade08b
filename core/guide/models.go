package guide

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
)

// Guide is an uploaded reading-guide document. ClubID is null for guides
// shared with every club.
type Guide struct {
	ID          string      `json:"id"`
	ClubID      null.String `json:"club_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	FileName    string      `json:"file_name"`
	ContentType string      `json:"content_type"`
	Size        int64       `json:"size"`
	UploadedBy  string      `json:"uploaded_by"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// NewGuide contains the metadata accompanying a guide upload.
type NewGuide struct {
	ClubID      null.String `json:"club_id"`
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	FileName    string      `json:"file_name" validate:"required"`
	ContentType string      `json:"content_type"`
}

func (ng *NewGuide) Validate(validate *validator.Validate) error {
	ng.Title = core.CleanString(ng.Title)
	ng.Description = core.CleanString(ng.Description)
	ng.FileName = core.CleanString(ng.FileName)
	return validate.Struct(ng)
}

type QueryFilter struct {
	ClubID string `query:"club_id"`
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClubID == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.ClubID = core.CleanString(qf.ClubID)
	qf.Search = core.CleanString(qf.Search)
}
