package survey

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/kitabu/core"
)

var (
	// errors
	ErrNotFound = errors.New("survey not found")
)

type (
	Repository interface {
		CreateSurvey(ctx context.Context, svy Survey, exec ...core.DBExecutor) (Survey, error)
		GetSurveyByID(ctx context.Context, id string, exec ...core.DBExecutor) (Survey, error)
		// QuerySurveys applies AND operation on available QueryFilter fields.
		QuerySurveys(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Survey, error)
		UpdateSurvey(ctx context.Context, svy Survey, exec ...core.DBExecutor) (Survey, error)
		DeleteSurveysByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, authorID string, ns NewSurvey) (Survey, error)
		GetByID(ctx context.Context, id string) (Survey, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Survey, error)
		QueryByClub(ctx context.Context, clubID string) ([]Survey, error)
		QueryByStudent(ctx context.Context, studentID string) ([]Survey, error)
		Update(ctx context.Context, id string, us UpdateSurvey) (Survey, error)
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

func (svc *service) Create(ctx context.Context, authorID string, ns NewSurvey) (Survey, error) {
	now := time.Now().UTC()
	svy := Survey{
		Type:      ns.Type,
		ClubID:    ns.ClubID,
		StudentID: ns.StudentID,
		AuthorID:  authorID,
		Questions: ns.Questions,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSurvey(ctx, svy)
}

func (svc *service) GetByID(ctx context.Context, id string) (Survey, error) {
	return svc.repo.GetSurveyByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Survey, error) {
	return svc.repo.QuerySurveys(ctx, filter, ordering)
}

func (svc *service) QueryByClub(ctx context.Context, clubID string) ([]Survey, error) {
	return svc.repo.QuerySurveys(ctx, &QueryFilter{ClubID: clubID}, nil)
}

func (svc *service) QueryByStudent(ctx context.Context, studentID string) ([]Survey, error) {
	return svc.repo.QuerySurveys(ctx, &QueryFilter{StudentID: studentID}, nil)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateSurvey) (Survey, error) {
	svy := Survey{
		ID:        id,
		Questions: us.Questions,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateSurvey(ctx, svy)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSurveysByID(ctx, ids)
}
