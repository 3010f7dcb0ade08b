package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/survey"
)

type surveyRepository struct {
	db *surveyTable
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(db *DB) survey.Repository {
	return &surveyRepository{db: db.survey}
}

func (repo *surveyRepository) query() []survey.Survey {
	surveys := make([]survey.Survey, 0, len(repo.db.table))
	for _, svy := range repo.db.table {
		surveys = append(surveys, *svy)
	}
	sort.Slice(surveys, func(i, j int) bool { return surveys[i].CreatedAt.Before(surveys[j].CreatedAt) })
	return surveys
}

func (repo *surveyRepository) CreateSurvey(ctx context.Context, svy survey.Survey, exec ...core.DBExecutor) (survey.Survey, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	svy.ID = uuid.New().String()
	repo.db.table[svy.ID] = &svy
	return svy, nil
}

func (repo *surveyRepository) GetSurveyByID(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Survey, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if svy, ok := repo.db.table[id]; ok {
		return *svy, nil
	}
	return survey.Survey{}, survey.ErrNotFound
}

func (repo *surveyRepository) QuerySurveys(ctx context.Context, filter *survey.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]survey.Survey, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	surveys := repo.query()
	if filter == nil {
		return surveys, nil
	}

	if filter.ClubID != "" {
		var filtered []survey.Survey
		for _, svy := range surveys {
			if svy.ClubID == filter.ClubID {
				filtered = append(filtered, svy)
			}
		}
		surveys = filtered
	}
	if surveys != nil && filter.StudentID != "" {
		var filtered []survey.Survey
		for _, svy := range surveys {
			if svy.StudentID == filter.StudentID {
				filtered = append(filtered, svy)
			}
		}
		surveys = filtered
	}
	if surveys != nil && filter.Type != "" {
		var filtered []survey.Survey
		for _, svy := range surveys {
			if svy.Type == filter.Type {
				filtered = append(filtered, svy)
			}
		}
		surveys = filtered
	}
	if surveys != nil && !filter.CreatedFrom.IsZero() {
		var filtered []survey.Survey
		timeUTC := filter.CreatedFrom.UTC()
		for _, svy := range surveys {
			if !svy.CreatedAt.Before(timeUTC) {
				filtered = append(filtered, svy)
			}
		}
		surveys = filtered
	}
	if surveys != nil && !filter.CreatedTo.IsZero() {
		var filtered []survey.Survey
		timeUTC := filter.CreatedTo.UTC()
		for _, svy := range surveys {
			if !svy.CreatedAt.After(timeUTC) {
				filtered = append(filtered, svy)
			}
		}
		surveys = filtered
	}

	return surveys, nil
}

func (repo *surveyRepository) UpdateSurvey(ctx context.Context, svy survey.Survey, exec ...core.DBExecutor) (survey.Survey, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origSvy, ok := repo.db.table[svy.ID]
	if !ok {
		return survey.Survey{}, survey.ErrNotFound
	}
	if svy.Questions != nil {
		origSvy.Questions = svy.Questions
	}
	if !svy.UpdatedAt.IsZero() {
		origSvy.UpdatedAt = svy.UpdatedAt
	}

	return *origSvy, nil
}

func (repo *surveyRepository) DeleteSurveysByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
