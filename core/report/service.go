package report

import (
	"context"
	"time"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/book"
	"github.com/trezcool/kitabu/core/stats"
	"github.com/trezcool/kitabu/core/survey"
	"github.com/trezcool/kitabu/core/user"
)

type (
	// Cache is an optional read-through store for generated reports. A miss is
	// (false, nil); entries expire on their own, Delete only forces it.
	Cache interface {
		Get(ctx context.Context, key string, dst interface{}) (bool, error)
		Set(ctx context.Context, key string, v interface{}) error
		Delete(ctx context.Context, keys ...string) error
	}

	ServiceInterface interface {
		ClubOverview(ctx context.Context, clubID string) (ClubOverview, error)
		ClubMatrix(ctx context.Context, clubID string) (stats.Matrix, error)
		StudentPerformance(ctx context.Context, studentID string) (StudentPerformance, error)
		InvalidateClub(ctx context.Context, clubID string) error
	}

	service struct {
		surveySvc survey.ServiceInterface
		bookSvc   book.ServiceInterface
		usrRepo   user.Repository
		cache     Cache // nil disables caching
		conf      *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	surveySvc survey.ServiceInterface,
	bookSvc book.ServiceInterface,
	usrRepo user.Repository,
	cache Cache,
	conf *core.Config,
) *service {
	return &service{
		surveySvc: surveySvc,
		bookSvc:   bookSvc,
		usrRepo:   usrRepo,
		cache:     cache,
		conf:      conf,
	}
}

func clubOverviewKey(clubID string) string { return "report:club:" + clubID + ":overview" }
func clubMatrixKey(clubID string) string   { return "report:club:" + clubID + ":matrix" }

// ClubOverview recomputes the club dashboard from current data, reading
// through the cache when one is configured.
func (svc *service) ClubOverview(ctx context.Context, clubID string) (ClubOverview, error) {
	var overview ClubOverview
	if svc.cache != nil {
		if ok, err := svc.cache.Get(ctx, clubOverviewKey(clubID), &overview); err == nil && ok {
			return overview, nil
		}
	}

	members, err := svc.clubStudents(ctx, clubID)
	if err != nil {
		return ClubOverview{}, err
	}
	surveys, err := svc.surveySvc.QueryByClub(ctx, clubID)
	if err != nil {
		return ClubOverview{}, err
	}
	books, err := svc.bookSvc.QueryByClub(ctx, clubID)
	if err != nil {
		return ClubOverview{}, err
	}
	var readBooks int
	for _, b := range books {
		if b.IsRead() {
			readBooks++
		}
	}

	overview = ClubOverview{
		ClubID:          clubID,
		OverallAverage:  stats.OverallAverage(surveys),
		CountsByType:    stats.CountByType(surveys),
		TopSkills:       stats.TopSkills(surveys, 0),
		MonthlyTrend:    stats.MonthlyAverages(surveys),
		StudentAverages: stats.PerStudentAverage(surveys, members),
		ActivityRate: stats.ActivityRate(stats.ActivityInputs{
			MemberCount:              len(members),
			SurveysCount:             len(surveys),
			ReadBooksCount:           readBooks,
			ExpectedSurveysPerMember: svc.conf.ExpectedSurveysPerMember,
		}),
		MemberCount:   len(members),
		SurveyCount:   len(surveys),
		BookCount:     len(books),
		ReadBookCount: readBooks,
		GeneratedAt:   time.Now().UTC(),
	}

	if svc.cache != nil {
		_ = svc.cache.Set(ctx, clubOverviewKey(clubID), overview)
	}
	return overview, nil
}

// ClubMatrix returns the month-by-student rating grid for a club.
func (svc *service) ClubMatrix(ctx context.Context, clubID string) (stats.Matrix, error) {
	var matrix stats.Matrix
	if svc.cache != nil {
		if ok, err := svc.cache.Get(ctx, clubMatrixKey(clubID), &matrix); err == nil && ok {
			return matrix, nil
		}
	}

	members, err := svc.clubStudents(ctx, clubID)
	if err != nil {
		return stats.Matrix{}, err
	}
	surveys, err := svc.surveySvc.QueryByClub(ctx, clubID)
	if err != nil {
		return stats.Matrix{}, err
	}

	matrix = stats.MonthlyMatrix(surveys, members)
	if svc.cache != nil {
		_ = svc.cache.Set(ctx, clubMatrixKey(clubID), matrix)
	}
	return matrix, nil
}

// StudentPerformance is never cached: it backs the per-student detail view,
// which is read right after new surveys come in.
func (svc *service) StudentPerformance(ctx context.Context, studentID string) (StudentPerformance, error) {
	usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: studentID})
	if err != nil {
		return StudentPerformance{}, err
	}
	surveys, err := svc.surveySvc.QueryByStudent(ctx, studentID)
	if err != nil {
		return StudentPerformance{}, err
	}

	return StudentPerformance{
		StudentID:      usr.ID,
		Name:           usr.Name,
		OverallAverage: stats.OverallAverage(surveys),
		CountsByType:   stats.CountByType(surveys),
		TopSkills:      stats.StudentTopSkills(surveys, studentID, 0),
		MonthlyTrend:   stats.MonthlyAverages(surveys),
		SurveyCount:    len(surveys),
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

// InvalidateClub drops a club's cached reports, typically after a survey or
// book write.
func (svc *service) InvalidateClub(ctx context.Context, clubID string) error {
	if svc.cache == nil {
		return nil
	}
	return svc.cache.Delete(ctx, clubOverviewKey(clubID), clubMatrixKey(clubID))
}

func (svc *service) clubStudents(ctx context.Context, clubID string) ([]user.User, error) {
	return svc.usrRepo.QueryUsers(
		ctx,
		&user.QueryFilter{ClubID: clubID, Roles: []string{user.RoleStudent}},
		[]core.DBOrdering{{Field: "name", Ascending: true}},
	)
}
