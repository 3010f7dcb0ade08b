package report

import (
	"time"

	"github.com/trezcool/kitabu/core/stats"
)

type (
	// ClubOverview is the aggregate dashboard for one club.
	ClubOverview struct {
		ClubID          string                `json:"club_id"`
		OverallAverage  float64               `json:"overall_average"`
		CountsByType    map[string]int        `json:"counts_by_type"`
		TopSkills       []stats.Skill         `json:"top_skills"`
		MonthlyTrend    []stats.MonthlyAverage `json:"monthly_trend"`
		StudentAverages []stats.StudentAverage `json:"student_averages"`
		ActivityRate    int                   `json:"activity_rate"`
		MemberCount     int                   `json:"member_count"`
		SurveyCount     int                   `json:"survey_count"`
		BookCount       int                   `json:"book_count"`
		ReadBookCount   int                   `json:"read_book_count"`
		GeneratedAt     time.Time             `json:"generated_at"` // UTC
	}

	// StudentPerformance is one student's aggregate evaluation report.
	StudentPerformance struct {
		StudentID      string                 `json:"student_id"`
		Name           string                 `json:"name"`
		OverallAverage float64                `json:"overall_average"`
		CountsByType   map[string]int         `json:"counts_by_type"`
		TopSkills      []stats.Skill          `json:"top_skills"`
		MonthlyTrend   []stats.MonthlyAverage `json:"monthly_trend"`
		SurveyCount    int                    `json:"survey_count"`
		GeneratedAt    time.Time              `json:"generated_at"` // UTC
	}
)
