package stats

import (
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core/survey"
	"github.com/trezcool/kitabu/core/user"
)

// DefaultStudentSkillsLimit is how many skills StudentTopSkills returns when
// no limit is provided.
const DefaultStudentSkillsLimit = 3

type (
	// StudentAverage is one student's overall mean rating.
	StudentAverage struct {
		StudentID   string  `json:"student_id"`
		Name        string  `json:"name"`
		Average     float64 `json:"average"`
		SurveyCount int     `json:"survey_count"`
	}

	// MatrixStudent labels one column of a Matrix.
	MatrixStudent struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// MatrixRow is one month of a Matrix. Values align with Matrix.Students;
	// a cell is null — not 0 — when the student has no surveys that month,
	// so charts skip the point instead of plotting zero.
	MatrixRow struct {
		Month  string         `json:"month"` // "YYYY-MM"
		Values []null.Float64 `json:"values"`
	}

	// Matrix is a month-by-student grid of mean ratings, suitable for a
	// multi-series time chart.
	Matrix struct {
		Students []MatrixStudent `json:"students"`
		Rows     []MatrixRow     `json:"rows"`
	}
)

// PerStudentAverage returns each student's mean of per-survey averages,
// rounded to one decimal, in the order students were given. Students with no
// surveys get an explicit 0.
func PerStudentAverage(surveys []survey.Survey, students []user.User) []StudentAverage {
	byStudent := groupByStudent(surveys)

	averages := make([]StudentAverage, 0, len(students))
	for _, std := range students {
		averages = append(averages, StudentAverage{
			StudentID:   std.ID,
			Name:        std.Name,
			Average:     OverallAverage(byStudent[std.ID]),
			SurveyCount: len(byStudent[std.ID]),
		})
	}
	return averages
}

// StudentTopSkills is TopSkills scoped to one student's surveys, defaulting
// to DefaultStudentSkillsLimit entries. Same tie-break rule as TopSkills.
func StudentTopSkills(surveys []survey.Survey, studentID string, limit int) []Skill {
	if limit <= 0 {
		limit = DefaultStudentSkillsLimit
	}
	scoped := make([]survey.Survey, 0, len(surveys))
	for _, svy := range surveys {
		if svy.StudentID == studentID {
			scoped = append(scoped, svy)
		}
	}
	return TopSkills(scoped, limit)
}

// MonthlyMatrix builds one row per month key present in the data (ascending)
// with one cell per student: the student's mean rating for surveys created
// that month, or null when the student has none.
func MonthlyMatrix(surveys []survey.Survey, students []user.User) Matrix {
	// month -> studentID -> per-survey averages
	buckets := make(map[string]map[string][]float64)
	for _, svy := range surveys {
		if len(svy.Questions) == 0 {
			continue
		}
		key := MonthKey(svy.CreatedAt)
		if buckets[key] == nil {
			buckets[key] = make(map[string][]float64)
		}
		buckets[key][svy.StudentID] = append(buckets[key][svy.StudentID], SurveyAverage(svy))
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	matrix := Matrix{
		Students: make([]MatrixStudent, 0, len(students)),
		Rows:     make([]MatrixRow, 0, len(keys)),
	}
	for _, std := range students {
		matrix.Students = append(matrix.Students, MatrixStudent{ID: std.ID, Name: std.Name})
	}
	for _, key := range keys {
		row := MatrixRow{Month: key, Values: make([]null.Float64, 0, len(students))}
		for _, std := range students {
			avgs, ok := buckets[key][std.ID]
			if !ok {
				row.Values = append(row.Values, null.Float64{})
				continue
			}
			row.Values = append(row.Values, null.Float64From(Round1(Mean(avgs))))
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix
}

func groupByStudent(surveys []survey.Survey) map[string][]survey.Survey {
	byStudent := make(map[string][]survey.Survey)
	for _, svy := range surveys {
		byStudent[svy.StudentID] = append(byStudent[svy.StudentID], svy)
	}
	return byStudent
}
