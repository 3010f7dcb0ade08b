package stats

import (
	"sort"
	"time"

	"github.com/trezcool/kitabu/core/survey"
)

// DefaultTopSkillsLimit is how many skills TopSkills returns when no limit
// is provided.
const DefaultTopSkillsLimit = 6

// skillLabelMaxLen caps Skill.Label so chart axes stay readable; the full
// question text is always available in Skill.FullLabel.
const skillLabelMaxLen = 24

// monthKeyFormat renders a "YYYY-MM" calendar month key; its lexicographic
// order matches chronological order.
const monthKeyFormat = "2006-01"

type (
	// Skill is an aggregated rating for one question text across surveys.
	Skill struct {
		Label     string  `json:"label"`
		Value     float64 `json:"value"`
		FullLabel string  `json:"full_label"`
	}

	// MonthlyAverage is the mean of per-survey averages for one calendar month.
	MonthlyAverage struct {
		Month   string  `json:"month"` // "YYYY-MM"
		Average float64 `json:"average"`
	}
)

// SurveyAverage returns the mean rating of a survey's questions, or 0 for a
// survey with no questions.
func SurveyAverage(svy survey.Survey) float64 {
	if len(svy.Questions) == 0 {
		return 0
	}
	var sum int
	for _, q := range svy.Questions {
		sum += q.Rating
	}
	return float64(sum) / float64(len(svy.Questions))
}

// OverallAverage returns the mean of per-survey averages, rounded to one
// decimal. Surveys with no questions are excluded from the denominator so
// they cannot drag the mean towards 0; an empty input yields 0.
func OverallAverage(surveys []survey.Survey) float64 {
	avgs := make([]float64, 0, len(surveys))
	for _, svy := range surveys {
		if len(svy.Questions) == 0 {
			continue
		}
		avgs = append(avgs, SurveyAverage(svy))
	}
	return Round1(Mean(avgs))
}

// CountByType returns the survey count per type. All known types are always
// present (0 when absent) so consumers never index a missing key; surveys of
// an unrecognized type are counted under their own type string as-is.
func CountByType(surveys []survey.Survey) map[string]int {
	counts := make(map[string]int, len(survey.Types))
	for _, typ := range survey.Types {
		counts[typ] = 0
	}
	for _, svy := range surveys {
		counts[svy.Type]++
	}
	return counts
}

// TopSkills groups every question across all surveys by exact question text,
// averages each group's ratings and returns the `limit` best-rated skills in
// descending order (DefaultTopSkillsLimit when limit <= 0). Skills with equal
// averages keep their first-encountered order, so output is deterministic
// under re-ordering of the survey list.
func TopSkills(surveys []survey.Survey, limit int) []Skill {
	if limit <= 0 {
		limit = DefaultTopSkillsLimit
	}

	type group struct {
		text  string
		sum   int
		count int
	}
	var groups []*group
	index := make(map[string]*group)

	for _, svy := range surveys {
		for _, q := range svy.Questions {
			grp, ok := index[q.Text]
			if !ok {
				grp = &group{text: q.Text}
				index[q.Text] = grp
				groups = append(groups, grp)
			}
			grp.sum += q.Rating
			grp.count++
		}
	}

	// stable keeps insertion order on ties
	sort.SliceStable(groups, func(i, j int) bool {
		return float64(groups[i].sum)/float64(groups[i].count) > float64(groups[j].sum)/float64(groups[j].count)
	})

	if len(groups) > limit {
		groups = groups[:limit]
	}
	skills := make([]Skill, 0, len(groups))
	for _, grp := range groups {
		skills = append(skills, Skill{
			Label:     ellipsize(grp.text, skillLabelMaxLen),
			Value:     Round1(float64(grp.sum) / float64(grp.count)),
			FullLabel: grp.text,
		})
	}
	return skills
}

// MonthlyAverages buckets surveys by the calendar month of their creation
// timestamp and returns each month's mean of per-survey averages, sorted
// ascending by month key with no duplicate keys.
func MonthlyAverages(surveys []survey.Survey) []MonthlyAverage {
	buckets := make(map[string][]float64)
	for _, svy := range surveys {
		if len(svy.Questions) == 0 {
			continue
		}
		key := MonthKey(svy.CreatedAt)
		buckets[key] = append(buckets[key], SurveyAverage(svy))
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	averages := make([]MonthlyAverage, 0, len(keys))
	for _, key := range keys {
		averages = append(averages, MonthlyAverage{Month: key, Average: Round1(Mean(buckets[key]))})
	}
	return averages
}

// MonthKey returns the "YYYY-MM" bucket key for t.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthKeyFormat)
}

func ellipsize(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
