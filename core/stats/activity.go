package stats

import "math"

// DefaultExpectedSurveysPerMember is the survey quota per member used when
// ActivityInputs does not override it.
const DefaultExpectedSurveysPerMember = 4

// ActivityInputs are the raw counts behind a club's activity rate.
type ActivityInputs struct {
	MemberCount              int
	SurveysCount             int
	ReadBooksCount           int
	ExpectedSurveysPerMember int // DefaultExpectedSurveysPerMember when <= 0
}

// ActivityRate blends survey participation and book completion into a single
// percentage in [0, 100]:
//
//	participation = surveysCount / (memberCount * expectedSurveysPerMember)
//	completion    = readBooksCount / memberCount
//	rate          = min(round(participation*50 + completion*50), 100)
//
// Both ratios are 0 when their denominator is 0, so a club with no members
// rates 0 rather than erroring; the cap holds even when participation
// exceeds the expected quota.
func ActivityRate(in ActivityInputs) int {
	expected := in.ExpectedSurveysPerMember
	if expected <= 0 {
		expected = DefaultExpectedSurveysPerMember
	}

	var participation, completion float64
	if in.MemberCount > 0 {
		participation = float64(in.SurveysCount) / float64(in.MemberCount*expected)
		completion = float64(in.ReadBooksCount) / float64(in.MemberCount)
	}

	rate := int(math.Round(participation*50 + completion*50))
	if rate > 100 {
		rate = 100
	}
	return rate
}
