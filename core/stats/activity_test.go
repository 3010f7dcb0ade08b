package stats

import "testing"

func TestActivityRate(t *testing.T) {
	tests := []struct {
		name string
		in   ActivityInputs
		want int
	}{
		{
			name: "half participation half completion",
			in:   ActivityInputs{MemberCount: 10, SurveysCount: 20, ReadBooksCount: 5},
			want: 50,
		},
		{
			name: "no members",
			in:   ActivityInputs{MemberCount: 0, SurveysCount: 20, ReadBooksCount: 5},
			want: 0,
		},
		{
			name: "no activity",
			in:   ActivityInputs{MemberCount: 10},
			want: 0,
		},
		{
			name: "full quota",
			in:   ActivityInputs{MemberCount: 10, SurveysCount: 40, ReadBooksCount: 10},
			want: 100,
		},
		{
			name: "capped at 100",
			in:   ActivityInputs{MemberCount: 2, SurveysCount: 100, ReadBooksCount: 50},
			want: 100,
		},
		{
			name: "custom quota",
			in:   ActivityInputs{MemberCount: 10, SurveysCount: 10, ReadBooksCount: 0, ExpectedSurveysPerMember: 2},
			want: 25,
		},
		{
			name: "rounded to nearest integer",
			in:   ActivityInputs{MemberCount: 3, SurveysCount: 4, ReadBooksCount: 1}, // 16.67 + 16.67 = 33.3
			want: 33,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActivityRate(tt.in); got != tt.want {
				t.Errorf("ActivityRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivityRateBounds(t *testing.T) {
	for members := 0; members <= 5; members++ {
		for surveys := 0; surveys <= 30; surveys += 5 {
			for books := 0; books <= 15; books += 5 {
				in := ActivityInputs{MemberCount: members, SurveysCount: surveys, ReadBooksCount: books}
				if rate := ActivityRate(in); rate < 0 || rate > 100 {
					t.Errorf("ActivityRate(%+v) = %v, out of [0, 100]", in, rate)
				}
			}
		}
	}
}
