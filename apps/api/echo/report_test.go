package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core/report"
	"github.com/trezcool/kitabu/core/stats"
	"github.com/trezcool/kitabu/core/survey"
	"github.com/trezcool/kitabu/core/user"
	testutil "github.com/trezcool/kitabu/tests"
)

func Test_reportApi_clubOverview(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani", "amani@test.cd", "", []string{user.RoleStudent}, true)
	zawadi := testutil.CreateUser(t, usrRepo, "Zawadi", "zawadi", "zawadi@test.cd", "", []string{user.RoleStudent}, true)
	outsider := testutil.CreateUser(t, usrRepo, "Baraka", "baraka", "baraka@test.cd", "", []string{user.RoleStudent}, true)
	c := testutil.CreateClub(t, clubRepo, "Lions", teacher.ID)
	amani = testutil.AddClubMember(t, usrRepo, amani, c.ID)
	zawadi = testutil.AddClubMember(t, usrRepo, zawadi, c.ID)

	march := time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC)
	april := time.Date(2021, 4, 10, 12, 0, 0, 0, time.UTC)
	testutil.CreateSurvey(t, surveyRepo, survey.TypeTeacher, c.ID, amani.ID, teacher.ID, []survey.Question{
		{Text: "Summarizes a chapter", Rating: 5},
		{Text: "Stays focused", Rating: 4},
	}, march)
	testutil.CreateSurvey(t, surveyRepo, survey.TypeSelf, c.ID, zawadi.ID, zawadi.ID, []survey.Question{
		{Text: "Stays focused", Rating: 2},
	}, april)

	testutil.CreateBook(t, bookRepo, c.ID, "Things Fall Apart", "Chinua Achebe", "2021-03", march)
	testutil.CreateBook(t, bookRepo, c.ID, "No Longer at Ease", "Chinua Achebe", "2021-04")

	t.Run("unknown club", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/clubs/lol/report", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("non-member cannot view", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/clubs/"+c.ID+"/report", getToken(t, outsider))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("member overview", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/clubs/"+c.ID+"/report", getToken(t, amani))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var overview report.ClubOverview
		if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}

		// (4.5 + 2) / 2
		if overview.OverallAverage != 3.3 {
			t.Errorf("failed! OverallAverage = %v; want 3.3", overview.OverallAverage)
		}
		wantCounts := map[string]int{survey.TypeTeacher: 1, survey.TypeParent: 0, survey.TypeSelf: 1}
		if ok, _ := jsonBytesEqual(t, marchallObj(t, overview.CountsByType), marchallObj(t, wantCounts)); !ok {
			t.Errorf("failed! CountsByType = %v; want %v", overview.CountsByType, wantCounts)
		}
		wantSkills := []stats.Skill{
			{Label: "Summarizes a chapter", Value: 5, FullLabel: "Summarizes a chapter"},
			{Label: "Stays focused", Value: 3, FullLabel: "Stays focused"},
		}
		if ok, _ := jsonBytesEqual(t, marchallObj(t, overview.TopSkills), marchallObj(t, wantSkills)); !ok {
			t.Errorf("failed! TopSkills = %v; want %v", overview.TopSkills, wantSkills)
		}
		wantTrend := []stats.MonthlyAverage{{Month: "2021-03", Average: 4.5}, {Month: "2021-04", Average: 2}}
		if ok, _ := jsonBytesEqual(t, marchallObj(t, overview.MonthlyTrend), marchallObj(t, wantTrend)); !ok {
			t.Errorf("failed! MonthlyTrend = %v; want %v", overview.MonthlyTrend, wantTrend)
		}
		wantAvgs := []stats.StudentAverage{
			{StudentID: amani.ID, Name: amani.Name, Average: 4.5, SurveyCount: 1},
			{StudentID: zawadi.ID, Name: zawadi.Name, Average: 2, SurveyCount: 1},
		}
		if ok, _ := jsonBytesEqual(t, marchallObj(t, overview.StudentAverages), marchallObj(t, wantAvgs)); !ok {
			t.Errorf("failed! StudentAverages = %v; want %v", overview.StudentAverages, wantAvgs)
		}
		// participation 2/(2*4) and completion 1/2, each weighted 50
		if overview.ActivityRate != 38 {
			t.Errorf("failed! ActivityRate = %v; want 38", overview.ActivityRate)
		}
		if overview.MemberCount != 2 || overview.SurveyCount != 2 || overview.BookCount != 2 || overview.ReadBookCount != 1 {
			t.Errorf("failed! counts = %d/%d/%d/%d; want 2/2/2/1",
				overview.MemberCount, overview.SurveyCount, overview.BookCount, overview.ReadBookCount)
		}
		if overview.GeneratedAt.IsZero() {
			t.Error("failed! zero GeneratedAt")
		}
	})

	t.Run("matrix", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/clubs/"+c.ID+"/matrix", getToken(t, teacher))
		app.ServeHTTP(rec, req)

		want := stats.Matrix{
			Students: []stats.MatrixStudent{
				{ID: amani.ID, Name: amani.Name},
				{ID: zawadi.ID, Name: zawadi.Name},
			},
			Rows: []stats.MatrixRow{
				{Month: "2021-03", Values: []null.Float64{null.Float64From(4.5), {}}},
				{Month: "2021-04", Values: []null.Float64{{}, null.Float64From(2)}},
			},
		}
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}, rec)
	})
}

func Test_reportApi_studentPerformance(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	amani := testutil.CreateUser(t, usrRepo, "Amani", "amani", "amani@test.cd", "", []string{user.RoleStudent}, true)
	zawadi := testutil.CreateUser(t, usrRepo, "Zawadi", "zawadi", "zawadi@test.cd", "", []string{user.RoleStudent}, true)
	c := testutil.CreateClub(t, clubRepo, "Lions", teacher.ID)
	amani = testutil.AddClubMember(t, usrRepo, amani, c.ID)

	march := time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC)
	testutil.CreateSurvey(t, surveyRepo, survey.TypeTeacher, c.ID, amani.ID, teacher.ID, []survey.Question{
		{Text: "Summarizes a chapter", Rating: 5},
		{Text: "Stays focused", Rating: 4},
	}, march)

	t.Run("unknown student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/lol/report", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("students cannot view each other", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+amani.ID+"/report", getToken(t, zawadi))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("own report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+amani.ID+"/report", getToken(t, amani))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var perf report.StudentPerformance
		if err := json.Unmarshal(rec.Body.Bytes(), &perf); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if perf.StudentID != amani.ID || perf.Name != amani.Name {
			t.Errorf("failed! student = %v (%v); want %v (%v)", perf.StudentID, perf.Name, amani.ID, amani.Name)
		}
		if perf.OverallAverage != 4.5 {
			t.Errorf("failed! OverallAverage = %v; want 4.5", perf.OverallAverage)
		}
		if perf.SurveyCount != 1 {
			t.Errorf("failed! SurveyCount = %v; want 1", perf.SurveyCount)
		}
		wantSkills := []stats.Skill{
			{Label: "Summarizes a chapter", Value: 5, FullLabel: "Summarizes a chapter"},
			{Label: "Stays focused", Value: 4, FullLabel: "Stays focused"},
		}
		if ok, _ := jsonBytesEqual(t, marchallObj(t, perf.TopSkills), marchallObj(t, wantSkills)); !ok {
			t.Errorf("failed! TopSkills = %v; want %v", perf.TopSkills, wantSkills)
		}
		wantTrend := []stats.MonthlyAverage{{Month: "2021-03", Average: 4.5}}
		if ok, _ := jsonBytesEqual(t, marchallObj(t, perf.MonthlyTrend), marchallObj(t, wantTrend)); !ok {
			t.Errorf("failed! MonthlyTrend = %v; want %v", perf.MonthlyTrend, wantTrend)
		}
	})
}
