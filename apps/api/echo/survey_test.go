package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/kitabu/core/survey"
	"github.com/trezcool/kitabu/core/user"
	testutil "github.com/trezcool/kitabu/tests"
)

func Test_surveyApi_create(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	parent := testutil.CreateUser(t, usrRepo, "Parent", "parent", "parent@test.cd", "", []string{user.RoleParent}, true)
	std := testutil.CreateUser(t, usrRepo, "Amani", "amani", "amani@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Zawadi", "zawadi", "zawadi@test.cd", "", []string{user.RoleStudent}, true)
	c := testutil.CreateClub(t, clubRepo, "Lions", teacher.ID)
	std = testutil.AddClubMember(t, usrRepo, std, c.ID)

	newSurvey := func(typ, studentID string) []byte {
		return marchallObj(t, survey.NewSurvey{
			Type:      typ,
			ClubID:    c.ID,
			StudentID: studentID,
			Questions: []survey.Question{{Text: "How well does the student summarize a chapter?", Rating: 4}},
		})
	}
	typeMismatch := marchallObj(t, map[string]string{"type": "this survey type cannot be submitted with your role"})

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "questions required", token: getToken(t, teacher),
			body:     marchallObj(t, survey.NewSurvey{Type: survey.TypeTeacher, ClubID: c.ID, StudentID: std.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"questions": "this field is required"}),
		},
		{
			name: "rating capped at 5", token: getToken(t, teacher),
			body: marchallObj(t, survey.NewSurvey{
				Type: survey.TypeTeacher, ClubID: c.ID, StudentID: std.ID,
				Questions: []survey.Question{{Text: "Focus", Rating: 9}},
			}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"rating": "rating must be 5 or less"}),
		},
		{
			name: "teacher submits teacher assessment", token: getToken(t, teacher),
			body: newSurvey(survey.TypeTeacher, std.ID), wantCode: http.StatusCreated,
		},
		{
			name: "teacher cannot submit self assessment", token: getToken(t, teacher),
			body: newSurvey(survey.TypeSelf, std.ID), wantCode: http.StatusBadRequest, wantData: typeMismatch,
		},
		{
			name: "parent submits parent assessment", token: getToken(t, parent),
			body: newSurvey(survey.TypeParent, std.ID), wantCode: http.StatusCreated,
		},
		{
			name: "parent cannot submit teacher assessment", token: getToken(t, parent),
			body: newSurvey(survey.TypeTeacher, std.ID), wantCode: http.StatusBadRequest, wantData: typeMismatch,
		},
		{
			name: "student submits self assessment", token: getToken(t, std),
			body: newSurvey(survey.TypeSelf, std.ID), wantCode: http.StatusCreated,
		},
		{
			name: "student cannot rate someone else", token: getToken(t, std),
			body: newSurvey(survey.TypeSelf, other.ID), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/surveys"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData survey.Survey
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.ID == "" {
					t.Error("failed! empty survey ID")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_surveyApi_queryAndVisibility(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	parent := testutil.CreateUser(t, usrRepo, "Parent", "parent", "parent@test.cd", "", []string{user.RoleParent}, true)
	std := testutil.CreateUser(t, usrRepo, "Amani", "amani", "amani@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Zawadi", "zawadi", "zawadi@test.cd", "", []string{user.RoleStudent}, true)
	c := testutil.CreateClub(t, clubRepo, "Lions", teacher.ID)

	qs := []survey.Question{{Text: "Focus", Rating: 3}}
	svy1 := testutil.CreateSurvey(t, surveyRepo, survey.TypeTeacher, c.ID, std.ID, teacher.ID, qs)
	svy2 := testutil.CreateSurvey(t, surveyRepo, survey.TypeSelf, c.ID, other.ID, other.ID, qs)

	t.Run("staff sees everything", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/surveys", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, svy1, svy2)}, rec)
	})

	t.Run("student only sees own surveys", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/surveys", getToken(t, std))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, svy1)}, rec)
	})

	t.Run("parent cannot list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/surveys", getToken(t, parent))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("student retrieves own survey", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/surveys/"+svy1.ID, getToken(t, std))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, svy1)}, rec)
	})

	t.Run("someone else's survey is hidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/surveys/"+svy2.ID, getToken(t, std))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})
}

func Test_surveyApi_updateDelete(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	colleague := testutil.CreateUser(t, usrRepo, "Colleague", "coll", "coll@test.cd", "", []string{user.RoleTeacher}, true)
	std := testutil.CreateUser(t, usrRepo, "Amani", "amani", "amani@test.cd", "", []string{user.RoleStudent}, true)
	c := testutil.CreateClub(t, clubRepo, "Lions", teacher.ID)

	svy := testutil.CreateSurvey(t, surveyRepo, survey.TypeTeacher, c.ID, std.ID, teacher.ID,
		[]survey.Question{{Text: "Focus", Rating: 3}})

	body := marchallObj(t, survey.UpdateSurvey{Questions: []survey.Question{{Text: "Focus", Rating: 5}}})

	t.Run("only the author edits", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/surveys/"+svy.ID, getToken(t, colleague), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("author updates ratings", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/surveys/"+svy.ID, getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var respData survey.Survey
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(respData.Questions) != 1 || respData.Questions[0].Rating != 5 {
			t.Errorf("failed! Questions = %v; want rating 5", respData.Questions)
		}
	})

	t.Run("only the author deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/surveys/"+svy.ID, getToken(t, colleague))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("author deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/surveys/"+svy.ID, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
	})
}
