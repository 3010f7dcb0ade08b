package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/kitabu/core/book"
	"github.com/trezcool/kitabu/core/user"
	testutil "github.com/trezcool/kitabu/tests"
)

func Test_bookApi_crud(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	std := testutil.CreateUser(t, usrRepo, "Amani", "amani", "amani@test.cd", "", []string{user.RoleStudent}, true)
	c := testutil.CreateClub(t, clubRepo, "Lions", teacher.ID)

	teacherToken := getToken(t, teacher)

	t.Run("staff required", func(t *testing.T) {
		body := marchallObj(t, book.NewBook{ClubID: c.ID, Title: "Things Fall Apart", Author: "Chinua Achebe", Month: "2021-03"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/books", getToken(t, std), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("month key is validated", func(t *testing.T) {
		body := marchallObj(t, book.NewBook{ClubID: c.ID, Title: "Things Fall Apart", Author: "Chinua Achebe", Month: "March"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/books", teacherToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"month": "must be a YYYY-MM month key"}),
		}, rec)
	})

	var b book.Book
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, book.NewBook{ClubID: c.ID, Title: "Things Fall Apart", Author: "Chinua Achebe", Month: "2021-03"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/books", teacherToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if b.IsRead() {
			t.Error("failed! new book must be unread")
		}
	})

	t.Run("query by club", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/books?club_id="+c.ID, teacherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, b)}, rec)
	})

	t.Run("mark read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/books/"+b.ID+"/read", teacherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var respData book.Book
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if !respData.IsRead() {
			t.Error("failed! book must be read")
		}
	})

	t.Run("filter by read state", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/books?club_id="+c.ID+"&is_read=false", teacherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)
	})

	t.Run("mark unread", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/books/"+b.ID+"/unread", teacherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var respData book.Book
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.IsRead() {
			t.Error("failed! book must be unread")
		}
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, book.UpdateBook{Title: "No Longer at Ease"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/books/"+b.ID, teacherToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var respData book.Book
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.Title != "No Longer at Ease" {
			t.Errorf("failed! Title = %q; want %q", respData.Title, "No Longer at Ease")
		}
		if respData.Month != b.Month {
			t.Errorf("failed! Month = %q; want %q", respData.Month, b.Month)
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/books/lol", teacherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/books/"+b.ID, teacherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
	})
}
