package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trezcool/kitabu/core/guide"
	"github.com/trezcool/kitabu/core/user"
	testutil "github.com/trezcool/kitabu/tests"
)

func newUploadRequest(t *testing.T, token string, fields map[string]string, fileName, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(): %v", err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("CreateFormFile(): %v", err)
		}
		if _, err = io.WriteString(fw, content); err != nil {
			t.Fatalf("WriteString(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart.Writer.Close(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/guides", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	return req, rec
}

func Test_guideApi(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	std := testutil.CreateUser(t, usrRepo, "Amani", "amani", "amani@test.cd", "", []string{user.RoleStudent}, true)

	teacherToken := getToken(t, teacher)
	content := "1. Read chapters 1-3.\n2. Discuss the main character.\n"

	t.Run("staff required", func(t *testing.T) {
		req, rec := newUploadRequest(t, getToken(t, std), map[string]string{"title": "Guide"}, "guide.txt", content)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("file part required", func(t *testing.T) {
		req, rec := newUploadRequest(t, teacherToken, map[string]string{"title": "Guide"}, "", "")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "a \"file\" part is required"})}, rec)
	})

	t.Run("title required", func(t *testing.T) {
		req, rec := newUploadRequest(t, teacherToken, nil, "guide.txt", content)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		}, rec)
	})

	var gd guide.Guide
	t.Run("upload", func(t *testing.T) {
		fields := map[string]string{"title": "Discussion guide", "description": "March edition"}
		req, rec := newUploadRequest(t, teacherToken, fields, "guide.txt", content)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &gd); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if gd.UploadedBy != teacher.ID {
			t.Errorf("failed! UploadedBy = %v; want %v", gd.UploadedBy, teacher.ID)
		}
		if gd.Size != int64(len(content)) {
			t.Errorf("failed! Size = %d; want %d", gd.Size, len(content))
		}
		if gd.ClubID.Valid {
			t.Error("failed! guide must be shared (null club)")
		}
	})

	t.Run("list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/guides", getToken(t, std))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, gd)}, rec)
	})

	t.Run("download", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/guides/"+gd.ID+"/file", getToken(t, std))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if got := rec.Body.String(); got != content {
			t.Errorf("failed! body = %q; want %q", got, content)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/guides/"+gd.ID, teacherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/guides/"+gd.ID, teacherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})
}
