package echoapi

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/book"
	"github.com/trezcool/kitabu/core/club"
	"github.com/trezcool/kitabu/core/guide"
	"github.com/trezcool/kitabu/core/report"
	"github.com/trezcool/kitabu/core/survey"
	"github.com/trezcool/kitabu/core/user"
	emailsvc "github.com/trezcool/kitabu/services/email"
	dummydb "github.com/trezcool/kitabu/storage/database/dummy"
	"github.com/trezcool/kitabu/storage/files"
)

var (
	app  *Server
	conf *core.Config
	db   *dummydb.DB

	usrRepo    user.Repository
	clubRepo   club.Repository
	bookRepo   book.Repository
	surveyRepo survey.Repository
	guideRepo  guide.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	logger := testLogger{std: log.New(os.Stdout, "TEST : ", log.LstdFlags)}

	// set up DB & repos
	var err error
	db, err = dummydb.Open()
	if err != nil {
		log.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	clubRepo = dummydb.NewClubRepository(db)
	bookRepo = dummydb.NewBookRepository(db)
	surveyRepo = dummydb.NewSurveyRepository(db)
	guideRepo = dummydb.NewGuideRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	clubSvc := club.NewServiceMock(clubRepo, usrRepo, mailSvc)
	bookSvc := book.NewService(bookRepo)
	surveySvc := survey.NewService(surveyRepo)

	guideRoot, err := os.MkdirTemp("", "kitabu-guides")
	if err != nil {
		log.Fatalf("os.MkdirTemp(): %v", err)
	}
	defer os.RemoveAll(guideRoot)
	guideStore, err := files.NewLocalStore(guideRoot)
	if err != nil {
		log.Fatalf("files.NewLocalStore(): %v", err)
	}
	guideSvc := guide.NewService(guideRepo, guideStore)

	reportSvc := report.NewService(surveySvc, bookSvc, usrRepo, nil /* cache */, conf)

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger, conf)
	user.LoadCommonPasswords(logger)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			ClubSvc:    clubSvc,
			BookSvc:    bookSvc,
			SurveySvc:  surveySvc,
			GuideSvc:   guideSvc,
			ReportSvc:  reportSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	os.Exit(m.Run())
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// testLogger satisfies core.Logger without reporting anywhere.
type testLogger struct {
	std *log.Logger
}

func (l testLogger) Enable(bool)                          {}
func (l testLogger) Debug(msg string, _ ...interface{})   { l.std.Println(msg) }
func (l testLogger) Info(msg string, _ ...interface{})    { l.std.Println(msg) }
func (l testLogger) Warn(msg string, _ ...interface{})    { l.std.Println(msg) }
func (l testLogger) Error(msg string, _ ...interface{})   { l.std.Println(msg) }
func (l testLogger) Fatal(msg string, args ...interface{}) {
	l.std.Println(msg)
	l.std.Fatal(args...)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
