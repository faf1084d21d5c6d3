package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/plan"
	"github.com/logopedika/kabinet/core/progress"
	"github.com/logopedika/kabinet/core/report"
	"github.com/logopedika/kabinet/core/schedule"
	"github.com/logopedika/kabinet/core/snapshot"
	"github.com/logopedika/kabinet/core/student"
	"github.com/logopedika/kabinet/core/user"
	emailsvc "github.com/logopedika/kabinet/services/email"
	logsvc "github.com/logopedika/kabinet/services/logger"
	inmemdb "github.com/logopedika/kabinet/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server Server
	conf   *core.Config

	usrRepo user.Repository
	usrSvc  *user.Service
	stdSvc  *student.Service
	planSvc *plan.Service
	schSvc  *schedule.Service
	prgSvc  *progress.Service
	snapSvc *snapshot.Service
	rptSvc  *report.Service
}

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:         true,
		AppName:          "Kabinet",
		SecretKey:        "secret",
		FrontendBaseURL:  "http://localhost:5500",
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		},
	}
}

func setup(t *testing.T) *testApp {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}

	conf := newTestConfig()
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	usrRepo := inmemdb.NewUserRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	planRepo := inmemdb.NewPlanRepository(db)
	schRepo := inmemdb.NewScheduleRepository(db)
	prgRepo := inmemdb.NewProgressRepository(db)

	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "TEST : ", 0), conf)
	logger.Enable(false)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	stdSvc := student.NewService(stdRepo)
	planSvc := plan.NewService(planRepo)
	schSvc := schedule.NewService(schRepo, stdSvc)
	prgSvc := progress.NewService(prgRepo, stdSvc, planSvc)
	snapSvc := snapshot.NewService(stdRepo, schRepo, planRepo, prgRepo)
	rptSvc := report.NewService(conf, schSvc, stdSvc, prgSvc, mailSvc)

	app := NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		StudentSvc:     stdSvc,
		PlanSvc:        planSvc,
		ScheduleSvc:    schSvc,
		ProgressSvc:    prgSvc,
		SnapshotSvc:    snapSvc,
		ReportSvc:      rptSvc,
	})

	return &testApp{
		server:  app,
		conf:    conf,
		usrRepo: usrRepo,
		usrSvc:  usrSvc,
		stdSvc:  stdSvc,
		planSvc: planSvc,
		schSvc:  schSvc,
		prgSvc:  prgSvc,
		snapSvc: snapSvc,
		rptSvc:  rptSvc,
	}
}

func createUser(t *testing.T, app *testApp, name, uname, email, pwd string, isActive bool) user.User {
	t.Helper()

	usr, err := app.usrSvc.Create(context.Background(), user.NewUser{
		Name:     name,
		Username: uname,
		Email:    email,
		Password: pwd,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	if !isActive {
		usr, err = app.usrRepo.UpdateUser(context.Background(), user.User{ID: usr.ID}, &isActive)
		if err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	return usr
}

func createStudent(t *testing.T, app *testApp, ownerID, name, grade string, planType int) student.Student {
	t.Helper()

	st, err := app.stdSvc.Create(context.Background(), ownerID, student.NewStudent{
		Name:     name,
		Grade:    grade,
		PlanType: planType,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return st
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

func getToken(t *testing.T, app *testApp, usr user.User) string {
	t.Helper()

	claims := GetUserClaims(app.conf, usr)
	token, err := GenerateToken(app.conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
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
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		if rec.Body.Len() > 0 {
			t.Errorf("failed! data = %v; want empty body", rec.Body.String())
		}
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
