package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
	"github.com/smpn3kaledupa/presensi-nilai/core/report"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	logsvc "github.com/smpn3kaledupa/presensi-nilai/services/logger"
	dummydb "github.com/smpn3kaledupa/presensi-nilai/storage/database/dummy"
	testutil "github.com/smpn3kaledupa/presensi-nilai/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server     *Server
	conf       *core.Config
	usrRepo    user.Repository
	schoolRepo school.Repository
}

func setup(t *testing.T) testApp {
	conf := &core.Config{
		AppName:   "Presensi Nilai",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "secret",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	// set up DB & repos
	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	schoolRepo := dummydb.NewSchoolRepository(db)
	notifRepo := dummydb.NewNotificationRepository(db)

	// set up services
	usrSvc := user.NewService(usrRepo)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		UserSvc:         usrSvc,
		SchoolSvc:       school.NewService(schoolRepo, usrSvc, "temp123"),
		AttendanceSvc:   attendance.NewService(dummydb.NewAttendanceRepository(db), schoolRepo, notifRepo),
		GradeSvc:        grade.NewService(dummydb.NewGradeRepository(db), schoolRepo, usrRepo),
		ReportSvc:       report.NewService(dummydb.NewReportRepository(db), grade.DefaultWeights),
		NotificationSvc: notification.NewService(notifRepo, schoolRepo),
		Validate:        validate,
		Translator:      translator,
		DisableReqLogs:  true,
	})
	return testApp{server: server, conf: conf, usrRepo: usrRepo, schoolRepo: schoolRepo}
}

func (app testApp) createUser(t *testing.T, name, email, role string) user.User {
	return testutil.CreateUser(t, app.usrRepo, name, email, "P@ssw0rd!", role)
}

func (app testApp) token(t *testing.T, usr user.User) string {
	token, err := GenerateToken(app.conf, GetUserClaims(app.conf, usr))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

func (app testApp) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	app.server.ServeHTTP(rec, req)
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

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}
