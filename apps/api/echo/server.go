package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
	"github.com/smpn3kaledupa/presensi-nilai/core/report"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

type (
	ServerDeps struct {
		Conf            *core.Config
		Logger          core.Logger
		UserSvc         *user.Service
		SchoolSvc       *school.Service
		AttendanceSvc   *attendance.Service
		GradeSvc        *grade.Service
		ReportSvc       *report.Service
		NotificationSvc *notification.Service
		Validate        *validator.Validate
		Translator      ut.Translator
		DisableReqLogs  bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.GET("/", s.home)
	s.app.GET("/healthcheck", healthcheck)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)

	registerUserAPI(v1, jwt, s.auth, s.deps.UserSvc, s.deps.Validate)
	registerSchoolAPI(v1, jwt, s.deps.SchoolSvc, s.deps.Validate)
	registerAttendanceAPI(v1, jwt, s.auth, s.deps.AttendanceSvc, s.deps.Validate)
	registerGradeAPI(v1, jwt, s.auth, s.deps.GradeSvc, s.deps.Validate)
	registerReportAPI(v1, jwt, s.deps.ReportSvc)
	registerNotificationAPI(v1, jwt, s.deps.NotificationSvc, s.deps.Validate)
}

// Start listens on the configured host; a listener failure is sent on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}

func healthcheck(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
