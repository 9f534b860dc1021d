package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/smpn3kaledupa/presensi-nilai/apps/api/echo"
	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
	"github.com/smpn3kaledupa/presensi-nilai/core/report"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	logsvc "github.com/smpn3kaledupa/presensi-nilai/services/logger"
	"github.com/smpn3kaledupa/presensi-nilai/storage/database"
	dummydb "github.com/smpn3kaledupa/presensi-nilai/storage/database/dummy"
	sqlxrepos "github.com/smpn3kaledupa/presensi-nilai/storage/database/sqlx"
)

type repositories struct {
	users         user.Repository
	school        school.Repository
	attendance    attendance.Repository
	grades        grade.Repository
	reports       report.Repository
	notifications notification.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	repos, closer, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = closer.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	usrSvc := user.NewService(repos.users)
	schoolSvc := school.NewService(repos.school, usrSvc, conf.Grading.ImportPassword)
	attendanceSvc := attendance.NewService(repos.attendance, repos.school, repos.notifications)
	gradeSvc := grade.NewService(repos.grades, repos.school, repos.users)
	reportSvc := report.NewService(repos.reports, grade.Weights{
		Daily:   conf.Grading.DefaultDailyWeight,
		Midterm: conf.Grading.DefaultMidtermWeight,
		Final:   conf.Grading.DefaultFinalWeight,
	})
	notifSvc := notification.NewService(repos.notifications, repos.school)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q (storage: %s)", conf.Build, conf.Database.Storage))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Database.Storage)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			UserSvc:         usrSvc,
			SchoolSvc:       schoolSvc,
			AttendanceSvc:   attendanceSvc,
			GradeSvc:        gradeSvc,
			ReportSvc:       reportSvc,
			NotificationSvc: notifSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setUpStorage returns the repositories of the configured storage along with what must be closed on exit.
func setUpStorage(conf *core.Config) (repositories, io.Closer, error) {
	switch conf.Database.Storage {
	case core.StorageMemory:
		db := dummydb.Open()
		return repositories{
			users:         dummydb.NewUserRepository(db),
			school:        dummydb.NewSchoolRepository(db),
			attendance:    dummydb.NewAttendanceRepository(db),
			grades:        dummydb.NewGradeRepository(db),
			reports:       dummydb.NewReportRepository(db),
			notifications: dummydb.NewNotificationRepository(db),
		}, nopCloser{}, nil

	case core.StoragePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return repositories{}, nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return repositories{}, nil, err
		}
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return repositories{}, nil, err
		}
		return repositories{
			users:         sqlxrepos.NewUserRepository(db),
			school:        sqlxrepos.NewSchoolRepository(db),
			attendance:    sqlxrepos.NewAttendanceRepository(db),
			grades:        sqlxrepos.NewGradeRepository(db),
			reports:       sqlxrepos.NewReportRepository(db),
			notifications: sqlxrepos.NewNotificationRepository(db),
		}, db, nil
	}
	return repositories{}, nil, errors.Errorf("unknown storage %q", conf.Database.Storage)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
