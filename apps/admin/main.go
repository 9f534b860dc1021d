package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	logsvc "github.com/smpn3kaledupa/presensi-nilai/services/logger"
	"github.com/smpn3kaledupa/presensi-nilai/storage/database"
	sqlxrepos "github.com/smpn3kaledupa/presensi-nilai/storage/database/sqlx"
)

var logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

func main() {
	conf := core.NewConfig()

	errLogger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	errLogger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		errLogger.Fatal("setting up database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		errLogger.Fatal("opening database", err)
	}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))

	// start CLI
	cli := commandLine{
		db:         db.DB,
		usrSvc:     usrSvc,
		schoolSvc:  school.NewService(sqlxrepos.NewSchoolRepository(db), usrSvc, conf.Grading.ImportPassword),
		validate:   validate,
		translator: translator,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			errLogger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
