package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	usrSvc     *user.Service
	schoolSvc  *school.Service
	validate   *validator.Validate
	translator ut.Translator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, up-to, down, down-to, redo, reset, status, version)")
	fmt.Println("  adduser -name NAME -email EMAIL -role ROLE - create a user, the password will be prompted next")
	fmt.Println("  setpassword -email EMAIL - set a user's password, the password will be prompted next")
	fmt.Println("  importstudents -class CLASS_ID -file FILE.xlsx - import students and their parents into a class")
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRole := addUserCmd.String("role", user.RoleAdmin, "One of admin, teacher, student or parent.")

	setPasswordCmd := flag.NewFlagSet("setpassword", flag.ContinueOnError)
	setPasswordEmail := setPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	importCmd := flag.NewFlagSet("importstudents", flag.ContinueOnError)
	importClass := importCmd.Int("class", 0, "The id of the class students are imported into.")
	importFile := importCmd.String("file", "", "The .xlsx workbook to import.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, *addUserRole, pwd)

	case "setpassword":
		if err := setPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setPasswordEmail == "" {
			setPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			setPasswordCmd.Usage()
			return errHelp
		}
		return cli.setPassword(*setPasswordEmail, pwd)

	case "importstudents":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importClass == 0 || *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(*importClass, *importFile)

	default:
		cli.printUsage()
		return errHelp
	}
}
