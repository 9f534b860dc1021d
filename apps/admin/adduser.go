package main

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

// translateErr flattens validation errors into a single readable error.
func (cli *commandLine) translateErr(err error) error {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(vErrs))
	for _, msg := range vErrs.Translate(cli.translator) {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}

func (cli *commandLine) addUser(name, email, role, pwd string) error {
	nu := user.NewUser{Name: name, Email: email, Role: role, Password: pwd}
	if err := nu.Validate(cli.validate); err != nil {
		return cli.translateErr(err)
	}

	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	logger.Printf("user %s (%s) created with id %d", usr.Email, usr.Role, usr.ID)
	return nil
}
