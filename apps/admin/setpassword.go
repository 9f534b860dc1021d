package main

import (
	"context"

	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

func (cli *commandLine) setPassword(email, pwd string) error {
	usr, err := cli.usrSvc.GetByEmail(context.Background(), email)
	if err != nil {
		return err
	}

	// apply the same policy as new accounts
	nu := user.NewUser{Name: usr.Name, Email: usr.Email, Role: usr.Role, Password: pwd}
	if err = nu.Validate(cli.validate); err != nil {
		return cli.translateErr(err)
	}

	if _, err = cli.usrSvc.SetPassword(context.Background(), usr.Email, pwd); err != nil {
		return err
	}
	logger.Printf("password of %s updated", usr.Email)
	return nil
}
