package main

import (
	"context"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/user"
)

// createAdmin updates or creates a counseling office account with the
// full admin role set. Admins are only ever provisioned here, never
// through the API.
func (cli *commandLine) createAdmin(name, uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}})
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username: uname,
			Email:    email,
		}
	}
	if name != "" {
		usr.Name = name
	}
	usr.Roles = user.AdminRoles
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
