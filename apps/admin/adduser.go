package main

import (
	"context"

	"github.com/gradahq/grada/core"
	"github.com/gradahq/grada/core/user"
)

// addUser creates a new user.User, or resets an existing user's password.
func (cli *commandLine) addUser(name, uname, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			FullName:     name,
			Username:     uname,
			Email:        email,
			IsActive:     true,
			SemesterTerm: user.TermFall2025,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err := cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.FullName = name
	usr.IsActive = true
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
