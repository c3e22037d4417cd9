package main

import (
	"context"
	"fmt"

	"github.com/gabayhq/gabay/core/user"
)

// purgeNotifications deletes notifications older than maxAgeDays,
// falling back to the configured retention when 0.
func (cli *commandLine) purgeNotifications(maxAgeDays int) error {
	prin := user.Principal{Username: "admin-cli", Roles: user.AdminRoles}
	purged, err := cli.notifSvc.Cleanup(context.Background(), prin, maxAgeDays)
	if err != nil {
		return err
	}
	fmt.Printf("purged %d notifications\n", purged)
	return nil
}
