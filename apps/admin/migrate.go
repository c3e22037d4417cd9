package main

import (
	"github.com/pressly/goose/v3"

	appfs "github.com/gabayhq/gabay/fs"
)

var gooseRunFunc = goose.Run // mockable

// migrate runs a goose command against the embedded migrations,
// eg. `admin migrate up`, `admin migrate down-to 1`, `admin migrate status`.
func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, "migrations", arguments...)
}
