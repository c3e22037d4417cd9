package main

import (
	"log"
	"os"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/notification"
	emailsvc "github.com/gabayhq/gabay/services/email"
	logsvc "github.com/gabayhq/gabay/services/logger"
	"github.com/gabayhq/gabay/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	usrRepo := database.NewUserRepository(db)
	notifRepo := database.NewNotificationRepository(db)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logsvc.NewRollbarLogger(logger, conf))
	}
	notifSvc := notification.NewService(notifRepo, usrRepo, mailSvc, logsvc.NewRollbarLogger(logger, conf), conf)

	// start CLI
	cli := commandLine{
		db:       db,
		usrRepo:  usrRepo,
		notifSvc: notifSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
