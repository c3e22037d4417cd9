package dummydb

import (
	"sync"

	"github.com/gabayhq/gabay/core/casefile"
	"github.com/gabayhq/gabay/core/notification"
	"github.com/gabayhq/gabay/core/user"
)

type (
	DB struct {
		user         *userTable
		casefile     *caseTable
		notification *notificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	caseTable struct {
		sync.RWMutex
		table map[string]*casefile.Case
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		casefile:     &caseTable{table: make(map[string]*casefile.Case)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}
