package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification, exec ...core.DBExecutor) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n.ID = uuid.New().String()
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, filter *notification.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]notification.Notification, error) {
	repo.db.RLock()
	notifs := make([]notification.Notification, 0, len(repo.db.table))
	for _, n := range repo.db.table {
		notifs = append(notifs, *n)
	}
	repo.db.RUnlock()

	limit := 0
	if filter != nil {
		var filtered []notification.Notification
		for _, n := range notifs {
			if filter.UserID != "" && n.UserID != filter.UserID {
				continue
			}
			if filter.Sent != nil && n.Sent != *filter.Sent {
				continue
			}
			if !filter.CreatedBefore.IsZero() && !n.CreatedAt.Before(filter.CreatedBefore) {
				continue
			}
			filtered = append(filtered, n)
		}
		notifs = filtered
		limit = filter.Limit
	}

	if len(ordering) > 0 {
		asc := ordering[0].Ascending
		sort.SliceStable(notifs, func(i, j int) bool {
			less := notifs[i].CreatedAt.Before(notifs[j].CreatedAt)
			if asc {
				return less
			}
			return !less
		})
	}

	if limit > 0 && len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

func (repo *notificationRepository) DeleteNotificationsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
