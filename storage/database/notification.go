package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/notification"
)

type notificationRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Title     string         `db:"title"`
	Body      string         `db:"body"`
	Data      types.JSONText `db:"data"`
	Sent      bool           `db:"sent"`
	CreatedAt time.Time      `db:"created_at"`
}

var notificationColumns = []string{"id", "user_id", "title", "body", "data", "sent", "created_at"}

type notificationRepository struct {
	exec core.DBExecutor
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(exec core.DBExecutor) *notificationRepository {
	return &notificationRepository{exec: exec}
}

func (repo notificationRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo notificationRepository) row(n notification.Notification) (notificationRow, error) {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return notificationRow{}, errors.Wrap(err, "encoding notification data")
	}
	return notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,
		Data:      types.JSONText(data),
		Sent:      n.Sent,
		CreatedAt: n.CreatedAt.UTC(),
	}, nil
}

func (repo notificationRepository) unrow(row notificationRow) (notification.Notification, error) {
	var data notification.Data
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return notification.Notification{}, errors.Wrap(err, "decoding notification data")
		}
	}
	return notification.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Body:      row.Body,
		Data:      data,
		Sent:      row.Sent,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (repo notificationRepository) selectRows(ctx context.Context, exe core.DBExecutor, query string, args []interface{}) ([]notificationRow, error) {
	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rws []notificationRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return nil, err
	}
	return rws, nil
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification, exec ...core.DBExecutor) (notification.Notification, error) {
	n.ID = uuid.New().String()
	row, err := repo.row(n)
	if err != nil {
		return notification.Notification{}, err
	}

	query := fmt.Sprintf(
		`INSERT INTO notifications (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		strings.Join(notificationColumns, ", "))
	_, err = repo.getExec(exec).ExecContext(ctx, query,
		row.ID, row.UserID, row.Title, row.Body, row.Data, row.Sent, row.CreatedAt)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notificationRepository) QueryNotifications(ctx context.Context, filter *notification.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]notification.Notification, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	limit := 0
	if filter != nil {
		if filter.UserID != "" {
			conds = append(conds, "user_id = "+arg(filter.UserID))
		}
		if filter.Sent != nil {
			conds = append(conds, "sent = "+arg(*filter.Sent))
		}
		if !filter.CreatedBefore.IsZero() {
			conds = append(conds, "created_at < "+arg(filter.CreatedBefore.UTC()))
		}
		limit = filter.Limit
	}

	query := `SELECT ` + strings.Join(notificationColumns, ", ") + ` FROM notifications`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}
	if limit > 0 {
		query += " LIMIT " + arg(limit)
	}

	rws, err := repo.selectRows(ctx, repo.getExec(exec), query, args)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}

	notifs := make([]notification.Notification, 0, len(rws))
	for _, row := range rws {
		n, err := repo.unrow(row)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, nil
}

func (repo notificationRepository) DeleteNotificationsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM notifications WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting notifications")
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	if _, err = repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting notifications")
	}
	return nil
}
