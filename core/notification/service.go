package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/user"
)

var (
	ErrNotFound  = errors.New("notification not found")
	ErrForbidden = errors.New("permission denied")

	// NowFunc facilitates mocking time.Now in tests
	NowFunc = time.Now
)

const (
	defaultMaxAgeDays = 30
	cleanupBatchSize  = 500
)

type (
	// Repository abstracts the notification collection.
	Repository interface {
		CreateNotification(ctx context.Context, n Notification, exec ...core.DBExecutor) (Notification, error)
		QueryNotifications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Notification, error)
		DeleteNotificationsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service interface {
		Send(ctx context.Context, userID string, typ Type, data Data) (Notification, error)
		SendMany(ctx context.Context, prin user.Principal, userIDs []string, typ Type, data Data) (int, error)
		SendTest(ctx context.Context, prin user.Principal, userID string) (Notification, error)
		QueryByUser(ctx context.Context, prin user.Principal, userID string) ([]Notification, error)
		Cleanup(ctx context.Context, prin user.Principal, maxAgeDays int) (int, error)

		// case lifecycle hooks
		CaseReceived(ctx context.Context, userID, caseID string) error
		CaseStatusChanged(ctx context.Context, userID, caseID, status, remark, date, clock string) error
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, logger core.Logger, conf *core.Config) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
		logger:  logger,
		conf:    conf,
	}
}

// Send composes the catalog message for typ and stores it for userID.
// The email mirror is dispatched in the background, best-effort.
func (svc *service) Send(ctx context.Context, userID string, typ Type, data Data) (Notification, error) {
	if userID == "" {
		return Notification{}, core.NewValidationError(
			errors.New("user id is required"),
			core.FieldError{Field: "user_id", Error: "required"})
	}

	title, body, payload := Compose(typ, data)
	n, err := svc.repo.CreateNotification(ctx, Notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Data:      payload,
		Sent:      false,
		CreatedAt: NowFunc(),
	})
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}

	go svc.mailNotification(n)
	return n, nil
}

// SendMany fans a broadcast (system update, maintenance window) out to
// the given accounts. Admin only. Returns how many were stored.
func (svc *service) SendMany(ctx context.Context, prin user.Principal, userIDs []string, typ Type, data Data) (int, error) {
	if !prin.IsAdmin() {
		return 0, ErrForbidden
	}

	sent := 0
	for _, uid := range userIDs {
		if _, err := svc.Send(ctx, uid, typ, data); err != nil {
			svc.logger.Error("broadcasting notification", "user", uid, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

// SendTest lets an administrator verify delivery end to end.
func (svc *service) SendTest(ctx context.Context, prin user.Principal, userID string) (Notification, error) {
	if !prin.IsAdmin() {
		return Notification{}, ErrForbidden
	}
	return svc.Send(ctx, userID, TypeTest, Data{"timestamp": NowFunc().Format(time.RFC3339)})
}

// QueryByUser lists a user's notifications, newest first. Users see
// their own; admins see anyone's.
func (svc *service) QueryByUser(ctx context.Context, prin user.Principal, userID string) ([]Notification, error) {
	if !prin.IsAdmin() && prin.ID != userID {
		return nil, ErrForbidden
	}
	ns, err := svc.repo.QueryNotifications(ctx, &QueryFilter{UserID: userID},
		[]core.DBOrdering{{Field: "created_at"}})
	return ns, errors.Wrap(err, "querying notifications")
}

// Cleanup purges notifications older than maxAgeDays, batched so a
// large backlog cannot blow up a single call. Admin only. Returns the
// number of purged records.
func (svc *service) Cleanup(ctx context.Context, prin user.Principal, maxAgeDays int) (int, error) {
	if !prin.IsAdmin() {
		return 0, ErrForbidden
	}
	if maxAgeDays <= 0 {
		maxAgeDays = defaultMaxAgeDays
		if svc.conf.NotificationMaxAge > 0 {
			maxAgeDays = int(svc.conf.NotificationMaxAge / (24 * time.Hour))
		}
	}
	cutoff := NowFunc().AddDate(0, 0, -maxAgeDays)

	ns, err := svc.repo.QueryNotifications(ctx, &QueryFilter{CreatedBefore: cutoff, Limit: cleanupBatchSize}, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying stale notifications")
	}
	if len(ns) == 0 {
		return 0, nil
	}

	ids := make([]string, len(ns))
	for i, n := range ns {
		ids[i] = n.ID
	}
	if err = svc.repo.DeleteNotificationsByID(ctx, ids); err != nil {
		return 0, errors.Wrap(err, "deleting stale notifications")
	}
	return len(ids), nil
}

func (svc *service) CaseReceived(ctx context.Context, userID, caseID string) error {
	_, err := svc.Send(ctx, userID, TypeNewRequest, Data{"form_id": caseID})
	return err
}

// CaseStatusChanged stores the lifecycle transition message for a case.
func (svc *service) CaseStatusChanged(ctx context.Context, userID, caseID, status, remark, date, clock string) error {
	title, body := composeStatusChange(status, remark, date, clock)
	n, err := svc.repo.CreateNotification(ctx, Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Data: Data{
			"type":    string(TypeSessionUpdate),
			"form_id": caseID,
			"status":  status,
			"remarks": remark,
		},
		CreatedAt: NowFunc(),
	})
	if err != nil {
		return errors.Wrap(err, "creating status notification")
	}

	go svc.mailNotification(n)
	return nil
}

// mailNotification mirrors a stored notification to the user's inbox.
// Failures are logged and forgotten.
func (svc *service) mailNotification(n Notification) {
	usr, err := svc.usrRepo.GetUser(context.Background(), user.GetFilter{ID: n.UserID})
	if err != nil {
		svc.logger.Warn("mailing notification", "user", n.UserID, "error", err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: n.Title,
		BodyStr: n.Body,
	})
}
