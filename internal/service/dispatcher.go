package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shelterhub/adoptd/internal/domain"
)

// NotificationRepository persists in-app notification rows.
type NotificationRepository interface {
	Insert(ctx context.Context, n domain.Notification) error
}

// EmailQueue persists durable email-queue rows for the external worker.
type EmailQueue interface {
	Enqueue(ctx context.Context, e domain.EmailQueueEntry) error
}

// MemberLister resolves the recipients of a foundation fan-out.
type MemberLister interface {
	Members(ctx context.Context, foundationID int64) ([]domain.Membership, error)
}

// Dispatcher is the announce phase of a transition. Everything here is
// best-effort: a lost notification must never unwind an already committed
// status change, so failures are logged and swallowed.
type Dispatcher struct {
	notifications NotificationRepository
	emails        EmailQueue
	members       MemberLister
	signal        *SignalService
}

func NewDispatcher(
	notifications NotificationRepository,
	emails EmailQueue,
	members MemberLister,
	signal *SignalService,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		emails:        emails,
		members:       members,
		signal:        signal,
	}
}

func (d *Dispatcher) NotifyUser(ctx context.Context, n domain.Notification) {
	ctx, span := tracer.Start(ctx, "Dispatcher.NotifyUser")
	defer span.End()

	d.insert(ctx, n)
}

// NotifyFoundation fans one notification out to every member of the
// foundation. Inserts are independent rows, so they run concurrently.
func (d *Dispatcher) NotifyFoundation(ctx context.Context, foundationID int64, n domain.Notification) {
	ctx, span := tracer.Start(ctx, "Dispatcher.NotifyFoundation")
	defer span.End()

	members, err := d.members.Members(ctx, foundationID)
	if err != nil {
		span.RecordError(errors.Wrap(err, "member lookup failed"))
		slog.ErrorContext(ctx, "notification fan-out skipped",
			slog.Int64("foundation_id", foundationID),
			slog.String("error", err.Error()),
		)
		return
	}

	var wg sync.WaitGroup
	for _, m := range members {
		recipient := n
		recipient.UserID = m.UserID
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.insert(ctx, recipient)
		}()
	}
	wg.Wait()
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, e domain.EmailQueueEntry) {
	ctx, span := tracer.Start(ctx, "Dispatcher.EnqueueEmail")
	defer span.End()

	if err := d.emails.Enqueue(ctx, e); err != nil {
		span.RecordError(errors.Wrap(err, "email enqueue failed"))
		slog.ErrorContext(ctx, "email enqueue failed",
			slog.String("template", e.Template),
			slog.String("error", err.Error()),
		)
	}
}

func (d *Dispatcher) insert(ctx context.Context, n domain.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if err := d.notifications.Insert(ctx, n); err != nil {
		slog.ErrorContext(ctx, "notification insert failed",
			slog.String("user_id", n.UserID),
			slog.String("type", n.Type),
			slog.String("error", err.Error()),
		)
		return
	}

	if d.signal != nil {
		if err := d.signal.Publish(ctx, n); err != nil {
			slog.DebugContext(ctx, "notification publish failed",
				slog.String("user_id", n.UserID),
				slog.String("error", err.Error()),
			)
		}
	}
}
