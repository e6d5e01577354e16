package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/classpass/backend/internal/domain/enums"
	checkinsvc "github.com/classpass/backend/internal/services/checkin"
)

// Sender delivers a text message to a chat. Implemented by the
// Telegram notifier client.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// GuardianStore resolves the guardian chat for a member. A member
// without a linked guardian yields ok=false and no error.
type GuardianStore interface {
	GuardianChatID(ctx context.Context, memberID int64) (int64, bool, error)
}

// Dispatcher fans attendance notices out to guardians from a single
// background worker. Enqueue never blocks the caller: when the buffer
// is full the notice is dropped and logged.
type Dispatcher struct {
	sender    Sender
	guardians GuardianStore
	logger    *zap.Logger
	queue     chan checkinsvc.Notice

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sender Sender, guardians GuardianStore, queueSize int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:    sender,
		guardians: guardians,
		logger:    logger,
		queue:     make(chan checkinsvc.Notice, queueSize),
		done:      make(chan struct{}),
	}
}

func (d *Dispatcher) Enqueue(notice checkinsvc.Notice) {
	select {
	case d.queue <- notice:
	default:
		d.logger.Warn("notice queue is full, dropping notice",
			zap.String("class_id", notice.ClassID),
			zap.Int64("member_id", notice.MemberID),
		)
	}
}

// Run drains the queue until ctx is cancelled. Delivery failures are
// logged and never fail the worker.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			return
		case notice := <-d.queue:
			d.deliver(ctx, notice)
		}
	}
}

// Wait blocks until the worker started by Run has exited.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) deliver(ctx context.Context, notice checkinsvc.Notice) {
	chatID, ok, err := d.guardians.GuardianChatID(ctx, notice.MemberID)
	if err != nil {
		d.logger.Warn("failed to resolve guardian chat",
			zap.Error(err),
			zap.Int64("member_id", notice.MemberID),
		)
		return
	}
	if !ok {
		return
	}

	if err := d.sender.SendText(ctx, chatID, formatNotice(notice)); err != nil {
		d.logger.Warn("failed to deliver attendance notice",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("class_id", notice.ClassID),
		)
	}
}

func formatNotice(notice checkinsvc.Notice) string {
	when := notice.RedeemedAt.Format("15:04")
	if notice.Status == enums.AttendanceStatusLate {
		return fmt.Sprintf("Checked in to %s at %s (late)", notice.ClassID, when)
	}
	return fmt.Sprintf("Checked in to %s at %s", notice.ClassID, when)
}
