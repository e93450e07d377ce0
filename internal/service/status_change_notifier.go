package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/domain"
	"github.com/civicpulse/request-notifier/internal/gateway"
	"github.com/civicpulse/request-notifier/internal/repository"
)

// Limiter throttles gateway sends. *ratelimiter.GatewayLimiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NotifierConfig is the injected message table and delivery hint.
type NotifierConfig struct {
	Messages map[domain.Status]domain.StatusText
	Hint     domain.DeliveryHint
}

// MetricHooks carries the metric callback functions injected by main.
// Both are optional (nil = no-op).
type MetricHooks struct {
	OnOutcome  func(outcome domain.Outcome)
	OnDelivery func(latency time.Duration, err error)
}

// StatusChangeNotifier tells a request's owner when the request reaches a
// terminal status. Each call to Handle is independent and stateless; the
// delivery ledger is the only thing shared between invocations.
type StatusChangeNotifier struct {
	users    repository.UserRepository
	errorLog repository.ErrorLogRepository
	ledger   repository.DeliveryLedger
	gw       gateway.Gateway
	limiter  Limiter
	cfg      NotifierConfig
	hooks    MetricHooks
	logger   *zap.Logger
	now      func() time.Time
}

func NewStatusChangeNotifier(
	users repository.UserRepository,
	errorLog repository.ErrorLogRepository,
	ledger repository.DeliveryLedger,
	gw gateway.Gateway,
	limiter Limiter,
	cfg NotifierConfig,
	hooks MetricHooks,
	logger *zap.Logger,
) *StatusChangeNotifier {
	if ledger == nil {
		ledger = repository.NewNoopDeliveryLedger()
	}
	if hooks.OnOutcome == nil {
		hooks.OnOutcome = func(domain.Outcome) {}
	}
	if hooks.OnDelivery == nil {
		hooks.OnDelivery = func(time.Duration, error) {}
	}
	return &StatusChangeNotifier{
		users: users, errorLog: errorLog, ledger: ledger, gw: gw,
		limiter: limiter, cfg: cfg, hooks: hooks, logger: logger,
		now: time.Now,
	}
}

// Handle processes one committed update. It never fails: delivery problems
// are written to the error log and reported through the returned Outcome.
//
// Decision order:
//  1. status unchanged                 → unchanged
//  2. new status not terminal          → non_terminal
//  3. userId unusable                  → malformed_user_ref (logged only)
//  4. user missing                     → user_not_found
//  5. no active device token           → no_device
//  6. update already delivered         → duplicate
//  7. gateway accepts the message      → sent
//  8. anything failing in steps 3-7    → failed (one error record)
func (n *StatusChangeNotifier) Handle(ctx context.Context, ev domain.ChangeEvent) (outcome domain.Outcome) {
	log := n.logger.With(
		zap.String("request_id", ev.RequestID),
		zap.String("event_id", ev.EventID),
		zap.String("old_status", string(ev.Before.Status)),
		zap.String("new_status", string(ev.After.Status)),
	)
	defer func() { n.hooks.OnOutcome(outcome) }()

	if ev.Before.Status == ev.After.Status {
		log.Debug("status unchanged, nothing to notify")
		return domain.OutcomeUnchanged
	}
	if !ev.After.Status.IsTerminal() {
		log.Debug("non-terminal status, nothing to notify")
		return domain.OutcomeNonTerminal
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while notifying: %v", r)
			log.Error("recovered from panic", zap.Error(err))
			n.recordFailure(ctx, log, ev, rawUserID(ev), err, string(debug.Stack()))
			outcome = domain.OutcomeFailed
		}
	}()

	return n.deliver(ctx, log, ev)
}

func (n *StatusChangeNotifier) deliver(ctx context.Context, log *zap.Logger, ev domain.ChangeEvent) domain.Outcome {
	ref, err := domain.ParseUserRef(ev.After.UserID)
	if err != nil {
		log.Warn("cannot resolve request owner", zap.ByteString("user_id", ev.After.UserID), zap.Error(err))
		return domain.OutcomeMalformedUserRef
	}
	log = log.With(zap.String("user_id", ref.ID))

	user, err := n.users.GetByID(ctx, ref.ID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Info("request owner not found")
		return domain.OutcomeUserNotFound
	}
	if err != nil {
		n.recordFailure(ctx, log, ev, ref.ID, fmt.Errorf("look up user: %w", err), "")
		return domain.OutcomeFailed
	}

	token, ok := user.PushToken()
	if !ok {
		log.Info("request owner has no active device")
		return domain.OutcomeNoDevice
	}

	msg, err := n.compose(ev, ref, token)
	if err != nil {
		n.recordFailure(ctx, log, ev, ref.ID, err, "")
		return domain.OutcomeFailed
	}

	key := ev.DedupKey()
	if key != "" {
		claimed, err := n.ledger.Claim(ctx, key, ev.RequestID)
		switch {
		case err != nil:
			log.Warn("delivery ledger unavailable, sending without dedup", zap.Error(err))
		case !claimed:
			log.Info("update already delivered or in flight", zap.String("dedup_key", key))
			return domain.OutcomeDuplicate
		}
	}

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			n.recordFailure(ctx, log, ev, ref.ID, fmt.Errorf("wait for gateway slot: %w", err), "")
			return domain.OutcomeFailed
		}
	}

	start := time.Now()
	receipt, err := n.gw.Send(ctx, msg)
	n.hooks.OnDelivery(time.Since(start), err)
	if err != nil {
		log.Warn("push gateway send failed", zap.Error(err))
		n.recordFailure(ctx, log, ev, ref.ID, err, "")
		return domain.OutcomeFailed
	}

	if key != "" {
		// The message is out; an unmarked claim only risks a duplicate later.
		if err := n.ledger.MarkSent(ctx, key); err != nil {
			log.Warn("failed to mark delivery sent", zap.String("dedup_key", key), zap.Error(err))
		}
	}

	log.Info("status notification sent", zap.String("receipt_id", receipt.ID))
	return domain.OutcomeSent
}

func (n *StatusChangeNotifier) compose(ev domain.ChangeEvent, ref domain.UserRef, token string) (*domain.PushMessage, error) {
	text, ok := n.cfg.Messages[ev.After.Status]
	if !ok {
		return nil, fmt.Errorf("no message text configured for status %q", ev.After.Status)
	}
	return &domain.PushMessage{
		To:    token,
		Title: text.Title,
		Body:  text.Body,
		Data: domain.PushData{
			RequestID: ev.RequestID,
			NewStatus: string(ev.After.Status),
			OldStatus: string(ev.Before.Status),
			Type:      domain.MessageTypeStatusChange,
			UserID:    ref.ID,
		},
		Hint: n.cfg.Hint,
	}, nil
}

// recordFailure appends one error record. A failing write is logged and
// swallowed. stack defaults to the %+v rendering of err, which carries the
// stack trace for errors created by github.com/pkg/errors.
func (n *StatusChangeNotifier) recordFailure(ctx context.Context, log *zap.Logger, ev domain.ChangeEvent, userID string, cause error, stack string) {
	if stack == "" {
		stack = fmt.Sprintf("%+v", cause)
	}
	rec := &domain.NotificationErrorRecord{
		ID:           uuid.New().String(),
		RequestID:    ev.RequestID,
		UserID:       userID,
		ErrorMessage: cause.Error(),
		Stack:        stack,
		OldStatus:    string(ev.Before.Status),
		NewStatus:    string(ev.After.Status),
		CreatedAt:    n.now().UTC(),
	}
	// The record must land even when the invocation is being torn down.
	if err := n.errorLog.Append(context.WithoutCancel(ctx), rec); err != nil {
		log.Error("failed to persist notification error",
			zap.NamedError("cause", cause), zap.Error(err))
	}
}

func rawUserID(ev domain.ChangeEvent) string {
	if ref, err := domain.ParseUserRef(ev.After.UserID); err == nil {
		return ref.ID
	}
	return string(ev.After.UserID)
}
