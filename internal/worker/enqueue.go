package worker

import (
	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/queue"
)

// offer enqueues id and reports whether it was accepted. A full queue is not
// fatal: the event stays unprocessed in the outbox.
func offer(q *queue.EventQueue, id string, onDropped func(), logger *zap.Logger) bool {
	if err := q.Enqueue(queue.Item{EventID: id}); err != nil {
		logger.Warn("could not enqueue event", zap.String("event_id", id), zap.Error(err))
		if onDropped != nil {
			onDropped()
		}
		return false
	}
	return true
}
