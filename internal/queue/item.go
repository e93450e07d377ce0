package queue

// Item is the minimal data placed on the queue.
// Workers fetch the full event from the outbox using the ID,
// keeping the queue lightweight and the stored data authoritative.
type Item struct {
	EventID string
}
