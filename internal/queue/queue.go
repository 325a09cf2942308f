package queue

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Topic names shared by the server and worker processes.
const (
	TopicDispatch       = "message_dispatch"
	TopicDeliveryStatus = "delivery_status"
)

// Queue decouples the dispatch coordinator from message delivery and carries
// asynchronous provider status events back to the tracker.
type Queue interface {
	Publish(topic string, body []byte) error
	Subscribe(topic string, handler func(body []byte) error) error
}

// InMemoryQueue is a process-local queue used in development and tests.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(body []byte) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(body []byte) error),
	}
}

const maxRetries = 3

// Publish delivers the body to every subscriber of the topic, each on its own
// goroutine with bounded retries.
func (q *InMemoryQueue) Publish(topic string, body []byte) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return errors.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go q.processJob(topic, handler, body)
	}
	return nil
}

func (q *InMemoryQueue) processJob(topic string, handler func(body []byte) error, body []byte) {
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := handler(body)
		if err == nil {
			return
		}

		logrus.WithError(err).
			WithField("topic", topic).
			WithField("attempt", attempt).
			Warn("queue handler failed")

		if attempt == maxRetries {
			return
		}
		time.Sleep(time.Duration(attempt*500) * time.Millisecond)
	}
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(body []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)
