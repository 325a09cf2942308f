package queue

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// AMQPQueue carries topics over RabbitMQ so the server and worker can run as
// separate processes.
type AMQPQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAMQPQueue(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open an AMQP channel")
	}

	return &AMQPQueue{conn: conn, channel: ch}, nil
}

func (q *AMQPQueue) Close() {
	q.channel.Close()
	q.conn.Close()
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.channel.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *AMQPQueue) Publish(topic string, body []byte) error {
	if _, err := q.declare(topic); err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", topic)
	}

	return q.channel.Publish(
		"",    // exchange
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// retryCount reads the x-retry-count header; brokers hand integer headers
// back in differing widths depending on the client that set them.
func retryCount(headers amqp.Table) int32 {
	switch v := headers["x-retry-count"].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

// Subscribe consumes the topic with manual acks. A failing handler is retried
// up to maxRetries times by republishing the body with an incremented
// x-retry-count header; a plain requeue would redeliver the original headers
// unchanged and loop forever.
func (q *AMQPQueue) Subscribe(topic string, handler func(body []byte) error) error {
	queue, err := q.declare(topic)
	if err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", topic)
	}

	msgs, err := q.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // autoAck = false for reliability
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return errors.Wrapf(err, "failed to register consumer for %s", topic)
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				attempt := retryCount(d.Headers)
				if attempt < maxRetries {
					logrus.WithError(err).
						WithField("topic", topic).
						WithField("attempt", attempt+1).
						Warn("failed to process delivery, requeueing")

					pubErr := q.channel.Publish("", topic, false, false, amqp.Publishing{
						ContentType:  "application/json",
						DeliveryMode: amqp.Persistent,
						Headers:      amqp.Table{"x-retry-count": attempt + 1},
						Body:         d.Body,
					})
					if pubErr != nil {
						logrus.WithError(pubErr).
							WithField("topic", topic).
							Error("failed to requeue delivery")
						d.Nack(false, true)
						continue
					}
				} else {
					logrus.WithError(err).
						WithField("topic", topic).
						Error("dropping delivery after max retries")
				}
			}
			d.Ack(false)
		}
	}()

	return nil
}

var _ Queue = (*AMQPQueue)(nil)
