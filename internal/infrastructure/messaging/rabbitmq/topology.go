package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchange is the platform-wide topic exchange.
	DefaultExchange = "jobboard.events"

	// MailQueue is the consumer queue for rendered notification emails.
	MailQueue = "send-mail"

	// MailBindKey catches every mail.* routing key on the queue.
	MailBindKey = "mail.#"
)

// declareMailTopology declares the exchange, queue and binding the
// notification pipeline relies on. Every declare is idempotent, so both the
// producer and the consumer run it at connect time and either process may
// start first.
func declareMailTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}

	if _, err := ch.QueueDeclare(MailQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	if err := ch.QueueBind(MailQueue, MailBindKey, exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	return nil
}
