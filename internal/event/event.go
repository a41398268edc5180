// Package event defines the notification envelope placed on the broker.
// The broker treats the payload as opaque bytes; only the mail consumer
// interprets it.
package event

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates event shapes sharing the send-mail queue. It exists so
// the consumer can stay forward-compatible as more notification kinds are
// added to the same topic.
type Kind string

const (
	KindPasswordReset     Kind = "password.reset"
	KindApplicationStatus Kind = "application.status"
)

// Version of the envelope layout.
const Version = 1

// Envelope is a single mail notification unit. The producer renders the
// email; the consumer only dispatches it.
type Envelope struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Version int    `json:"v"`

	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NewEnvelope builds a versioned envelope with a fresh event id. The id is
// what makes at-least-once delivery safe to consume: the mail service
// deduplicates on it.
func NewEnvelope(kind Kind, to, subject, html string) Envelope {
	return Envelope{
		ID:      uuid.NewString(),
		Kind:    kind,
		Version: Version,
		To:      to,
		Subject: subject,
		HTML:    html,
	}
}

// RoutingKey maps the event kind onto the broker routing key. All keys fall
// under the mail.# binding of the send-mail queue.
func (e Envelope) RoutingKey() string {
	return "mail." + string(e.Kind)
}

// Marshal serializes the envelope for the wire.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a wire message back into an envelope and checks the fields
// the consumer cannot work without.
func Decode(body []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(body, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if strings.TrimSpace(e.To) == "" {
		return Envelope{}, fmt.Errorf("decode envelope: empty recipient")
	}
	if e.Kind == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing kind")
	}
	return e, nil
}
