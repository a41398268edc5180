package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// FakeSender is the development sender: it logs instead of dialing SMTP and
// records what it would have sent.
type FakeSender struct {
	lg zerolog.Logger

	mu   sync.Mutex
	sent []FakeMail

	// Err, when set, is returned from every Send.
	Err error
}

type FakeMail struct {
	To      string
	Subject string
	HTML    string
}

func NewFakeSender(lg zerolog.Logger) *FakeSender {
	return &FakeSender{
		lg: lg.With().Str("component", "fake_sender").Logger(),
	}
}

func (s *FakeSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	s.sent = append(s.sent, FakeMail{To: to, Subject: subject, HTML: htmlBody})
	s.lg.Info().Str("to", to).Str("subject", subject).Msg("FAKE mail send")
	return nil
}

// Sent returns a copy of everything dispatched so far.
func (s *FakeSender) Sent() []FakeMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FakeMail, len(s.sent))
	copy(out, s.sent)
	return out
}
