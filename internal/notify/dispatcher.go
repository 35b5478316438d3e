package notify

import (
	"log/slog"
	"strings"

	"studiobook/internal/metrics"
)

// Dispatcher sends confirmation emails after a booking commits. Delivery is
// best effort: every failure is logged and counted, none is ever surfaced to
// the booking caller or allowed to unwind into the commit path.
type Dispatcher struct {
	sender      Sender
	logger      *slog.Logger
	studioEmail string
}

func NewDispatcher(sender Sender, logger *slog.Logger, studioEmail string) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		logger:      logger,
		studioEmail: strings.TrimSpace(studioEmail),
	}
}

// Dispatch fires the confirmation emails in a background goroutine and
// returns immediately.
func (d *Dispatcher) Dispatch(c Confirmation) {
	if d == nil || d.sender == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification dispatch panic", "panic", r)
			}
		}()

		if d.studioEmail != "" {
			subject, body := StudioMessage(c)
			d.send(d.studioEmail, subject, body)
		}
		if c.ClientEmail != "" {
			subject, body := ClientMessage(c)
			d.send(c.ClientEmail, subject, body)
		}
	}()
}

func (d *Dispatcher) send(to, subject, body string) {
	if err := d.sender.Send(to, subject, body); err != nil {
		metrics.IncNotification("failed")
		d.logger.Error("confirmation email failed", "err", err, "recipient", to)
		return
	}
	metrics.IncNotification("sent")
}
