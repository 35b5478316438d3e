package notify

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
	done chan struct{}
}

func (s *recordingSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	select {
	case s.done <- struct{}{}:
	default:
	}
	return s.err
}

func (s *recordingSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func waitFor(t *testing.T, ch chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for send %d", i+1)
		}
	}
}

func testConfirmation() Confirmation {
	return Confirmation{
		ClientName:  "Anna Kowalska",
		ClientEmail: "anna@example.com",
		ServiceName: "Deep Tissue Massage",
		Date:        "2026-09-07",
		StartTime:   "14:30",
	}
}

func TestDispatch_SendsBothEmails(t *testing.T) {
	sender := &recordingSender{done: make(chan struct{}, 2)}
	d := NewDispatcher(sender, slog.Default(), "studio@example.com")

	d.Dispatch(testConfirmation())
	waitFor(t, sender.done, 2)

	got := sender.recipients()
	require.Len(t, got, 2)
	assert.Equal(t, "studio@example.com", got[0])
	assert.Equal(t, "anna@example.com", got[1])
}

func TestDispatch_SkipsEmptyRecipients(t *testing.T) {
	sender := &recordingSender{done: make(chan struct{}, 2)}
	d := NewDispatcher(sender, slog.Default(), "")

	c := testConfirmation()
	d.Dispatch(c)
	waitFor(t, sender.done, 1)
	assert.Equal(t, []string{"anna@example.com"}, sender.recipients())
}

func TestDispatch_FailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{done: make(chan struct{}, 2), err: errors.New("smtp down")}
	d := NewDispatcher(sender, slog.Default(), "studio@example.com")

	// Must not panic or block the caller.
	d.Dispatch(testConfirmation())
	waitFor(t, sender.done, 2)
}

func TestDispatch_NilSenderIsNoop(t *testing.T) {
	d := NewDispatcher(nil, slog.Default(), "studio@example.com")
	d.Dispatch(testConfirmation())
}

func TestMessages(t *testing.T) {
	c := testConfirmation()

	subject, body := ClientMessage(c)
	assert.Equal(t, "Your appointment is booked", subject)
	assert.Contains(t, body, "Anna Kowalska")
	assert.Contains(t, body, "Deep Tissue Massage")
	assert.Contains(t, body, "2026-09-07")
	assert.Contains(t, body, "14:30")

	subject, body = StudioMessage(c)
	assert.Equal(t, "New appointment booked", subject)
	assert.Contains(t, body, "anna@example.com")
}
