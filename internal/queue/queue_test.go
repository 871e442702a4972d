package queue

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-booking/internal/config"
)

type recordingSender struct {
	got []EmailMessage
	err error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.got = append(r.got, msg)
	return r.err
}

func TestHandleMessage(t *testing.T) {
	s := &recordingSender{}

	require.NoError(t, handleMessage(context.Background(), []byte(`{"to":"a@b.io","subject":"hi","text":"body"}`), s))
	require.Len(t, s.got, 1)
	assert.Equal(t, "a@b.io", s.got[0].To)

	assert.Error(t, handleMessage(context.Background(), []byte(`not json`), s))
	assert.Error(t, handleMessage(context.Background(), []byte(`{"subject":"no recipient"}`), s))

	s.err = errors.New("relay down")
	assert.Error(t, handleMessage(context.Background(), []byte(`{"to":"a@b.io"}`), s))
}

func TestSMTPSender_Send(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	s := NewSMTPSender(config.MailConfig{Host: "mail.local", Port: 2525, From: "Tour Booking <no-reply@tour-booking.local>"})
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err := s.Send(context.Background(), EmailMessage{
		To:          "jonas@example.com",
		Subject:     "Your password reset token (valid for 10 minutes!)",
		Text:        "line one\nline two",
		RequestedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "no-reply@tour-booking.local", gotFrom)
	assert.Equal(t, []string{"jonas@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: Tour Booking <no-reply@tour-booking.local>\r\n"))
	assert.Contains(t, gotMsg, "Subject: Your password reset token (valid for 10 minutes!)\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "line one\r\nline two"))
}

func TestSMTPSender_SendError(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "mail.local", Port: 25})
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }

	assert.ErrorContains(t, s.Send(context.Background(), EmailMessage{To: "a@b.io"}), "refused")
}
