// Package queue defines the outbound email payload exchanged over the
// message broker, the consumer that delivers it and the SMTP sender used
// for delivery.
package queue

import "time"

// EmailQueueName is the durable queue outbound emails are published to.
const EmailQueueName = "email.outbound"

// EmailMessage is one plain text email. It is published by the API and
// delivered by the consumer; it carries everything needed to send it
// without querying the database.
type EmailMessage struct {
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	Text        string    `json:"text"`
	RequestedAt time.Time `json:"requested_at"`
}
