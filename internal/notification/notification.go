package notification

import (
	"motorcover/internal/notification/emitter"
	"motorcover/internal/notification/mailer"
	"motorcover/internal/notification/relay"
)

// Emitter appends lifecycle events to the outbox.
type Emitter = emitter.Emitter

// Relay drains the outbox and delivers mail.
type Relay = relay.Relay

// Mailer delivers a single message.
type Mailer = mailer.Mailer

// NewEmitter constructs the outbox-backed event sink services emit to.
func NewEmitter(outbox emitter.OutboxWriter) *Emitter {
	return emitter.New(outbox)
}

// NewRelay constructs the background dispatcher.
func NewRelay(outbox relay.Outbox, m mailer.Mailer, users relay.RecipientResolver, opts ...relay.Option) *Relay {
	return relay.New(outbox, m, users, opts...)
}
