package mailer

import "context"

// Message is one outbound email. Attachment is optional; when present it is
// sent as a MIME part named AttachmentName.
type Message struct {
	To             string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// Mailer delivers a single message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
