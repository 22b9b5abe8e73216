// Package email envía el correo de notificación con el código de verificación.
// Two providers: the Resend HTTP API (hosted deployments) and plain SMTP.
package email

import "context"

// Message is a single outbound email. From and To come from deployment
// config; the dispatcher never derives them from request data.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers one message and returns the provider-side message id.
// No retries: a failed send surfaces to the caller as-is.
type Sender interface {
	Send(ctx context.Context, m Message) (id string, err error)
}
