// Package mail contains the outbound email boundary: a narrow Mailer
// interface the services depend on, an SMTP implementation, and the HTML
// templates for reset emails. Delivery is best-effort; callers log failures
// but never surface them to the client.
package mail

import "context"

// Mailer sends a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
