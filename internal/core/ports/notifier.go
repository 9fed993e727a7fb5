package ports

import (
	"context"

	"github.com/staffdesk/auth-service/internal/core/domain"
)

// Notification is a single outbound message.
type Notification struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Notifier accepts notifications for asynchronous, best-effort delivery.
// Enqueue never blocks the caller on delivery and never reports send errors;
// a failed send must not roll back the lifecycle change that triggered it.
type Notifier interface {
	Enqueue(n Notification)
}

// Mailer delivers a single message synchronously.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string, html bool) error
}

// LifecycleNotifier emits the account lifecycle notifications. All methods
// are fire-and-forget.
type LifecycleNotifier interface {
	// AccountCreated is the one-time disclosure channel for admin-created
	// credentials; password is never persisted or logged in clear form.
	AccountCreated(account *domain.Account, password string)
	AccountApproved(account *domain.Account)
	AccountRejected(account *domain.Account)
	// PasswordReset carries the opaque reset token to the account's email.
	PasswordReset(account *domain.Account, token string)
}
