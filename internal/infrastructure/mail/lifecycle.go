package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"github.com/staffdesk/auth-service/internal/core/domain"
	"github.com/staffdesk/auth-service/internal/core/ports"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Welcome, {{.Username}}</h2>
  <p>An account has been created for you. Your credentials:</p>
  <p><strong>Username:</strong> {{.Username}}<br>
  <strong>Password:</strong> {{.Password}}</p>
  <p>Please log in and change your password immediately.</p>
</body>
</html>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Password reset requested</h2>
  <p>Use the link below to choose a new password. The link expires shortly.</p>
  <p><a href="{{.Link}}">Reset your password</a></p>
  <p>If you did not request this, you can ignore this message.</p>
</body>
</html>`))

// LifecycleMailer turns account lifecycle events into notifications and
// hands them to the async dispatcher. All methods are fire-and-forget:
// rendering failures are logged and the message is dropped.
type LifecycleMailer struct {
	sink    ports.Notifier
	baseURL string
	log     zerolog.Logger
}

func NewLifecycleMailer(sink ports.Notifier, baseURL string, log zerolog.Logger) *LifecycleMailer {
	return &LifecycleMailer{sink: sink, baseURL: baseURL, log: log}
}

// AccountCreated sends the welcome mail carrying the plaintext password.
// This is the one-time disclosure channel; the password is not retrievable
// afterwards.
func (m *LifecycleMailer) AccountCreated(account *domain.Account, password string) {
	var body bytes.Buffer
	err := welcomeTmpl.Execute(&body, struct {
		Username string
		Password string
	}{account.Username, password})
	if err != nil {
		m.log.Warn().Err(err).Str("username", account.Username).Msg("failed to render welcome mail")
		return
	}

	m.sink.Enqueue(ports.Notification{
		To:      account.Email,
		Subject: "Your account has been created",
		Body:    body.String(),
		HTML:    true,
	})
}

func (m *LifecycleMailer) AccountApproved(account *domain.Account) {
	m.sink.Enqueue(ports.Notification{
		To:      account.Email,
		Subject: "Your account has been approved",
		Body:    fmt.Sprintf("Hello %s, your account has been approved. You can now log in.", account.Username),
	})
}

func (m *LifecycleMailer) AccountRejected(account *domain.Account) {
	m.sink.Enqueue(ports.Notification{
		To:      account.Email,
		Subject: "Your account has been rejected",
		Body:    fmt.Sprintf("Hello %s, your account registration has been rejected.", account.Username),
	})
}

// PasswordReset mails the reset link built from the opaque token.
func (m *LifecycleMailer) PasswordReset(account *domain.Account, token string) {
	link := fmt.Sprintf("%s/reset-password.html?token=%s", m.baseURL, token)

	var body bytes.Buffer
	if err := resetTmpl.Execute(&body, struct{ Link string }{link}); err != nil {
		m.log.Warn().Err(err).Str("username", account.Username).Msg("failed to render reset mail")
		return
	}

	m.sink.Enqueue(ports.Notification{
		To:      account.Email,
		Subject: "Password reset",
		Body:    body.String(),
		HTML:    true,
	})
}
