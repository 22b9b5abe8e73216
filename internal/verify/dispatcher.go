package verify

import (
	"context"
	"fmt"

	"github.com/cherrizbox/socialverify/internal/account"
	"github.com/cherrizbox/socialverify/internal/email"
	"github.com/cherrizbox/socialverify/internal/observability/logger"
	"github.com/cherrizbox/socialverify/internal/store"
)

// Dispatcher runs the full pipeline for one request: resolve identity,
// provision the code under the configured policy, send the notification.
type Dispatcher struct {
	Accounts  account.Service
	Profiles  store.Profiles
	Sender    email.Sender
	Templates *email.Templates
	Policy    Policy

	// Fixed deployment constants; never derived from request data.
	From string
	To   string

	// Metric hooks, wired at startup. Both optional.
	OnCodeIssued func(policy string)
	OnEmailSent  func(ok bool)
}

// Result is what a successful dispatch produces.
type Result struct {
	Code     string
	Platform string
	Username string
	EmailID  string
}

// Send executes the pipeline. Error mapping to HTTP statuses happens in the
// transport layer; here we only return domain errors.
func (d *Dispatcher) Send(ctx context.Context, req *Request) (*Result, error) {
	log := logger.From(ctx).With(logger.AccountID(req.UserID), logger.Policy(string(d.Policy)))

	acct, err := d.Accounts.Get(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	docs, err := d.Profiles.FindByAccountID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("query profile documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	if len(docs) > 1 {
		// El modelo de datos espera un documento por cuenta; nos quedamos
		// con el primero pero lo dejamos registrado.
		log.Warn("multiple profile documents for account, using first",
			logger.Count(len(docs)), logger.DocumentID(docs[0].ID))
	}
	doc := docs[0]

	platform := req.SocialMedia
	if platform == "" {
		platform = doc.SocialMedia
	}
	username := req.SocialMediaUsername
	if username == "" {
		username = doc.SocialMediaUsername
	}

	var code string
	switch d.Policy {
	case PolicyReuse:
		if doc.VerificationCode == "" {
			return nil, ErrNoStoredCode
		}
		code = doc.VerificationCode
	default:
		code, err = NewCode()
		if err != nil {
			return nil, err
		}
		if err := d.Profiles.SetVerificationCode(ctx, doc.ID, code); err != nil {
			return nil, fmt.Errorf("persist code: %w", err)
		}
		log.Debug("verification code persisted", logger.DocumentID(doc.ID))
	}
	if d.OnCodeIssued != nil {
		d.OnCodeIssued(string(d.Policy))
	}

	html, text, err := d.Templates.Render(email.CodeVars{
		UserName:  displayName(acct),
		UserEmail: acct.Email,
		Platform:  platform,
		Username:  username,
		Code:      code,
	})
	if err != nil {
		return nil, err
	}

	id, err := d.Sender.Send(ctx, email.Message{
		From:    d.From,
		To:      d.To,
		Subject: email.Subject(platform),
		HTML:    html,
		Text:    text,
	})
	if d.OnEmailSent != nil {
		d.OnEmailSent(err == nil)
	}
	if err != nil {
		return nil, fmt.Errorf("send notification: %w", err)
	}

	log.Info("verification code sent",
		logger.Platform(platform),
		logger.DocumentID(doc.ID),
		logger.String("email_id", id),
	)
	return &Result{Code: code, Platform: platform, Username: username, EmailID: id}, nil
}

func displayName(a *account.Account) string {
	if a.Name == "" {
		return "Unknown"
	}
	return a.Name
}
