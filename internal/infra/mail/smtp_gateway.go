// Package mail implements the MailGateway over a pooled SMTP connection.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"net/textproto"
	"net/url"
	"time"

	"identity/config"
	"identity/internal/domain/entity"
	"identity/internal/domain/service"

	"github.com/knadh/smtppool"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultSendTimeout = 15 * time.Second

// smtpGateway delivers account emails through an SMTP connection pool.
type smtpGateway struct {
	pool        *smtppool.Pool
	from        string
	frontendURL string
	sendTimeout time.Duration
	logger      *slog.Logger
}

// Params holds dependencies for the SMTP gateway, injected by Fx.
type Params struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

// NewSMTPGateway builds the gateway and ties the pool to the Fx lifecycle,
// so idle SMTP connections are closed on shutdown.
func NewSMTPGateway(params Params) (service.MailGateway, error) {
	cfg := params.Config
	if cfg == nil || cfg.Mail == nil {
		return nil, errors.New("mail configuration must be provided")
	}

	smtpCfg := cfg.Mail.SMTP

	auth := smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)
	if smtpCfg.Username == "" && smtpCfg.Password == "" {
		auth = nil
	}

	connections := smtpCfg.Connections
	if connections <= 0 {
		connections = 1
	}

	sendTimeout := smtpCfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            smtpCfg.Host,
		Port:            smtpCfg.Port,
		MaxConns:        connections,
		IdleTimeout:     sendTimeout,
		PoolWaitTimeout: sendTimeout,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: smtpCfg.InsecureSkipVerify,
			ServerName:         smtpCfg.Host,
		},
		Auth: auth,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smtp pool")
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()

			return nil
		},
	})

	return &smtpGateway{
		pool:        pool,
		from:        cfg.Mail.From,
		frontendURL: cfg.Mail.FrontendURL,
		sendTimeout: sendTimeout,
		logger:      params.Logger,
	}, nil
}

// SendVerificationEmail delivers the email-verification link.
func (g *smtpGateway) SendVerificationEmail(ctx context.Context, account *entity.Account, token string) error {
	link := g.link("/verify", token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Please confirm your email address by clicking the link below:</p>"+
			`<p><a href="%s">Verify my email</a></p>`+
			"<p>The link expires shortly. If you did not create this account, you can ignore this email.</p>",
		greetingName(account), link,
	)

	return g.send(ctx, account.Email, "Verify your email address", body)
}

// SendPasswordResetEmail delivers the password-reset link.
func (g *smtpGateway) SendPasswordResetEmail(ctx context.Context, account *entity.Account, token string) error {
	link := g.link("/reset-password", token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>We received a request to reset your password. Click the link below to choose a new one:</p>"+
			`<p><a href="%s">Reset my password</a></p>`+
			"<p>The link expires shortly. If you did not request this, you can ignore this email.</p>",
		greetingName(account), link,
	)

	return g.send(ctx, account.Email, "Reset your password", body)
}

func (g *smtpGateway) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := smtppool.Email{
		To:      []string{to},
		From:    g.from,
		Subject: subject,
		HTML:    []byte(htmlBody),
		Headers: textproto.MIMEHeader{},
	}

	if err := g.pool.Send(msg); err != nil {
		g.logger.ErrorContext(ctx, "SMTP send failed", slog.String("subject", subject), slog.Any("error", err))

		return errors.Wrap(err, "failed to send email")
	}

	return nil
}

// link builds a front-end deep link carrying the token. The token is query
// escaped even though JWTs are URL safe, so the format can change without
// breaking links.
func (g *smtpGateway) link(path, token string) string {
	return g.frontendURL + path + "?token=" + url.QueryEscape(token)
}

func greetingName(account *entity.Account) string {
	if account.FirstName != "" {
		return account.FirstName
	}

	return "there"
}
