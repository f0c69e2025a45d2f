package credentials

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const verificationEmailTemplate = `{{define "verification"}}<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
	<h2>{{.AppName}}</h2>
	<p>Use the following code to verify your account:</p>
	<p style="font-size: 1.4em; letter-spacing: 2px;"><strong>{{.Code}}</strong></p>
	<p>The code expires in {{.TTL}}. If you did not request it, ignore this message.</p>
</body>
</html>{{end}}`

// SMTPConfig holds the connection options for the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Subject  string
	UseTLS   bool
	Timeout  time.Duration
	CodeTTL  time.Duration
}

func (c SMTPConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPSender delivers verification codes over SMTP.
type SMTPSender struct {
	cfg       SMTPConfig
	templates *template.Template
}

var _ MessageSender = (*SMTPSender)(nil)

// NewSMTPSender parses the embedded templates and returns a ready sender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	tmpl, err := template.New("emails").Parse(verificationEmailTemplate)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse email templates")
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = DefaultVerificationTTL
	}

	return &SMTPSender{
		cfg:       cfg,
		templates: tmpl,
	}, nil
}

// SendVerificationCode renders the verification template and delivers it
// to the given address.
func (s *SMTPSender) SendVerificationCode(ctx context.Context, email, code string) error {
	var buf bytes.Buffer
	err := s.templates.ExecuteTemplate(&buf, "verification", map[string]any{
		"AppName": s.cfg.FromName,
		"Code":    code,
		"TTL":     s.cfg.CodeTTL.String(),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render verification email")
	}

	subject := s.cfg.Subject
	if subject == "" {
		subject = "Verify your account"
	}

	return s.send(ctx, email, subject, buf.String())
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", s.cfg.addr())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to dial SMTP server")
	}

	if deadline, ok := ctx.Deadline(); ok {
		netConn.SetDeadline(deadline)
	} else {
		netConn.SetDeadline(time.Now().Add(s.cfg.Timeout))
	}

	conn, err := smtp.NewClient(netConn, s.cfg.Host)
	if err != nil {
		netConn.Close()
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create SMTP client")
	}
	defer conn.Close()

	if s.cfg.UseTLS {
		if err := conn.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to start TLS")
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := conn.Auth(auth); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to authenticate with SMTP server")
		}
	}

	if err := conn.Mail(s.cfg.From); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to set sender")
	}

	if err := conn.Rcpt(to); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to set recipient")
	}

	w, err := conn.Data()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to open data writer")
	}

	if _, err := w.Write([]byte(msg.String())); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to write message")
	}

	if err := w.Close(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to close data writer")
	}

	return conn.Quit()
}

// LoggerSender prints verification codes instead of delivering them, for
// local development.
type LoggerSender struct {
	Logger Logger
}

var _ MessageSender = (*LoggerSender)(nil)

func (s LoggerSender) SendVerificationCode(ctx context.Context, email, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = defLogger{}
	}

	logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	logger.Info("to: %s", email)
	logger.Info("verification code: %s", code)

	return nil
}
