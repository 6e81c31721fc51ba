package main

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// - SSL is the predecessor of TLS
// - We can etablish a secure connection using TLS or SSL
// -- At the beginning of the connection, using SMTPS over TLS or SMTPS over SSL (port 465)
// -- After the connection is established, using STARTTLS to upgrade the connection to TLS (port 587)

const (
	CryptoStartTLS = "tls"
	CryptoImplicit = "ssl"
	CryptoNone     = "none"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Crypto   string

	// TLSConfig is used for STARTTLS and implicit TLS. Nil verifies the server against Host.
	TLSConfig *tls.Config
}

func (c SMTPConfig) tlsConfig() *tls.Config {
	if c.TLSConfig == nil {
		return &tls.Config{ServerName: c.Host}
	}
	cfg := c.TLSConfig.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = c.Host
	}
	return cfg
}

func (c SMTPConfig) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SMTPSession is an authenticated SMTP connection reused for every message of a run.
type SMTPSession struct {
	client *smtp.Client
	from   string
}

// OpenSession connects, upgrades to TLS according to cfg.Crypto and authenticates.
// Credential rejections are reported as ErrAuthentication, everything else as ErrConnection.
func OpenSession(cfg SMTPConfig) (*SMTPSession, error) {
	var err error
	var client *smtp.Client

	switch strings.ToLower(cfg.Crypto) {
	case CryptoStartTLS, "":
		client, err = smtp.DialStartTLS(cfg.addr(), cfg.tlsConfig())
	case CryptoImplicit:
		client, err = smtp.DialTLS(cfg.addr(), cfg.tlsConfig())
	case CryptoNone:
		client, err = smtp.Dial(cfg.addr())
	default:
		return nil, fmt.Errorf("%w: unsupported crypto type: %s", ErrConnection, cfg.Crypto)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s => %v", ErrConnection, cfg.addr(), err)
	}

	if cfg.User != "" {
		if err := client.Auth(saslClient(client, cfg.User, cfg.Password)); err != nil {
			client.Close()
			return nil, classifyAuthError(err)
		}
	}

	return &SMTPSession{client: client, from: cfg.User}, nil
}

// saslClient prefers PLAIN and falls back to LOGIN for servers that only offer it.
func saslClient(client *smtp.Client, user, password string) sasl.Client {
	if client.SupportsAuth(sasl.Plain) || !client.SupportsAuth(sasl.Login) {
		return sasl.NewPlainClient("", user, password)
	}
	return sasl.NewLoginClient(user, password)
}

// classifyAuthError reports credential rejections (454, 534, 535) as ErrAuthentication.
// Any other reply, e.g. a server without AUTH support, is ErrConnection.
func classifyAuthError(err error) error {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		switch smtpErr.Code {
		case 454, 534, 535:
			return fmt.Errorf("%w => %v", ErrAuthentication, err)
		}
	}
	return fmt.Errorf("%w: authenticate => %v", ErrConnection, err)
}

// Send submits one message. The envelope recipients are the To address plus every Cc address.
func (s *SMTPSession) Send(msg Message) error {
	from := msg.From
	if from == "" {
		from = s.from
	}

	raw, err := buildMessage(msg, from)
	if err != nil {
		return fmt.Errorf("%w => %v", ErrSend, err)
	}

	to := append([]string{msg.To}, msg.Cc...)
	if err := s.client.SendMail(from, to, bytes.NewReader(raw)); err != nil {
		// leave the session usable for the next recipient
		_ = s.client.Reset()
		return fmt.Errorf("%w => %v", ErrSend, err)
	}
	return nil
}

// Close ends the session with QUIT, dropping the connection if the server does not answer.
func (s *SMTPSession) Close() error {
	if err := s.client.Quit(); err != nil {
		s.client.Close()
		return err
	}
	return nil
}

func buildMessage(msg Message, from string) ([]byte, error) {
	var h mail.Header
	h.Set("From", from)
	h.Set("To", msg.To)
	if len(msg.Cc) > 0 {
		h.Set("Cc", strings.Join(msg.Cc, ", "))
	}
	h.SetSubject(msg.Subject)
	h.SetDate(time.Now())
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}
	h.Set("MIME-Version", "1.0")
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(msg.HTML)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
