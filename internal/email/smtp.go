package email

import (
	"crypto/tls"
	"fmt"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/util"
	mail "github.com/go-mail/mail"
	"go.uber.org/zap"
)

// Sender envía un email con contenido HTML y texto plano.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPConfig es la configuración del servidor SMTP.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	TLSMode  string `yaml:"tls_mode"` // "auto" | "starttls" | "ssl" | "none"
	// Solo dev.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	cfg SMTPConfig
	log *zap.Logger
}

// NewSMTPSender crea un SMTPSender. Port 0 → 587, TLSMode vacío → "auto".
func NewSMTPSender(cfg SMTPConfig, log *zap.Logger) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{cfg: cfg, log: logger.OrNop(log).With(logger.Component("smtp"))}
}

// From devuelve el remitente configurado.
func (s *SMTPSender) From() string { return s.cfg.From }

func (s *SMTPSender) message(to, subject, htmlBody, textBody string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	// multipart/alternative (txt + html)
	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}
	return m
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
	}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.cfg.InsecureSkipVerify}
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si corresponde
	}
	return d
}

// Send envía el mail. Errores de SMTP se devuelven envueltos.
func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := s.log.With(logger.String("host", s.cfg.Host), logger.Int("port", s.cfg.Port))
	log.Debug("sending email",
		logger.String("to", util.MaskEmail(to)),
		logger.String("subject", subject),
		logger.String("tls_mode", s.cfg.TLSMode),
	)

	if err := s.dialer().DialAndSend(s.message(to, subject, htmlBody, textBody)); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug("email sent")
	return nil
}
