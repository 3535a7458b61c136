package email

import (
	"fmt"
	"net/http"
	"net/smtp"
	"os"
	"time"

	"github.com/wchen-ai/site-backend/db"
	"github.com/wchen-ai/site-backend/util"
)

type suppressionStore interface {
	PutSuppressedEmail(email string, reason string, timestamp string) error
	IsSuppressedEmail(string) (bool, error)
}

// Config stores delivery credentials for every provider this site can
// use. All providers are optional: a missing one degrades to an
// accepted-but-not-sent response instead of failing requests. SMTP is
// the exception — supplying part of its configuration is a startup
// error.
type Config struct {
	// Contact delivery, in order of precedence.
	mailgunAPIKey  string
	mailgunDomain  string
	mailgunBaseURL string
	mailgunFrom    string
	contactTo      string
	webhookURL     string

	// Newsletter delivery.
	resendAPIKey    string
	resendSegmentID string
	resendBaseURL   string
	newsletterFrom  string

	// SMTP fallback for contact delivery.
	smtpAuth     smtp.Auth
	smtpUsername string
	smtpPassword string
	smtpHostname string
	smtpPort     string
	smtpSender   string

	client   *http.Client
	database suppressionStore
}

const defaultNewsletterFrom = "Wilson Chen <newsletter@wchen.ai>"

// MakeConfigFromEnv initializes the dispatcher config with environment
// variables. Provider credentials are optional; SMTP variables are
// required as a group once SMTP_ENDPOINT is set.
func MakeConfigFromEnv(database db.Database) (Config, error) {
	c := Config{
		mailgunAPIKey:   os.Getenv("MAILGUN_API_KEY"),
		mailgunDomain:   os.Getenv("MAILGUN_DOMAIN"),
		mailgunBaseURL:  mailgunBaseURLFromEnv(),
		mailgunFrom:     os.Getenv("MAILGUN_FROM_EMAIL"),
		contactTo:       os.Getenv("CONTACT_TO_EMAIL"),
		webhookURL:      os.Getenv("CONTACT_WEBHOOK_URL"),
		resendAPIKey:    os.Getenv("RESEND_API_KEY"),
		resendSegmentID: os.Getenv("RESEND_SEGMENT_ID"),
		resendBaseURL:   defaultResendBaseURL,
		newsletterFrom:  os.Getenv("NEWSLETTER_FROM"),
		client:          &http.Client{Timeout: 10 * time.Second},
		database:        database,
	}
	if c.mailgunFrom == "" && c.mailgunDomain != "" {
		c.mailgunFrom = fmt.Sprintf("Contact Form <noreply@%s>", c.mailgunDomain)
	}
	if c.newsletterFrom == "" {
		c.newsletterFrom = defaultNewsletterFrom
	}
	if os.Getenv("SMTP_ENDPOINT") != "" {
		varErrs := util.Errors{}
		c.smtpUsername = util.RequireEnv("SMTP_USERNAME", &varErrs)
		c.smtpPassword = util.RequireEnv("SMTP_PASSWORD", &varErrs)
		c.smtpHostname = util.RequireEnv("SMTP_ENDPOINT", &varErrs)
		c.smtpPort = util.RequireEnv("SMTP_PORT", &varErrs)
		c.smtpSender = util.RequireEnv("SMTP_FROM_ADDRESS", &varErrs)
		if len(varErrs) > 0 {
			return c, varErrs
		}
		c.smtpAuth = smtp.PlainAuth("", c.smtpUsername, c.smtpPassword, c.smtpHostname)
	}
	return c, nil
}

// CanSend reports whether any contact delivery provider is configured.
func (c Config) CanSend() bool {
	return c.canMailgun() || c.webhookURL != "" || c.canSMTP()
}

// CanSubscribe reports whether newsletter delivery and contact
// registration are both configured.
func (c Config) CanSubscribe() bool {
	return c.resendAPIKey != "" && c.resendSegmentID != ""
}

func (c Config) canMailgun() bool {
	return c.mailgunAPIKey != "" && c.mailgunDomain != "" && c.contactTo != ""
}

func (c Config) canSMTP() bool {
	return c.smtpHostname != "" && c.contactTo != ""
}

// ForwardMessage delivers a contact form submission to the site owner
// through the first configured provider.
func (c Config) ForwardMessage(name string, address string, message string) error {
	switch {
	case c.canMailgun():
		return c.sendViaMailgun(name, address, message)
	case c.webhookURL != "":
		return c.forwardViaWebhook(name, address, message)
	case c.canSMTP():
		subject := fmt.Sprintf("Contact form: %s", name)
		return c.sendEmail(subject, contactMessageText(name, address, message), c.contactTo)
	}
	return fmt.Errorf("no contact delivery provider configured")
}

func (c Config) sendEmail(subject string, body string, address string) error {
	message := fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\n\n%s",
		c.smtpSender, address, subject, body)
	return smtp.SendMail(fmt.Sprintf("%s:%s", c.smtpHostname, c.smtpPort),
		c.smtpAuth,
		c.smtpSender, []string{address}, []byte(message))
}

func (c Config) checkSuppressed(address string) error {
	if c.database == nil {
		return nil
	}
	suppressed, err := c.database.IsSuppressedEmail(address)
	if err != nil {
		return err
	}
	if suppressed {
		return fmt.Errorf("address %s is suppressed", address)
	}
	return nil
}
