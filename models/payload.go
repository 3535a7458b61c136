package models

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// HoneypotField is rendered invisibly on the form. Humans leave it
// empty; bots fill it in.
const HoneypotField = "_honey"

// Rejections that must not carry field-level detail back to the client.
var (
	ErrMalformedBody = errors.New("request body is not valid JSON")
	ErrBotDetected   = errors.New("honeypot field was filled in")
)

// FieldError describes a single failed validation rule, returned to
// legitimate users to help them fix their submission.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldRule is one declarative constraint on a payload field. Rules see
// raw input values; trimming for dispatch happens separately.
type fieldRule struct {
	field     string
	required  bool // must be non-empty after trimming
	email     bool // must look like an email address
	minLength int  // minimum trimmed length, when > 0
	honeypot  bool // must be empty
	message   string
}

type schema []fieldRule

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var contactSchema = schema{
	{field: "name", required: true, message: "Name is required"},
	{field: "email", email: true, message: "Invalid email address"},
	{field: "message", minLength: 10, message: "Message must be at least 10 characters"},
	{field: HoneypotField, honeypot: true, message: "Invalid submission"},
}

var newsletterSchema = schema{
	{field: "email", email: true, message: "Invalid email address"},
	{field: HoneypotField, honeypot: true, message: "Invalid submission"},
}

func (s schema) validate(values map[string]string) []FieldError {
	var issues []FieldError
	for _, rule := range s {
		value := values[rule.field]
		failed := false
		switch {
		case rule.honeypot:
			failed = value != ""
		case rule.required:
			failed = strings.TrimSpace(value) == ""
		case rule.email:
			failed = !emailPattern.MatchString(value)
		case rule.minLength > 0:
			failed = len(strings.TrimSpace(value)) < rule.minLength
		}
		if failed {
			issues = append(issues, FieldError{Field: rule.field, Message: rule.message})
		}
	}
	return issues
}

func hasIssue(issues []FieldError, field string) bool {
	for _, issue := range issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

// ContactSubmission is the contact form payload. It is validated,
// forwarded and discarded; nothing is persisted.
type ContactSubmission struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Honeypot string `json:"_honey"`
}

// ParseContactSubmission decodes and validates an untrusted request
// body. A filled honeypot reports ErrBotDetected and suppresses all
// field detail so the response cannot be told apart from a generic
// rejection.
func ParseContactSubmission(raw []byte) (ContactSubmission, []FieldError, error) {
	var c ContactSubmission
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, nil, ErrMalformedBody
	}
	issues := contactSchema.validate(map[string]string{
		"name":        c.Name,
		"email":       c.Email,
		"message":     c.Message,
		HoneypotField: c.Honeypot,
	})
	if hasIssue(issues, HoneypotField) {
		return c, nil, ErrBotDetected
	}
	return c, issues, nil
}

// Trimmed returns a copy ready for dispatch. Validation always runs on
// the raw values first.
func (c ContactSubmission) Trimmed() ContactSubmission {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = NormalizeEmail(c.Email)
	c.Message = strings.TrimSpace(c.Message)
	return c
}

// SubscriptionIntent is the newsletter signup payload. On success it
// produces a ConfirmationToken; nothing is persisted.
type SubscriptionIntent struct {
	Email    string `json:"email"`
	Honeypot string `json:"_honey"`
}

// ParseSubscriptionIntent decodes and validates an untrusted request
// body, with the same honeypot precedence as ParseContactSubmission.
func ParseSubscriptionIntent(raw []byte) (SubscriptionIntent, []FieldError, error) {
	var s SubscriptionIntent
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, nil, ErrMalformedBody
	}
	issues := newsletterSchema.validate(map[string]string{
		"email":       s.Email,
		HoneypotField: s.Honeypot,
	})
	if hasIssue(issues, HoneypotField) {
		return s, nil, ErrBotDetected
	}
	return s, issues, nil
}

// NormalizeEmail trims the address and converts an internationalized
// domain part to its ASCII form for the mail provider.
func NormalizeEmail(address string) string {
	address = strings.TrimSpace(address)
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return address
	}
	ascii, err := idna.ToASCII(address[at+1:])
	if err != nil {
		return address
	}
	return address[:at+1] + ascii
}
