package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
)

const defaultResendBaseURL = "https://api.resend.com"

// SendConfirmation delivers the double opt-in email through Resend. The
// recipient's address is checked against the suppression store first.
func (c Config) SendConfirmation(to string, confirmURL string) error {
	if err := c.checkSuppressed(to); err != nil {
		return err
	}
	payload := map[string]interface{}{
		"from":    c.newsletterFrom,
		"to":      []string{to},
		"subject": confirmationSubject,
		"html":    confirmationHTML(confirmURL),
	}
	return c.postResend("/emails", payload)
}

// RegisterContact adds a confirmed subscriber to the configured Resend
// segment. Registration is idempotent on the provider side, so
// revisiting a live confirmation link is harmless.
func (c Config) RegisterContact(address string) error {
	if err := c.checkSuppressed(address); err != nil {
		return err
	}
	payload := map[string]interface{}{
		"email":    address,
		"segments": []string{c.resendSegmentID},
	}
	return c.postResend("/contacts", payload)
}

func (c Config) postResend(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.resendBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.resendAPIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := ioutil.ReadAll(resp.Body)
		return fmt.Errorf("resend responded with %d: %s", resp.StatusCode, detail)
	}
	return nil
}
