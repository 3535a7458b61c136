package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/wchen-ai/site-backend/models"
)

// noRedirect stops the client at the first response so tests can
// inspect the redirect itself.
var noRedirect = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func TestNewsletterMintsAndSendsConfirmation(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: true}, nil)
	defer h.close()

	resp := h.post(t, "/api/newsletter", testOrigin, `{"email":"jane@example.com","_honey":""}`)
	decoded := decodeResponse(t, responseBody(t, resp))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%+v)", resp.StatusCode, decoded)
	}
	if decoded.Message != "Check your email to confirm your subscription." {
		t.Errorf("unexpected message %q", decoded.Message)
	}
	if len(h.emailer.confirmations) != 1 {
		t.Fatalf("expected one confirmation email, got %d", len(h.emailer.confirmations))
	}
	to, confirmURL := h.emailer.confirmations[0][0], h.emailer.confirmations[0][1]
	if to != "jane@example.com" {
		t.Errorf("confirmation should go to the submitted address, got %q", to)
	}
	parsed, err := url.Parse(confirmURL)
	if err != nil {
		t.Fatalf("confirmation link %q does not parse: %v", confirmURL, err)
	}
	if parsed.Host != "wchen.ai" || parsed.Path != "/api/newsletter-confirm" {
		t.Errorf("unexpected confirmation link %q", confirmURL)
	}
	q := parsed.Query()
	if q.Get("email") != "jane@example.com" {
		t.Errorf("link email should match the recipient, got %q", q.Get("email"))
	}
	if !models.VerifyToken(q.Get("email"), q.Get("ts"), q.Get("sig"), testSecret, time.Now()) {
		t.Errorf("link %q should carry a verifiable token", confirmURL)
	}
}

func TestNewsletterValidation(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: true}, nil)
	defer h.close()

	resp := h.post(t, "/api/newsletter", testOrigin, `{"email":"not-an-address","_honey":""}`)
	decoded := decodeResponse(t, responseBody(t, resp))
	if resp.StatusCode != http.StatusBadRequest || decoded.Error != "Validation failed" {
		t.Errorf("expected validation failure, got %d %q", resp.StatusCode, decoded.Error)
	}

	resp = h.post(t, "/api/newsletter", testOrigin, `{"email":"jane@example.com","_honey":"bot"}`)
	decoded = decodeResponse(t, responseBody(t, resp))
	if resp.StatusCode != http.StatusBadRequest || decoded.Error != "Invalid submission" {
		t.Errorf("expected honeypot rejection, got %d %q", resp.StatusCode, decoded.Error)
	}
	if len(h.emailer.confirmations) != 0 {
		t.Errorf("rejected submissions should not trigger email")
	}
}

func TestNewsletterWithoutSubscriptionConfigured(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: false}, nil)
	defer h.close()

	resp := h.post(t, "/api/newsletter", testOrigin, `{"email":"jane@example.com","_honey":""}`)
	decoded := decodeResponse(t, responseBody(t, resp))
	if resp.StatusCode != http.StatusOK || !decoded.Success {
		t.Errorf("unconfigured subscription should still accept, got %d", resp.StatusCode)
	}
	if decoded.Message != "Check your email to confirm your subscription." {
		t.Errorf("unconfigured response should be indistinguishable, got %q", decoded.Message)
	}
	if len(h.emailer.confirmations) != 0 {
		t.Errorf("nothing should be sent without configuration")
	}
}

func TestNewsletterSendFailure(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: true, failSend: true}, nil)
	defer h.close()

	resp := h.post(t, "/api/newsletter", testOrigin, `{"email":"jane@example.com","_honey":""}`)
	decoded := decodeResponse(t, responseBody(t, resp))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	if decoded.Error != "Failed to process subscription. Please try again later." {
		t.Errorf("unexpected error message %q", decoded.Error)
	}
}

func confirmPath(token models.ConfirmationToken) string {
	q := url.Values{}
	q.Set("email", token.Email)
	q.Set("ts", strconv.FormatInt(token.IssuedAt, 10))
	q.Set("sig", token.Signature)
	return "/api/newsletter-confirm?" + q.Encode()
}

func TestNewsletterConfirmRegistersAndRedirects(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: true}, nil)
	defer h.close()

	token := models.MintToken("jane@example.com", testSecret)
	resp, err := noRedirect.Get(h.server.URL + confirmPath(token))
	if err != nil {
		t.Fatal(err)
	}
	responseBody(t, resp)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "https://wchen.ai/newsletter-confirmed" {
		t.Errorf("unexpected redirect target %q", location)
	}
	if len(h.emailer.registered) != 1 || h.emailer.registered[0] != "jane@example.com" {
		t.Errorf("expected subscriber to be registered, got %v", h.emailer.registered)
	}
}

func TestNewsletterConfirmMissingParams(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: true}, nil)
	defer h.close()

	resp, err := noRedirect.Get(h.server.URL + "/api/newsletter-confirm?email=jane@example.com")
	if err != nil {
		t.Fatal(err)
	}
	body := responseBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid confirmation link. Please try subscribing again.") {
		t.Errorf("expected invalid link notice, got %s", body)
	}
	if !strings.Contains(body, "<html") {
		t.Errorf("confirmation failures should render HTML, got %s", body)
	}
}

func TestNewsletterConfirmRejectsExpiredAndTampered(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: true}, nil)
	defer h.close()

	expired := models.MintToken("jane@example.com", testSecret)
	expired.IssuedAt = time.Now().Add(-25 * time.Hour).Unix()

	tampered := models.MintToken("jane@example.com", testSecret)
	if tampered.Signature[0] == 'f' {
		tampered.Signature = "0" + tampered.Signature[1:]
	} else {
		tampered.Signature = "f" + tampered.Signature[1:]
	}

	for name, token := range map[string]models.ConfirmationToken{
		"expired":  expired,
		"tampered": tampered,
	} {
		resp, err := noRedirect.Get(h.server.URL + confirmPath(token))
		if err != nil {
			t.Fatal(err)
		}
		body := responseBody(t, resp)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s link should get 400, got %d", name, resp.StatusCode)
		}
		// Both failures render the same page.
		if !strings.Contains(body, "This link is invalid or has expired. Please subscribe again.") {
			t.Errorf("%s link should get the generic rejection, got %s", name, body)
		}
	}
	if len(h.emailer.registered) != 0 {
		t.Errorf("rejected links should not register anyone")
	}
}

func TestNewsletterConfirmUnconfigured(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: false}, nil)
	defer h.close()

	token := models.MintToken("jane@example.com", testSecret)
	resp, err := noRedirect.Get(h.server.URL + confirmPath(token))
	if err != nil {
		t.Fatal(err)
	}
	body := responseBody(t, resp)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Something went wrong. Please try again later.") {
		t.Errorf("expected generic failure notice, got %s", body)
	}
}

func TestNewsletterConfirmRegistrationFailure(t *testing.T) {
	h := newTestHarness(&mockEmailer{canSubscribe: true, failRegister: true}, nil)
	defer h.close()

	token := models.MintToken("jane@example.com", testSecret)
	resp, err := noRedirect.Get(h.server.URL + confirmPath(token))
	if err != nil {
		t.Fatal(err)
	}
	body := responseBody(t, resp)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Something went wrong. Please try again later.") {
		t.Errorf("expected generic failure notice, got %s", body)
	}
}
