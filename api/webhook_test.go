package api

import (
	"net/http"
	"os"
	"strings"
	"testing"
)

const resendBouncePayload = `{
	"type": "email.bounced",
	"created_at": "2025-01-02T03:04:05.000Z",
	"data": {
		"to": ["bounced@example.com"]
	}
}`

func TestBounceWebhookRequiresAuthKey(t *testing.T) {
	h := newTestHarness(&mockEmailer{}, nil)
	defer h.close()

	for name, path := range map[string]string{
		"missing key": "/webhooks/email",
		"wrong key":   "/webhooks/email?auth_key=nope",
	} {
		resp, err := http.Post(h.server.URL+path, "application/json",
			strings.NewReader(resendBouncePayload))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s should get 401, got %d", name, resp.StatusCode)
		}
	}

	suppressed, err := h.api.Database.IsSuppressedEmail("bounced@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if suppressed {
		t.Errorf("unauthorized notifications should not touch the suppression list")
	}
}

func TestBounceWebhookRejectsAllWhenUnconfigured(t *testing.T) {
	h := newTestHarness(&mockEmailer{}, nil)
	defer h.close()

	saved := os.Getenv("WEBHOOK_AUTH_KEY")
	os.Setenv("WEBHOOK_AUTH_KEY", "")
	defer os.Setenv("WEBHOOK_AUTH_KEY", saved)

	resp, err := http.Post(h.server.URL+"/webhooks/email?auth_key=", "application/json",
		strings.NewReader(resendBouncePayload))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unconfigured webhook should reject everything, got %d", resp.StatusCode)
	}
}

func TestBounceWebhookSuppressesRecipients(t *testing.T) {
	h := newTestHarness(&mockEmailer{}, nil)
	defer h.close()

	resp, err := http.Post(h.server.URL+"/webhooks/email?auth_key=test-webhook-key",
		"application/json", strings.NewReader(resendBouncePayload))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	suppressed, err := h.api.Database.IsSuppressedEmail("bounced@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !suppressed {
		t.Errorf("bounced recipient should be suppressed")
	}
}

func TestBounceWebhookRejectsMalformedBody(t *testing.T) {
	h := newTestHarness(&mockEmailer{}, nil)
	defer h.close()

	resp, err := http.Post(h.server.URL+"/webhooks/email?auth_key=test-webhook-key",
		"application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}
