package api

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"

	raven "github.com/getsentry/raven-go"

	"github.com/wchen-ai/site-backend/db"
	"github.com/wchen-ai/site-backend/models"
	"github.com/wchen-ai/site-backend/ratelimit"
)

////////////////////////////////
//  *****   REST API   *****  //
////////////////////////////////

// API is the HTTP boundary for the site's form endpoints.
// Submission endpoints respond with a JSON body, with fields:
// {
//     success // whether the request was accepted
//     message // user-facing confirmation, when success is true
//     error   // user-facing failure description, when success is false
//     details // per-field validation messages, when applicable
// }
// The confirmation endpoint responds with HTML, since it is opened
// directly from an email client.
type API struct {
	Emailer        EmailSender
	Database       db.Database
	Limiter        RateLimiter
	Secret         string // HMAC key for confirmation tokens.
	BaseURL        string // Public site root for links and redirects.
	AllowedOrigins []string
	Templates      map[string]*template.Template
}

// EmailSender interface wraps the transactional mail provider.
type EmailSender interface {
	// SendConfirmation delivers the double opt-in email carrying
	// confirmURL to a would-be subscriber.
	SendConfirmation(to string, confirmURL string) error
	// RegisterContact adds a confirmed subscriber to the mailing list.
	RegisterContact(address string) error
	// ForwardMessage delivers a contact form submission to the site
	// owner.
	ForwardMessage(name string, address string, message string) error
	// CanSend and CanSubscribe report whether delivery is configured;
	// when not, submissions degrade to accepted-but-not-sent.
	CanSend() bool
	CanSubscribe() bool
}

// RateLimiter bounds accepted submissions per client identity. The
// in-process implementation lives in the ratelimit package; a
// multi-instance deployment can swap in a shared store behind the same
// contract.
type RateLimiter interface {
	Allow(ctx context.Context, identity string) bool
}

type response struct {
	StatusCode int                 `json:"-"`
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Error      string              `json:"error,omitempty"`
	Details    []models.FieldError `json:"details,omitempty"`
}

type apiHandler func(r *http.Request) response

// submission adapts a JSON form handler, applying the origin guard and
// the per-identity rate limit before it runs. OPTIONS preflights always
// succeed and skip every other check.
func (api *API) submission(handler apiHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		api.setCORSHeaders(w, origin)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if !api.allowedOrigin(origin) {
			writeJSON(w, response{StatusCode: http.StatusForbidden, Error: "Forbidden"})
			return
		}
		if r.Method != http.MethodPost {
			writeJSON(w, response{StatusCode: http.StatusMethodNotAllowed,
				Error: "Only POST requests are accepted"})
			return
		}
		if !api.Limiter.Allow(r.Context(), clientIdentity(r)) {
			writeJSON(w, response{StatusCode: http.StatusTooManyRequests,
				Error: "Too many requests. Please try again later."})
			return
		}
		resp := handler(r)
		if resp.StatusCode == http.StatusInternalServerError {
			packet := raven.NewPacket(resp.Error, raven.NewHttp(r))
			raven.Capture(packet, nil)
		}
		writeJSON(w, resp)
	}
}

// clientIdentity derives the rate limit key from the trusted
// connecting-IP header. Unidentified clients all share one bucket.
func clientIdentity(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return ratelimit.UnknownIdentity
}

func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
}

// RegisterHandlers binds API functions to the given http server, and
// returns the resulting handler.
func (api *API) RegisterHandlers(mux *http.ServeMux) http.Handler {
	mux.HandleFunc("/api/contact", api.submission(api.contact))
	mux.HandleFunc("/api/newsletter", api.submission(api.newsletter))
	mux.HandleFunc("/api/newsletter-confirm", api.newsletterConfirm)
	mux.HandleFunc("/api/ping", pingHandler)
	mux.HandleFunc("/webhooks/email", HandleBounceNotification(api.Database))
	return middleware(mux)
}

// Writes a response as a JSON object to http.ResponseWriter w.
func writeJSON(w http.ResponseWriter, apiResponse response) {
	b, err := json.Marshal(apiResponse)
	if err != nil {
		msg := fmt.Sprintf("Internal error: could not format JSON. (%s)\n", err)
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiResponse.StatusCode)
	fmt.Fprintf(w, "%s\n", b)
}

// ParseTemplates initializes our HTML template data from dir.
func (api *API) ParseTemplates(dir string) {
	names := []string{"notice"}
	api.Templates = make(map[string]*template.Template)
	for _, name := range names {
		path := fmt.Sprintf("%s/%s.html.tmpl", dir, name)
		tmpl, err := template.ParseFiles(path)
		if err != nil {
			raven.CaptureError(err, nil)
			log.Fatal(err)
		}
		api.Templates[name] = tmpl
	}
}

// renderNotice writes a user-facing HTML page for the confirmation
// flow.
func (api *API) renderNotice(w http.ResponseWriter, status int, message string) {
	data := struct {
		Message    string
		StatusText string
		BaseURL    string
	}{
		Message:    message,
		StatusText: http.StatusText(status),
		BaseURL:    api.BaseURL,
	}
	tmpl, ok := api.Templates["notice"]
	if !ok {
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html;charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Println(err)
		raven.CaptureError(err, nil)
	}
}

func ok(message string) response {
	return response{StatusCode: http.StatusOK, Success: true, Message: message}
}

func badRequest(message string) response {
	return response{StatusCode: http.StatusBadRequest, Error: message}
}

func validationFailed(issues []models.FieldError) response {
	return response{StatusCode: http.StatusBadRequest, Error: "Validation failed", Details: issues}
}

func serverError(message string) response {
	return response{StatusCode: http.StatusInternalServerError, Error: message}
}

// rejectionMessage maps a parse failure to its user-facing text. A
// tripped honeypot gets the same response shape as any other rejected
// body.
func rejectionMessage(err error) string {
	if err == models.ErrBotDetected {
		return "Invalid submission"
	}
	return "Invalid request body"
}
