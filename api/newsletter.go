package api

import (
	"io/ioutil"
	"log"
	"net/http"
	"time"

	raven "github.com/getsentry/raven-go"

	"github.com/wchen-ai/site-backend/models"
)

const (
	checkEmailMessage     = "Check your email to confirm your subscription."
	somethingWrongMessage = "Something went wrong. Please try again later."
	invalidLinkMessage    = "Invalid confirmation link. Please try subscribing again."
	// Expired and tampered links share one message so the response
	// doesn't reveal which check failed.
	rejectedLinkMessage = "This link is invalid or has expired. Please subscribe again."
)

// newsletter is the handler for /api/newsletter.
//   POST /api/newsletter
//        {email, _honey}
// Mints a signed confirmation token and emails the confirmation link.
// The token is stateless; nothing is stored until the link is visited.
func (api *API) newsletter(r *http.Request) response {
	raw, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return serverError("Failed to process subscription. Please try again later.")
	}
	intent, issues, err := models.ParseSubscriptionIntent(raw)
	if err != nil {
		return badRequest(rejectionMessage(err))
	}
	if len(issues) > 0 {
		return validationFailed(issues)
	}
	if api.Secret == "" || !api.Emailer.CanSubscribe() {
		// Same response as the configured path, so the client can't
		// probe configuration state.
		log.Println("Warning: newsletter delivery not configured, accepting without sending")
		return ok(checkEmailMessage)
	}
	address := models.NormalizeEmail(intent.Email)
	token := models.MintToken(address, api.Secret)
	if err := api.Emailer.SendConfirmation(address, token.ConfirmURL(api.BaseURL)); err != nil {
		log.Printf("confirmation delivery failed: %v", err)
		raven.CaptureError(err, nil)
		return serverError("Failed to process subscription. Please try again later.")
	}
	return ok(checkEmailMessage)
}

// newsletterConfirm is the handler for /api/newsletter-confirm.
//   GET /api/newsletter-confirm?email=<address>&ts=<unix seconds>&sig=<hex>
// Verifies the signed link statelessly, registers the subscriber, and
// redirects to the subscribed page. Failures render an HTML notice
// since the link is opened from an email client.
func (api *API) newsletterConfirm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	address, ts, sig := q.Get("email"), q.Get("ts"), q.Get("sig")
	if address == "" || ts == "" || sig == "" {
		api.renderNotice(w, http.StatusBadRequest, invalidLinkMessage)
		return
	}
	if api.Secret == "" || !api.Emailer.CanSubscribe() {
		log.Println("newsletter confirmation is not configured")
		api.renderNotice(w, http.StatusInternalServerError, somethingWrongMessage)
		return
	}
	if err := models.CheckToken(address, ts, sig, api.Secret, time.Now()); err != nil {
		log.Printf("confirmation rejected for %s: %v", address, err)
		api.renderNotice(w, http.StatusBadRequest, rejectedLinkMessage)
		return
	}
	if err := api.Emailer.RegisterContact(address); err != nil {
		log.Printf("contact registration failed: %v", err)
		raven.CaptureError(err, nil)
		api.renderNotice(w, http.StatusInternalServerError, somethingWrongMessage)
		return
	}
	http.Redirect(w, r, api.BaseURL+"/newsletter-confirmed", http.StatusFound)
}
