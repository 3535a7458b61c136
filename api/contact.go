package api

import (
	"io/ioutil"
	"log"
	"net/http"

	raven "github.com/getsentry/raven-go"

	"github.com/wchen-ai/site-backend/models"
)

// contact is the handler for /api/contact.
//   POST /api/contact
//        {name, email, message, _honey}
// Validates the submission and forwards it to the configured contact
// provider. Nothing is persisted.
func (api *API) contact(r *http.Request) response {
	raw, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return serverError("Failed to send message. Please try again later.")
	}
	submission, issues, err := models.ParseContactSubmission(raw)
	if err != nil {
		return badRequest(rejectionMessage(err))
	}
	if len(issues) > 0 {
		return validationFailed(issues)
	}
	if !api.Emailer.CanSend() {
		log.Println("Warning: contact delivery not configured, accepting without sending")
		return ok("Development mode: Message received but not sent.")
	}
	submission = submission.Trimmed()
	if err := api.Emailer.ForwardMessage(submission.Name, submission.Email, submission.Message); err != nil {
		log.Printf("contact delivery failed: %v", err)
		raven.CaptureError(err, nil)
		return serverError("Failed to send message. Please try again later.")
	}
	return ok("Thanks for reaching out! I'll get back to you soon.")
}
