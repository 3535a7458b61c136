package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"os"

	raven "github.com/getsentry/raven-go"

	"github.com/wchen-ai/site-backend/db"
	"github.com/wchen-ai/site-backend/email"
)

// HandleBounceNotification handles bounce and complaint events
// submitted by the mail provider's webhook, so suppressed addresses are
// never mailed again. The webhook is configured to include a secret key
// stored in the environment.
func HandleBounceNotification(database db.Database) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		authKey := os.Getenv("WEBHOOK_AUTH_KEY")
		keyParam := r.URL.Query()["auth_key"]
		if authKey == "" || len(keyParam) == 0 || keyParam[0] != authKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			raven.CaptureError(err, nil)
			return
		}

		data := &email.BounceNotification{}
		if err := json.Unmarshal(body, data); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			raven.CaptureError(err, nil)
			return
		}

		for _, recipient := range data.Recipients {
			if err := database.PutSuppressedEmail(recipient, data.Reason, data.Timestamp); err != nil {
				raven.CaptureError(err, nil)
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}
