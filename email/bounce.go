package email

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Recipients lists the email addresses a provider notification
// concerns.
type Recipients []string

// BounceNotification represents a bounce or complaint event posted by
// the mail provider's webhook, normalized across the Resend and
// Mailgun payload shapes.
type BounceNotification struct {
	Reason     string
	Timestamp  string
	Recipients Recipients
	Raw        string
}

// UnmarshalJSON wrangles provider webhook JSON into something easier to
// access and generalized across notification types. Resend posts
// {type, created_at, data:{to:[...]}}; Mailgun posts
// {event-data:{event, recipient, timestamp}}.
func (n *BounceNotification) UnmarshalJSON(b []byte) error {
	var resend struct {
		Type      string `json:"type"`
		CreatedAt string `json:"created_at"`
		Data      struct {
			To []string `json:"to"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &resend); err != nil {
		return fmt.Errorf("failed to decode notification: %v", err)
	}
	if len(resend.Data.To) > 0 {
		*n = BounceNotification{
			Reason:     resend.Type,
			Timestamp:  resend.CreatedAt,
			Recipients: resend.Data.To,
			Raw:        string(b),
		}
		return nil
	}

	var mailgun struct {
		EventData struct {
			Event     string  `json:"event"`
			Recipient string  `json:"recipient"`
			Timestamp float64 `json:"timestamp"`
		} `json:"event-data"`
	}
	if err := json.Unmarshal(b, &mailgun); err != nil {
		return fmt.Errorf("failed to decode notification: %v", err)
	}
	if mailgun.EventData.Recipient == "" {
		return fmt.Errorf("notification names no recipients")
	}
	*n = BounceNotification{
		Reason:     mailgun.EventData.Event,
		Timestamp:  strconv.FormatFloat(mailgun.EventData.Timestamp, 'f', -1, 64),
		Recipients: Recipients{mailgun.EventData.Recipient},
		Raw:        string(b),
	}
	return nil
}
