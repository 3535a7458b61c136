package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strings"
)

func mailgunBaseURLFromEnv() string {
	if os.Getenv("MAILGUN_EU") == "1" {
		return "https://api.eu.mailgun.net"
	}
	return "https://api.mailgun.net"
}

func (c Config) sendViaMailgun(name string, address string, message string) error {
	form := url.Values{}
	form.Set("from", c.mailgunFrom)
	form.Set("to", c.contactTo)
	form.Set("subject", fmt.Sprintf("Contact form: %s", name))
	form.Set("text", contactMessageText(name, address, message))
	form.Set("h:Reply-To", fmt.Sprintf("%s <%s>", name, address))
	endpoint := fmt.Sprintf("%s/v3/%s/messages", c.mailgunBaseURL, c.mailgunDomain)
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", c.mailgunAPIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := ioutil.ReadAll(resp.Body)
		return fmt.Errorf("mailgun responded with %d: %s", resp.StatusCode, detail)
	}
	return nil
}

func (c Config) forwardViaWebhook(name string, address string, message string) error {
	body, err := json.Marshal(map[string]string{
		"name":    name,
		"email":   address,
		"message": message,
		"source":  "wchen.ai contact form",
	})
	if err != nil {
		return err
	}
	resp, err := c.client.Post(c.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with %d", resp.StatusCode)
	}
	return nil
}
