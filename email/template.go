package email

import "fmt"

const confirmationSubject = "Confirm your subscription to Wilson Chen's writing"

const confirmationTemplate = `<p>Thanks for subscribing! Click the link below to confirm:</p><p><a href="%s">Confirm subscription</a></p><p>This link expires in 24 hours.</p>`

func confirmationHTML(confirmURL string) string {
	return fmt.Sprintf(confirmationTemplate, confirmURL)
}

func contactMessageText(name string, address string, message string) string {
	return fmt.Sprintf("From: %s <%s>\n\n%s", name, address, message)
}
