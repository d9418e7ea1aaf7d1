package report

import (
	"net/url"
	"strings"
)

// Handoff is a deep-link payload for an external client. AppURI opens the
// native application; WebURL is the browser fallback carrying the same
// payload. Once either is fired, delivery is out of our hands.
type Handoff struct {
	AppURI string `json:"app_uri"`
	WebURL string `json:"web_url,omitempty"`
	Body   string `json:"body"`
}

// MailtoLink builds a mailto: URI with percent-encoded subject and body.
func MailtoLink(to []string, subject, body string) Handoff {
	params := url.Values{}
	params.Set("subject", subject)
	params.Set("body", body)
	// mailto bodies need %20, not '+'
	query := strings.ReplaceAll(params.Encode(), "+", "%20")
	return Handoff{
		AppURI: "mailto:" + strings.Join(to, ",") + "?" + query,
		Body:   body,
	}
}

// WhatsAppLinks builds the messaging deep link: the whatsapp:// scheme for
// the native app, with the web client URL as fallback when the app cannot
// be invoked.
func WhatsAppLinks(text string) Handoff {
	encoded := url.QueryEscape(text)
	return Handoff{
		AppURI: "whatsapp://send?text=" + encoded,
		WebURL: "https://web.whatsapp.com/send?text=" + encoded,
		Body:   text,
	}
}
