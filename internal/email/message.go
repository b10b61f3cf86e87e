// Package email builds the localized transactional emails sent to users.
package email

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"docanalyzer/internal/i18n"
	"docanalyzer/internal/port"
)

// Message is a rendered email ready to hand to a transport.
type Message struct {
	Subject string
	Text    string
	HTML    string
	// Link is the call-to-action URL embedded in the body.
	Link string
}

// VerificationMessage renders the email-verification email.
func VerificationMessage(frontendURL, toName, lang, token string) Message {
	link := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(frontendURL, "/"), url.QueryEscape(token))
	return render(
		i18n.T(lang, i18n.MsgVerifySubject),
		i18n.T(lang, i18n.MsgVerifyBody, toName, link),
		link,
	)
}

// PasswordResetMessage renders the password-reset email.
func PasswordResetMessage(frontendURL, toName, lang, token string) Message {
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(frontendURL, "/"), url.QueryEscape(token))
	return render(
		i18n.T(lang, i18n.MsgResetSubject),
		i18n.T(lang, i18n.MsgResetBody, toName, link),
		link,
	)
}

// AnalysisCompletedMessage renders the notification sent when an order's analyses finish.
func AnalysisCompletedMessage(frontendURL string, msg port.AnalysisCompletedEmail) Message {
	link := fmt.Sprintf("%s/orders/%s", strings.TrimRight(frontendURL, "/"), url.PathEscape(msg.OrderID))
	return render(
		i18n.T(msg.Language, i18n.MsgCompletedSubject, msg.OrderTitle),
		i18n.T(msg.Language, i18n.MsgCompletedBody, msg.ToName, msg.OrderTitle, msg.Succeeded, msg.Failed, link),
		link,
	)
}

func render(subject, text, link string) Message {
	var body strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		escaped := html.EscapeString(para)
		if link != "" {
			escapedLink := html.EscapeString(link)
			escaped = strings.ReplaceAll(escaped, escapedLink,
				fmt.Sprintf(`<a href="%s" style="color: #4F46E5;">%s</a>`, escapedLink, escapedLink))
		}
		body.WriteString("  <p>")
		body.WriteString(strings.ReplaceAll(escaped, "\n", "<br>"))
		body.WriteString("</p>\n")
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
%s  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">DocAnalyzer</p>
</body>
</html>`, html.EscapeString(subject), body.String())

	return Message{Subject: subject, Text: text, HTML: htmlBody, Link: link}
}
