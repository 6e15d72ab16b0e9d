package mailer

import (
	"bytes"
	"fmt"
	html "html/template"
	texttpl "text/template"
)

const resetSubject = "Reset your password"

const resetText = `Hi {{.Username}},

Someone requested a password reset for your account. If this was you,
open the link below within {{.ExpiresIn}}:

{{.ResetURL}}

If you did not request a reset, you can ignore this email.
`

const resetHTML = `<p>Hi {{.Username}},</p>
<p>Someone requested a password reset for your account. If this was you,
open the link below within {{.ExpiresIn}}:</p>
<p><a href="{{.ResetURL}}">Reset password</a></p>
<p>If you did not request a reset, you can ignore this email.</p>
`

var (
	resetTextTpl = texttpl.Must(texttpl.New("reset_text").Parse(resetText))
	resetHTMLTpl = html.Must(html.New("reset_html").Parse(resetHTML))
)

// Render produces subject/text/html for a named template. Data keys follow
// the template's field names (Username, ResetURL, ExpiresIn).
func Render(template string, data map[string]any) (subject, text, htmlBody string, err error) {
	switch template {
	case "reset_password":
		var tb, hb bytes.Buffer
		if err = resetTextTpl.Execute(&tb, data); err != nil {
			return
		}
		if err = resetHTMLTpl.Execute(&hb, data); err != nil {
			return
		}
		return resetSubject, tb.String(), hb.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", template)
	}
}
