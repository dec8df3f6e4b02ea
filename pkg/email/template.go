package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// ContactEmailData holds the data for contact form emails. Empty optional
// fields are left out of the rendered body.
type ContactEmailData struct {
	Name     string
	Email    string
	Company  string
	Phone    string
	Category string
	Budget   string
	Message  string
}

// contactEmailTemplate is the HTML template for contact form emails. The same
// body goes to the operator and, as a confirmation copy, to the sender.
const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>お問い合わせを受け付けました</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0a0a0a; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #0a0a0a; margin-top: 10px; white-space: pre-wrap; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Welcome, {{.Name}}!</h1>
        </div>
        <div class="content">
            <p>Thank you for contacting KONDAX.</p>
            <p>We will get back to you as soon as possible.</p>
            <div class="field"><span class="label">Email:</span> {{.Email}}</div>
            {{- if .Company}}
            <div class="field"><span class="label">Company:</span> {{.Company}}</div>
            {{- end}}
            {{- if .Phone}}
            <div class="field"><span class="label">Phone:</span> {{.Phone}}</div>
            {{- end}}
            {{- if .Category}}
            <div class="field"><span class="label">Category:</span> {{.Category}}</div>
            {{- end}}
            {{- if .Budget}}
            <div class="field"><span class="label">Budget:</span> {{.Budget}}</div>
            {{- end}}
            <div class="field">
                <div class="label">Message:</div>
                <div class="message-box">{{.Message}}</div>
            </div>
        </div>
        <div class="footer">
            <p>This email was sent from the KONDAX contact form.</p>
        </div>
    </div>
</body>
</html>`

var contactTmpl = template.Must(template.New("contact").Parse(contactEmailTemplate))

// RenderContactEmail renders the contact notification body.
func RenderContactEmail(data ContactEmailData) (string, error) {
	var body bytes.Buffer
	if err := contactTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}
