package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

type codeData struct {
	AppName string
	Code    string
	Minutes int
}

var (
	loginCodeText = texttemplate.Must(texttemplate.New("login_text").Parse(
		`Your {{.AppName}} sign-in code is {{.Code}}.

It expires in {{.Minutes}} minutes. If you did not try to sign in, change your password.
`))

	loginCodeHTML = htmltemplate.Must(htmltemplate.New("login_html").Parse(`
		<h2>Your {{.AppName}} sign-in code</h2>
		<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
		<p>This code will expire in {{.Minutes}} minutes.</p>
		<p>If you did not try to sign in, please change your password.</p>
	`))

	resetCodeText = texttemplate.Must(texttemplate.New("reset_text").Parse(
		`Your {{.AppName}} password reset code is {{.Code}}.

It expires in {{.Minutes}} minutes. If you did not request a password reset, ignore this email.
`))

	resetCodeHTML = htmltemplate.Must(htmltemplate.New("reset_html").Parse(`
		<h2>Reset your {{.AppName}} password</h2>
		<p>Use the code below to continue resetting your password:</p>
		<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
		<p>This code will expire in {{.Minutes}} minutes.</p>
		<p>If you did not request a password reset, please ignore this email.</p>
	`))
)

// LoginCode renders the step-up code sent after a correct password
func LoginCode(appName, to, code string, validFor time.Duration) (Message, error) {
	return render(to, fmt.Sprintf("Your %s sign-in code", appName),
		loginCodeText, loginCodeHTML, codeData{AppName: appName, Code: code, Minutes: minutes(validFor)})
}

// PasswordResetCode renders the code sent for account recovery
func PasswordResetCode(appName, to, code string, validFor time.Duration) (Message, error) {
	return render(to, fmt.Sprintf("Reset your %s password", appName),
		resetCodeText, resetCodeHTML, codeData{AppName: appName, Code: code, Minutes: minutes(validFor)})
}

func render(to, subject string, text *texttemplate.Template, html *htmltemplate.Template, data codeData) (Message, error) {
	var textBody, htmlBody bytes.Buffer
	if err := text.Execute(&textBody, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute email template: %w", err)
	}
	if err := html.Execute(&htmlBody, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute email template: %w", err)
	}

	return Message{
		To:      to,
		Subject: subject,
		Text:    textBody.String(),
		HTML:    htmlBody.String(),
	}, nil
}

func minutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}
