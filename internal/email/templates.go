package email

import (
	"fmt"
	"html/template"
	"strings"
)

var verificationHTML = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #000; color: #fff; padding: 20px; text-align: center;">
      <h1>Email Verification</h1>
    </div>
    <div style="padding: 20px; background: #f9f9f9; border: 1px solid #ddd;">
      <p>Hello {{.Username}},</p>
      <p>Thank you for registering! Please use the verification code below to verify your email address:</p>
      <div style="font-size: 24px; font-weight: bold; text-align: center; padding: 10px; margin: 20px 0; background: #eee;">{{.Code}}</div>
      <p>This code will expire in {{.ExpiresIn}}.</p>
      <p>If you didn't request this verification, please ignore this email.</p>
    </div>
    <div style="text-align: center; margin-top: 20px; color: #666; font-size: 12px;">
      <p>This is an automated message, please do not reply.</p>
    </div>
  </div>
</body>
</html>`))

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 40px auto; background: #fff; border-radius: 10px; overflow: hidden;">
    <div style="background: #111; padding: 25px; text-align: center;">
      <h1 style="color: #fff; margin: 0;">Welcome to {{.AppName}}</h1>
    </div>
    <div style="padding: 30px; color: #333; line-height: 1.6;">
      <h2>Hello {{.Username}},</h2>
      <p>We are excited to have you onboard. Your email has been successfully verified and your account is now active.</p>
      <p>You can now log in and start exploring the full features of our platform.</p>
      {{if .LoginURL}}<a href="{{.LoginURL}}" style="display: inline-block; background: #111; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Go to Dashboard</a>{{end}}
      <p style="margin-top: 20px;">Welcome once again,<br><strong>Team {{.AppName}}</strong></p>
    </div>
    <div style="text-align: center; padding: 18px; font-size: 12px; color: #777; border-top: 1px solid #eee;">
      This is an automated message, please do not reply.
    </div>
  </div>
</body>
</html>`))

// VerificationMessage builds the code-dispatch email for the given
// recipient. ExpiresIn is rendered verbatim ("10 minutes").
func VerificationMessage(appName, username, toEmail, code, expiresIn string) (Message, error) {
	var html strings.Builder
	err := verificationHTML.Execute(&html, struct {
		Username, Code, ExpiresIn string
	}{username, code, expiresIn})
	if err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}

	text := strings.Join([]string{
		"Hello " + username + ",",
		"",
		"Your " + appName + " verification code is: " + code,
		"",
		"This code will expire in " + expiresIn + ".",
		"If you didn't request this verification, please ignore this email.",
	}, "\n")

	return Message{
		ToEmail:  toEmail,
		Subject:  "Verify your " + appName + " email address",
		TextBody: text,
		HTMLBody: html.String(),
	}, nil
}

func WelcomeMessage(appName, username, toEmail, loginURL string) (Message, error) {
	var html strings.Builder
	err := welcomeHTML.Execute(&html, struct {
		AppName, Username, LoginURL string
	}{appName, username, loginURL})
	if err != nil {
		return Message{}, fmt.Errorf("render welcome email: %w", err)
	}

	lines := []string{
		"Hello " + username + ",",
		"",
		"Your email has been verified and your " + appName + " account is now active.",
	}
	if loginURL != "" {
		lines = append(lines, "", "Log in here: "+loginURL)
	}

	return Message{
		ToEmail:  toEmail,
		Subject:  "Welcome to " + appName + "!",
		TextBody: strings.Join(lines, "\n"),
		HTMLBody: html.String(),
	}, nil
}
