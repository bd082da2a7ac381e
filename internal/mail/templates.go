// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// OTPSubject is the subject line of verification emails.
const OTPSubject = "Your Verification Code"

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Verification Code</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .code { font-size: 32px; font-weight: bold; color: #2e7d32; text-align: center; padding: 20px; background: #f5f5f5; border-radius: 5px; margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Your Verification Code</h2>
        <p>Please use the following code to verify your account:</p>
        <div class="code">{{.Code}}</div>
        <p>This code will expire in {{.Minutes}} minutes.</p>
        <p>If you didn't request this code, please ignore this email.</p>
        <div class="footer">
            <p>&copy; {{.Year}} Smart Greenhouse Management System</p>
        </div>
    </div>
</body>
</html>
`))

type otpData struct {
	Code    string
	Minutes int
	Year    int
}

// RenderOTP builds the verification message for code, valid for ttl.
func RenderOTP(to, code string, ttl time.Duration, now time.Time) (Message, error) {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	data := otpData{Code: code, Minutes: minutes, Year: now.Year()}

	var html bytes.Buffer
	if err := otpTemplate.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render otp email: %w", err)
	}

	text := fmt.Sprintf("Your Verification Code\n\nPlease use the following code to verify your account: %s\n\n"+
		"This code will expire in %d minutes.\n\nIf you didn't request this code, please ignore this email.\n\n"+
		"© %d Smart Greenhouse Management System\n", code, minutes, data.Year)

	return Message{To: to, Subject: OTPSubject, HTML: html.String(), Text: text}, nil
}
