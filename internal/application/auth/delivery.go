package auth

import (
	"fmt"
	"time"

	"github.com/bahir-ride/api/internal/domain"
)

func purposeLabel(purpose domain.OTCPurpose) string {
	switch purpose {
	case domain.PurposeReset:
		return "password reset"
	case domain.PurposeLogin:
		return "login"
	default:
		return "verification"
	}
}

func codeSMS(code string, purpose domain.OTCPurpose, ttl time.Duration) string {
	return fmt.Sprintf("Your Bahir Ride %s code is %s. It expires in %d minutes. Do not share it with anyone.",
		purposeLabel(purpose), code, int(ttl.Minutes()))
}

func codeEmail(firstName, code string, purpose domain.OTCPurpose, ttl time.Duration) (subject, text, html string) {
	label := purposeLabel(purpose)
	name := firstName
	if name == "" {
		name = "there"
	}
	minutes := int(ttl.Minutes())

	subject = fmt.Sprintf("Your Bahir Ride %s code", label)
	text = fmt.Sprintf("Hi %s,\n\nYour %s code is %s. It expires in %d minutes.\n\nIf you did not request this, you can ignore this email.\n\nBahir Ride",
		name, label, code, minutes)
	html = fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto;padding:24px">
  <h2 style="color:#1a7f5a">Bahir Ride</h2>
  <p>Hi %s,</p>
  <p>Your %s code is:</p>
  <p style="font-size:32px;letter-spacing:8px;font-weight:bold;text-align:center;background:#f4f4f4;padding:16px;border-radius:8px">%s</p>
  <p>It expires in <strong>%d minutes</strong>.</p>
  <p style="color:#888;font-size:12px">If you did not request this, you can ignore this email.</p>
</div>`, name, label, code, minutes)
	return subject, text, html
}
