package account

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/starterkit/pkg/email"
	"github.com/dmitrymomot/starterkit/pkg/email/templates"
)

// passwordResetEmail builds the reset-link message. The token is a bearer
// credential; the link is the only place it leaves the system.
func passwordResetEmail(cfg Config, to, tok string) email.SendEmailParams {
	link := fmt.Sprintf("%s/reset/%s", cfg.AppURL, tok)
	body := templates.Layout("Reset your password",
		templates.Heading("Reset your password"),
		templates.Text(fmt.Sprintf("You are receiving this email because you (or someone else) requested a password reset for your %s account.", cfg.AppName)),
		templates.Text("Click the button below to choose a new password. The link expires in one hour."),
		templates.PrimaryButton(link, "Reset password"),
		templates.LinkFallback(link),
		templates.TextSecondary("If you did not request this, ignore this email and your password will remain unchanged."),
	)

	return email.SendEmailParams{
		SendTo:   to,
		Subject:  fmt.Sprintf("Reset your password on %s", cfg.AppName),
		BodyHTML: renderEmail(body),
		Tag:      "password-reset",
	}
}

// passwordChangedEmail confirms a completed reset.
func passwordChangedEmail(cfg Config, to string) email.SendEmailParams {
	body := templates.Layout("Your password has been changed",
		templates.Heading("Your password has been changed"),
		templates.Text(fmt.Sprintf("This is a confirmation that the password for your %s account %s has just been changed.", cfg.AppName, to)),
		templates.TextSecondary("If this wasn't you, reset your password immediately and contact support."),
	)

	return email.SendEmailParams{
		SendTo:   to,
		Subject:  "Your password has been changed",
		BodyHTML: renderEmail(body),
		Tag:      "password-changed",
	}
}

// emailVerificationEmail builds the verify-address message. The token never
// expires; confirmation additionally requires the authenticated owner.
func emailVerificationEmail(cfg Config, to, tok string) email.SendEmailParams {
	link := fmt.Sprintf("%s/account/verify/%s", cfg.AppURL, tok)
	body := templates.Layout("Verify your email address",
		templates.Heading("Verify your email address"),
		templates.Text(fmt.Sprintf("Thank you for registering with %s. Please confirm your email address by clicking the button below.", cfg.AppName)),
		templates.PrimaryButton(link, "Verify email"),
		templates.LinkFallback(link),
	)

	return email.SendEmailParams{
		SendTo:   to,
		Subject:  fmt.Sprintf("Please verify your email address on %s", cfg.AppName),
		BodyHTML: renderEmail(body),
		Tag:      "email-verification",
	}
}

// renderEmail renders a component to HTML. The components write into a
// strings.Builder, so the only failure mode is a broken component; an empty
// body fails params validation downstream and surfaces as a send failure.
func renderEmail(c templ.Component) string {
	html, err := templates.Render(context.Background(), c)
	if err != nil {
		return ""
	}
	return html
}
