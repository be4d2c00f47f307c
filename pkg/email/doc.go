// Package email provides a provider-agnostic interface for sending the
// transactional emails of the account system: password reset links and
// email verification links.
//
// The package is built around the EmailSender interface so providers can be
// swapped without touching application code:
//   - NewPostmarkClient for production delivery with open/click tracking
//   - NewDevSender for local development (saves emails to disk)
//
// All implementations validate parameters before sending and report failures
// through the package's sentinel errors:
//   - ErrInvalidConfig: configuration validation failed
//   - ErrInvalidParams: email parameters validation failed
//   - ErrFailedToSendEmail: delivery failed
//
// Basic usage:
//
//	client, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    return err
//	}
//
//	err = client.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "user@example.com",
//	    Subject:  "Reset your password",
//	    BodyHTML: html,
//	    Tag:      "password-reset",
//	})
//
// HTML bodies are produced with the templates subpackage, which renders
// templ components to strings.
package email
