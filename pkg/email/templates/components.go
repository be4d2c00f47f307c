package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps email content in a minimal table-based frame that renders
// consistently across email clients. Styles are inlined; external CSS is
// stripped by most providers.
func Layout(title string, content ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title></head>`+
				`<body style="margin:0;padding:0;background-color:#f4f4f5;font-family:Helvetica,Arial,sans-serif;">`+
				`<table role="presentation" width="100%%" cellpadding="0" cellspacing="0">`+
				`<tr><td align="center" style="padding:32px 16px;">`+
				`<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:32px;">`+
				`<tr><td>`,
			templ.EscapeString(title),
		); err != nil {
			return err
		}
		for _, c := range content {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</td></tr></table></td></tr></table></body></html>`)
		return err
	})
}

// Heading renders the email's main heading.
func Heading(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<h1 style="margin:0 0 16px;font-size:20px;color:#18181b;">%s</h1>`,
			templ.EscapeString(text),
		)
		return err
	})
}

// Text renders a paragraph of body copy.
func Text(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<p style="margin:0 0 16px;font-size:14px;line-height:22px;color:#3f3f46;">%s</p>`,
			templ.EscapeString(text),
		)
		return err
	})
}

// TextSecondary renders muted fine print, used for the "ignore this email"
// footer lines.
func TextSecondary(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<p style="margin:16px 0 0;font-size:12px;line-height:18px;color:#a1a1aa;">%s</p>`,
			templ.EscapeString(text),
		)
		return err
	})
}

// PrimaryButton renders the call-to-action link as a button.
func PrimaryButton(url, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<a href="%s" style="display:inline-block;padding:12px 24px;background-color:#2563eb;color:#ffffff;font-size:14px;font-weight:600;text-decoration:none;border-radius:6px;">%s</a>`,
			string(templ.URL(url)), templ.EscapeString(label),
		)
		return err
	})
}

// LinkFallback renders the raw URL under the button for clients that block
// styled links.
func LinkFallback(url string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<p style="margin:16px 0 0;font-size:12px;color:#71717a;word-break:break-all;">Or paste this link into your browser: <a href="%s" style="color:#2563eb;">%s</a></p>`,
			string(templ.URL(url)), templ.EscapeString(url),
		)
		return err
	})
}
