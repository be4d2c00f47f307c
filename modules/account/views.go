package account

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// The views are deliberately plain server-rendered HTML: each page is a
// templ component built from the shared page frame, with queued notices
// rendered as banners at the top.

func pageFrame(title string, notices Notices, content ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title></head><body><main>`,
			templ.EscapeString(title),
		); err != nil {
			return err
		}
		if err := noticeBanners(notices).Render(ctx, w); err != nil {
			return err
		}
		for _, c := range content {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func noticeBanners(n Notices) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		write := func(class string, msgs []string) error {
			for _, msg := range msgs {
				if _, err := fmt.Fprintf(w, `<div class="notice notice-%s" role="alert">%s</div>`,
					class, templ.EscapeString(msg)); err != nil {
					return err
				}
			}
			return nil
		}
		if err := write("error", n.Errors); err != nil {
			return err
		}
		if err := write("success", n.Success); err != nil {
			return err
		}
		if err := write("info", n.Info); err != nil {
			return err
		}
		return write("warning", n.Warning)
	})
}

func formField(label, inputHTML string) string {
	return fmt.Sprintf(`<label>%s %s</label>`, templ.EscapeString(label), inputHTML)
}

func textInput(name, typ, value string) string {
	return fmt.Sprintf(`<input type="%s" name="%s" value="%s">`,
		typ, name, templ.EscapeString(value))
}

func loginPage(n Notices, emailValue string) templ.Component {
	return pageFrame("Sign in", n, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<h1>Sign in</h1>
			<form method="post" action="/login">
			%s
			%s
			<button type="submit">Sign in</button>
			</form>
			<p><a href="/forgot">Forgot your password?</a></p>
			<p><a href="/signup">Create an account</a></p>
			<p><a href="/auth/google">Sign in with Google</a> &middot; <a href="/auth/facebook">Sign in with Facebook</a></p>`,
			formField("Email", textInput("email", "email", emailValue)),
			formField("Password", textInput("password", "password", "")),
		)
		return err
	}))
}

func signupPage(n Notices, emailValue string) templ.Component {
	return pageFrame("Create an account", n, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<h1>Create an account</h1>
			<form method="post" action="/signup">
			%s
			%s
			%s
			<button type="submit">Sign up</button>
			</form>
			<p><a href="/login">Already have an account?</a></p>`,
			formField("Email", textInput("email", "email", emailValue)),
			formField("Password", textInput("password", "password", "")),
			formField("Confirm password", textInput("confirm_password", "password", "")),
		)
		return err
	}))
}

func forgotPasswordPage(n Notices, emailValue string) templ.Component {
	return pageFrame("Forgot password", n, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<h1>Forgot password</h1>
			<p>Enter your email address and we will send you a link to reset your password.</p>
			<form method="post" action="/forgot">
			%s
			<button type="submit">Send reset link</button>
			</form>`,
			formField("Email", textInput("email", "email", emailValue)),
		)
		return err
	}))
}

func resetPasswordPage(n Notices, tok string) templ.Component {
	return pageFrame("Reset password", n, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<h1>Reset password</h1>
			<form method="post" action="/reset/%s">
			%s
			%s
			<button type="submit">Change password</button>
			</form>`,
			templ.EscapeString(tok),
			formField("New password", textInput("password", "password", "")),
			formField("Confirm password", textInput("confirm_password", "password", "")),
		)
		return err
	}))
}

func profilePage(n Notices, acc *Account) templ.Component {
	return pageFrame("Account", n, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		verified := "not verified"
		verifyLink := ` &middot; <a href="/account/verify">Send verification email</a>`
		if acc.EmailVerified {
			verified = "verified"
			verifyLink = ""
		}
		_, err := fmt.Fprintf(w,
			`<h1>Account</h1>
			<p>Email status: %s%s</p>
			<h2>Profile</h2>
			<form method="post" action="/account/profile">
			%s
			%s
			%s
			%s
			%s
			%s
			<button type="submit">Save profile</button>
			</form>
			<h2>Change password</h2>
			<form method="post" action="/account/password">
			%s
			%s
			<button type="submit">Change password</button>
			</form>
			<h2>Delete account</h2>
			<form method="post" action="/account/delete">
			<button type="submit">Delete my account</button>
			</form>
			<p><a href="/logout">Sign out</a></p>`,
			verified, verifyLink,
			formField("Email", textInput("email", "email", acc.Email)),
			formField("Name", textInput("name", "text", acc.Profile.Name)),
			formField("Gender", textInput("gender", "text", acc.Profile.Gender)),
			formField("Location", textInput("location", "text", acc.Profile.Location)),
			formField("Website", textInput("website", "text", acc.Profile.Website)),
			formField("Picture URL", textInput("picture", "text", acc.Profile.Picture)),
			formField("New password", textInput("password", "password", "")),
			formField("Confirm password", textInput("confirm_password", "password", "")),
		)
		return err
	}))
}

func homePage(n Notices, authenticated bool) templ.Component {
	return pageFrame("Home", n, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if authenticated {
			_, err := io.WriteString(w, `<h1>Welcome back</h1><p><a href="/account">Manage your account</a> &middot; <a href="/logout">Sign out</a></p>`)
			return err
		}
		_, err := io.WriteString(w, `<h1>Welcome</h1><p><a href="/login">Sign in</a> or <a href="/signup">create an account</a>.</p>`)
		return err
	}))
}
