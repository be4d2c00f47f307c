package account

import (
	"net/http"

	"github.com/dmitrymomot/starterkit/pkg/cookie"
)

const noticesFlashKey = "notices"

// Notices are one-shot messages shown on the next rendered page after a
// redirect, classified the way the views expect them.
type Notices struct {
	Errors  []string `json:"errors,omitempty"`
	Success []string `json:"success,omitempty"`
	Info    []string `json:"info,omitempty"`
	Warning []string `json:"warning,omitempty"`
}

func (n Notices) IsEmpty() bool {
	return len(n.Errors) == 0 && len(n.Success) == 0 && len(n.Info) == 0 && len(n.Warning) == 0
}

func errorNotices(msgs ...string) Notices   { return Notices{Errors: msgs} }
func successNotices(msgs ...string) Notices { return Notices{Success: msgs} }
func infoNotices(msgs ...string) Notices    { return Notices{Info: msgs} }
func warningNotices(msgs ...string) Notices { return Notices{Warning: msgs} }

// queueNotices stores notices in a signed flash cookie for the next page.
func queueNotices(cookies *cookie.Manager, w http.ResponseWriter, n Notices) {
	if n.IsEmpty() {
		return
	}
	_ = cookies.SetFlash(w, noticesFlashKey, n)
}

// popNotices reads and consumes queued notices. A missing or tampered flash
// cookie simply yields no notices.
func popNotices(cookies *cookie.Manager, w http.ResponseWriter, r *http.Request) Notices {
	var n Notices
	_ = cookies.GetFlash(w, r, noticesFlashKey, &n)
	return n
}
