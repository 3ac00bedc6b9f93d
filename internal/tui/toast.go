package tui

import (
	"strings"
	"time"

	"github.com/naveenspark/arena/internal/session"
)

const (
	toastTTL  = 4 * time.Second
	maxToasts = 3
)

type toast struct {
	level   session.Level
	text    string
	expires time.Time
}

// toastQueue holds the visible toasts, oldest first.
type toastQueue []toast

// push adds a toast. A repeat of the newest toast only extends its life.
func (q toastQueue) push(level session.Level, text string, now time.Time) toastQueue {
	if text == "" {
		return q
	}
	if n := len(q); n > 0 && q[n-1].text == text && q[n-1].level == level {
		out := append(toastQueue(nil), q...)
		out[n-1].expires = now.Add(toastTTL)
		return out
	}
	out := append(append(toastQueue(nil), q...), toast{level: level, text: text, expires: now.Add(toastTTL)})
	if len(out) > maxToasts {
		out = out[len(out)-maxToasts:]
	}
	return out
}

// expire drops toasts whose time is up.
func (q toastQueue) expire(now time.Time) toastQueue {
	var out toastQueue
	for _, t := range q {
		if now.Before(t.expires) {
			out = append(out, t)
		}
	}
	return out
}

func (q toastQueue) render(width int) string {
	if len(q) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range q {
		b.WriteString(" " + toastStyle(t.level).Render("▌ "+truncStr(t.text, max(width-4, 10))) + "\n")
	}
	return b.String()
}
