package service

import (
	"cbt_cms/internal/util"
	"sync"
)

// Reporter surfaces transient notifications and asks for confirmation of
// destructive actions.
type Reporter interface {
	Notify(kind, message string)
	Confirm(prompt string) bool
}

// RequestReporter collects the notifications raised while serving one HTTP
// request. Confirm answers with the caller's up-front decision.
type RequestReporter struct {
	mu        sync.Mutex
	confirmed bool
	notes     []util.Notification
	prompts   []string
}

func NewRequestReporter(confirmed bool) *RequestReporter {
	return &RequestReporter{confirmed: confirmed}
}

func (r *RequestReporter) Notify(kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, util.Notification{Kind: kind, Message: message})
}

func (r *RequestReporter) Confirm(prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	return r.confirmed
}

func (r *RequestReporter) Notifications() []util.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]util.Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

// Prompts lists the confirmations that were asked for.
func (r *RequestReporter) Prompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.prompts))
	copy(out, r.prompts)
	return out
}
