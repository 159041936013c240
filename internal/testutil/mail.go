package testutil

import (
	"sync"

	"portal_backend/internal/email"
)

// SentMail - запись об отправленном письме
type SentMail struct {
	To         string
	Link       string
	Code       string
	TTLMinutes int
}

// MailRecorder запоминает письма вместо отправки. Письма уходят из горутин,
// поэтому чтение только через методы.
type MailRecorder struct {
	mu            sync.Mutex
	verifications []SentMail
	resetCodes    []SentMail
	plain         int
}

var _ email.Provider = (*MailRecorder)(nil)

func NewMailRecorder() *MailRecorder {
	return &MailRecorder{}
}

func (r *MailRecorder) Send(_ *email.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plain++
	return nil
}

func (r *MailRecorder) SendTemplate(to []string, subject string, templateName string, data email.TemplateData) error {
	return r.Send(nil)
}

func (r *MailRecorder) SendVerification(to string, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifications = append(r.verifications, SentMail{To: to, Link: link})
	return nil
}

func (r *MailRecorder) SendResetCode(to string, code string, ttlMinutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetCodes = append(r.resetCodes, SentMail{To: to, Code: code, TTLMinutes: ttlMinutes})
	return nil
}

func (r *MailRecorder) Validate() error { return nil }

// LastVerification - последнее письмо подтверждения на адрес
func (r *MailRecorder) LastVerification(to string) (SentMail, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return last(r.verifications, to)
}

// LastResetCode - последний код сброса на адрес
func (r *MailRecorder) LastResetCode(to string) (SentMail, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return last(r.resetCodes, to)
}

// Total - сколько писем всего ушло
func (r *MailRecorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.verifications) + len(r.resetCodes) + r.plain
}

func last(list []SentMail, to string) (SentMail, bool) {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].To == to {
			return list[i], true
		}
	}
	return SentMail{}, false
}
