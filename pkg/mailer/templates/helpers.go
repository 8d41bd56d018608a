package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithChanges(ch map[string]string) Option {
	return func(d *EmailData) { d.Changes = ch }
}

func WithAppURL(url string) Option {
	return func(d *EmailData) { d.AppURL = url }
}

// NewData builds template data for a recipient and applies opts in order.
func NewData(appName, name, email string, opts ...Option) map[string]any {
	d := EmailData{Name: name, Email: email, AppName: appName}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
