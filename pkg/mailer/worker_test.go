package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/taskmaster-api/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject, text, html string
	calls                   int
	err                     error
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	s.calls++
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

func TestPrepare_WelcomeTemplate(t *testing.T) {
	job := EmailJob{
		To:       "alice@example.com",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewData("TaskMaster", "Alice", ""),
	}

	subject, text, html, err := Prepare(&job)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to TaskMaster", subject)
	assert.Contains(t, text, "Hi Alice")
	assert.Contains(t, text, "alice@example.com")
	assert.Contains(t, html, "Welcome, Alice!")
}

func TestPrepare_ProfileUpdatedListsChanges(t *testing.T) {
	job := EmailJob{
		To:       "bob@example.com",
		Template: mailtpl.ProfileUpdated,
		Data: mailtpl.NewData("TaskMaster", "Bob", "bob@example.com",
			mailtpl.WithTime(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
			mailtpl.WithChanges(map[string]string{"name": "Bob", "password": "changed"}),
		),
	}

	_, text, _, err := Prepare(&job)
	require.NoError(t, err)
	assert.Contains(t, text, "01 March 2024, 09:30")
	assert.Contains(t, text, "- name: Bob")
	assert.Contains(t, text, "- password: changed")
}

func TestPrepare_RejectsBadJobs(t *testing.T) {
	cases := map[string]EmailJob{
		"no recipient":     {Template: mailtpl.Welcome},
		"unknown template": {To: "a@b.c", Template: "nope"},
		"no body":          {To: "a@b.c", Subject: "hi"},
	}
	for name, job := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := Prepare(&job)
			assert.ErrorIs(t, err, ErrBadJob)
		})
	}
}

func TestWorker_Handle(t *testing.T) {
	sender := &recordingSender{}
	w := &Worker{Sender: sender}

	body, err := json.Marshal(EmailJob{To: "c@example.com", Subject: "Hello", Text: "plain"})
	require.NoError(t, err)
	require.NoError(t, w.Handle(context.Background(), body))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "c@example.com", sender.to)
	assert.Equal(t, "Hello", sender.subject)

	assert.ErrorIs(t, w.Handle(context.Background(), []byte("{not json")), ErrBadJob)

	sender.err = errors.New("mailgun down")
	err = w.Handle(context.Background(), body)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadJob)
}
