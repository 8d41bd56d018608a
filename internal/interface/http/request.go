package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/taskmaster-api/pkg/response"
	"github.com/oksasatya/taskmaster-api/pkg/validation"
)

const msgInvalidPayload = "Invalid request payload"

var errInvalidDate = errors.New("must be a date (YYYY-MM-DD or RFC3339)")

// NullableDate decodes an optional JSON date. Set is true when the field was
// present; a null or empty string leaves Value nil.
type NullableDate struct {
	Set   bool
	Value *time.Time
}

func (d *NullableDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		d.Value = nil
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return errInvalidDate
	}
	t, err := parseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, errInvalidDate
}

// bindJSON decodes the body into dst. An empty body leaves dst zeroed so the
// service can report missing fields. It writes a 400 and returns false on
// malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, errInvalidDate) {
		response.Error(c, http.StatusBadRequest, msgInvalidPayload, map[string]string{"dueDate": errInvalidDate.Error()})
		return false
	}
	response.Error(c, http.StatusBadRequest, msgInvalidPayload, validation.ToDetails(err))
	return false
}
