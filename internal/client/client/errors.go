package client

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/liftaudit/internal/common"
)

// ServerError is a structured rejection from the sync endpoint: a non-ok
// envelope or a non-2xx HTTP status. It matches common.ErrServerRejected
// via errors.Is.
type ServerError struct {
	HTTPStatus int
	Code       string
	Message    string
	Errors     map[string][]string
}

func (e *ServerError) Error() string {
	var b strings.Builder
	b.WriteString("server rejected request")
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for field := range e.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(&b, "; %s: %s", field, strings.Join(e.Errors[field], ", "))
		}
	}
	return b.String()
}

func (e *ServerError) Unwrap() error {
	return common.ErrServerRejected
}
