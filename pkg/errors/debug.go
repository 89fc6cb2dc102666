package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorDump flattens an error chain for structured logging.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

// UpstreamError describes a non-2xx answer from a collaborator service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return ""
	}
	if e.Body == "" {
		return fmt.Sprintf("%s responded with status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s responded with status %d: %s", e.Service, e.StatusCode, e.Body)
}

// FromUpstream maps a collaborator's non-2xx status to a typed error. Rejections of the
// request become validation or not-found errors; everything else is a dependency failure.
func FromUpstream(service string, status int, body, message string) *Error {
	cause := &UpstreamError{Service: service, StatusCode: status, Body: body}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return Wrap(CodeValidation, cause, message)
	case http.StatusNotFound:
		return Wrap(CodeNotFound, cause, message)
	default:
		return Wrap(CodeDependency, cause, message)
	}
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		d.UpstreamStatus = upstream.StatusCode
		d.UpstreamBody = upstream.Body
	}

	return d
}
