package client

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthRequiredError is returned for 401/403 responses and for "successful"
// responses that turned out to be a login page.
type AuthRequiredError struct {
	StatusCode int
	Reason     string // What gave the session away: status, redirect or html
	Page       string // Title of the login page, when one came back
}

func (e *AuthRequiredError) Error() string {
	return "Authentication required"
}

// BadRequestError carries the body of a 400 response, usually a stock or
// validation message written for humans.
type BadRequestError struct {
	Body string
}

func (e *BadRequestError) Error() string {
	return "Bad request: " + e.Body
}

// HTTPError is any other non-2xx response.
type HTTPError struct {
	StatusCode int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusText)
}

// ClientError wraps transport and decoding failures.
type ClientError struct {
	Op  string
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func IsAuthRequired(err error) bool {
	var authErr *AuthRequiredError
	return errors.As(err, &authErr)
}

func IsBadRequest(err error) bool {
	var badReq *BadRequestError
	return errors.As(err, &badReq)
}

func newHTTPError(code int) *HTTPError {
	text := http.StatusText(code)
	if text == "" {
		text = "Unknown Status"
	}
	return &HTTPError{StatusCode: code, StatusText: text}
}
