package transport

import (
	"fmt"
	"strings"

	"github.com/CognitoIQ/go-clarity/nsmap"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

var exception = nsmap.MustResolve("exc:exception")

// An Error is returned for responses with a status of 400 or above.
// Message holds the text of the server's exc:exception document when
// one was sent, or the raw body otherwise.
type Error struct {
	Method     string
	URI        string
	StatusCode int
	Message    string
	Suggestion string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URI, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

// NotFound reports whether the server had no resource at the URI.
func (e *Error) NotFound() bool { return e.StatusCode == 404 }

func newError(method, uri string, status int, body []byte) *Error {
	e := &Error{Method: method, URI: uri, StatusCode: status}
	if root, err := xmltree.Parse(body); err == nil && root.Name == exception {
		e.Message, _ = root.ChildText("", "message")
		e.Suggestion, _ = root.ChildText("", "suggested-actions")
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	return e
}
