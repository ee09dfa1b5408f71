package xerrors

import "errors"

// Common reusable application errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUpstream      = errors.New("upstream request failed")
	ErrViewClosed    = errors.New("view closed")
	ErrUnknownSource = errors.New("unknown location source")
)

// ServerMessenger is implemented by errors that carry a message supplied by a remote server.
type ServerMessenger interface {
	ServerMessage() string
}

// UserMessage picks the text shown to a user for a failed request: a
// server-supplied message anywhere in the chain wins over the error text itself.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var sm ServerMessenger
	if errors.As(err, &sm) {
		if msg := sm.ServerMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
