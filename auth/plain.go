package auth

import (
	"bytes"
	"fmt"
)

// PlainMechanism implements SASL PLAIN authentication
type PlainMechanism struct {
	Username string
	Password string
}

// Name returns the mechanism name
func (p *PlainMechanism) Name() string {
	return "PLAIN"
}

// Response encodes the credentials as \0username\0password, leaving the
// authorization identity empty.
func (p *PlainMechanism) Response() []byte {
	out := make([]byte, 0, len(p.Username)+len(p.Password)+2)
	out = append(out, 0)
	out = append(out, p.Username...)
	out = append(out, 0)
	return append(out, p.Password...)
}

// ParsePlainResponse splits a PLAIN response into username and password.
// The response is a sequence of three strings separated by NUL (0x00) bytes:
// [authorization-identity] NUL [authentication-identity] NUL [password]
func ParsePlainResponse(response []byte) (username, password string, err error) {
	if len(response) == 0 {
		return "", "", fmt.Errorf("empty authentication response")
	}

	parts := bytes.Split(response, []byte{0})
	if len(parts) != 3 {
		return "", "", fmt.Errorf("invalid PLAIN response format: expected 3 parts, got %d", len(parts))
	}

	username = string(parts[1])
	password = string(parts[2])
	if username == "" {
		return "", "", fmt.Errorf("username cannot be empty")
	}
	return username, password, nil
}
