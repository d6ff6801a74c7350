package auth

// ExternalMechanism implements SASL EXTERNAL. The broker authenticates the
// peer from the TLS client certificate; Identity is sent as the response.
type ExternalMechanism struct {
	Identity string
}

// Name returns the mechanism name
func (e *ExternalMechanism) Name() string {
	return "EXTERNAL"
}

// Response returns the identity bytes
func (e *ExternalMechanism) Response() []byte {
	return []byte(e.Identity)
}
