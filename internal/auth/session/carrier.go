package session

// Carrier is the per-request session handle. The transport layer binds the
// inbound token (typically from a cookie) before calling a service, and reads
// the token back afterwards to update the client. Services never reach into
// an ambient request context for session state.
type Carrier struct {
	token string
}

func NewCarrier(token string) *Carrier {
	return &Carrier{token: token}
}

// Token returns the currently bound token, or "" when the request carries
// no session.
func (c *Carrier) Token() string {
	return c.token
}

func (c *Carrier) Bind(token string) {
	c.token = token
}

func (c *Carrier) Clear() {
	c.token = ""
}
