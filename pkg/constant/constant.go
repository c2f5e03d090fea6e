package constant

const (
	// SessionCookieName carries the opaque session token between requests.
	SessionCookieName = "ascent_session"

	// BcryptCost is the work factor used when hashing a new password.
	BcryptCost = 12
)
