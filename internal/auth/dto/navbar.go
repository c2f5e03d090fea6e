package dto

// NavbarView is the session-derived state rendered into the navbar.
// Username and Role are only set while logged in; stale session values
// must never leak into a logged-out view.
type NavbarView struct {
	Logged   bool   `json:"logged"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}
