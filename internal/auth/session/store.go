package session

//go:generate mockgen -destination=../../mocks/mock_session_store.go -package=mocks github.com/ivasibi/ascent/internal/auth/session Store

import (
	"context"
	"time"

	"github.com/ivasibi/ascent/internal/auth/domain"
)

// Attributes is the full state of one authenticated session. It is written
// as a whole when the session is created and never partially updated.
type Attributes struct {
	Logged   bool        `json:"logged"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Store is the durable token -> attributes mapping backing sessions.
// Implementations must allocate an unguessable token on New and treat
// Delete of an unknown token as a no-op.
type Store interface {
	New(ctx context.Context, ttl time.Duration, attrs Attributes) (string, error)
	Get(ctx context.Context, token string) (Attributes, bool, error)
	Delete(ctx context.Context, token string) error
}
