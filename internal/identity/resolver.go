package identity

import "context"

// Principal is the resolved caller: a stable user id plus the display name
// shown on claimed tasks.
type Principal struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Resolver turns a request credential into a Principal. No credential
// issuance happens here; tokens come from an external identity service.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (Principal, error)
}
