package identity

import (
	"context"

	"github.com/taskboard/taskboard/internal/taskerr"
)

// DemoResolver maps fixed credentials to a built-in account table. Used for
// local development and demos where no identity service is running.
type DemoResolver struct {
	accounts map[string]Principal
}

func NewDemoResolver() *DemoResolver {
	return &DemoResolver{
		accounts: map[string]Principal{
			"demo-designer": {UserID: "u-designer", DisplayName: "Demo Designer"},
			"demo-reviewer": {UserID: "u-reviewer", DisplayName: "Demo Reviewer"},
			"demo-manager":  {UserID: "u-manager", DisplayName: "Demo Manager"},
		},
	}
}

func (r *DemoResolver) Resolve(ctx context.Context, credential string) (Principal, error) {
	p, ok := r.accounts[credential]
	if !ok {
		return Principal{}, taskerr.ErrInvalidCredentials
	}
	return p, nil
}
