package clientorders

import (
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

// TransitionPolicy decides whether an order may move between two statuses.
type TransitionPolicy interface {
	Allow(from, to enums.ClientOrderStatus) error
}

// PolicyFunc adapts a function to TransitionPolicy.
type PolicyFunc func(from, to enums.ClientOrderStatus) error

func (f PolicyFunc) Allow(from, to enums.ClientOrderStatus) error {
	return f(from, to)
}

// PermissivePolicy accepts any valid status from any status, including
// moving a shipped or cancelled order back into production.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(_, to enums.ClientOrderStatus) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
