package labels

import (
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
)

// TransitionPolicy decides whether a label may move from one stage to another.
type TransitionPolicy interface {
	Allow(from, to enums.LabelStage) error
}

// PolicyFunc adapts a function to TransitionPolicy.
type PolicyFunc func(from, to enums.LabelStage) error

func (f PolicyFunc) Allow(from, to enums.LabelStage) error {
	return f(from, to)
}

// PermissivePolicy accepts any valid target stage from any stage. Operators
// routinely step labels back when a store or the OLCC asks for changes.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(_, to enums.LabelStage) error {
	if !to.IsValid() {
		return ErrInvalidStage
	}
	return nil
}

// ForwardOnlyPolicy rejects moves to an earlier pipeline stage.
type ForwardOnlyPolicy struct{}

func (ForwardOnlyPolicy) Allow(from, to enums.LabelStage) error {
	if !to.IsValid() {
		return ErrInvalidStage
	}
	if from.IsValid() && to.Index() < from.Index() {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "label cannot move back from %s to %s", from, to)
	}
	return nil
}
