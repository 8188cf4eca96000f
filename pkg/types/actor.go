package types

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/pkg/enums"
)

// Actor is a tagged reference to the admin or rep who performed an action.
type Actor struct {
	Kind enums.ActorKind `json:"kind" validate:"required,oneof=admin rep"`
	ID   uuid.UUID       `json:"id" validate:"required"`
}

func (a Actor) Validate() error {
	if !a.Kind.IsValid() {
		return fmt.Errorf("invalid actor kind %q", a.Kind)
	}
	if a.ID == uuid.Nil {
		return fmt.Errorf("actor id is required")
	}
	return nil
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.ID)
}

// ActorFromColumns rebuilds an optional actor from a kind/id column pair.
func ActorFromColumns(kind *enums.ActorKind, id *uuid.UUID) *Actor {
	if kind == nil || id == nil {
		return nil
	}
	return &Actor{Kind: *kind, ID: *id}
}

// Columns splits an optional actor into nullable kind/id columns.
func (a *Actor) Columns() (*enums.ActorKind, *uuid.UUID) {
	if a == nil {
		return nil, nil
	}
	kind := a.Kind
	id := a.ID
	return &kind, &id
}
