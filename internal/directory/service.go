package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

var (
	ErrStoreNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	ErrRepNotFound   = pkgerrors.New(pkgerrors.CodeNotFound, "rep not found")
)

// ActorRef is an actor reference enriched with the display fields of the
// record it points at. Found is false when the record no longer exists; the
// raw kind and id are kept either way.
type ActorRef struct {
	Kind  enums.ActorKind `json:"kind"`
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name,omitempty"`
	Email string          `json:"email,omitempty"`
	Found bool            `json:"found"`
}

// Service resolves the people and stores the private label workflow refers to.
type Service interface {
	Store(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Rep(ctx context.Context, id uuid.UUID) (*models.Rep, error)
	Resolve(ctx context.Context, actor types.Actor) (ActorRef, error)
	StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	RepNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Store(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindStore(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) Rep(ctx context.Context, id uuid.UUID) (*models.Rep, error) {
	rep, err := s.repo.FindRep(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rep")
	}
	return rep, nil
}

// Resolve dispatches on the actor tag. A missing record is not an error.
func (s *service) Resolve(ctx context.Context, actor types.Actor) (ActorRef, error) {
	ref := ActorRef{Kind: actor.Kind, ID: actor.ID}
	if err := actor.Validate(); err != nil {
		return ref, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}

	var (
		name, email string
		err         error
	)
	switch actor.Kind {
	case enums.ActorAdmin:
		var admin *models.Admin
		if admin, err = s.repo.FindAdmin(ctx, actor.ID); err == nil {
			name, email = admin.Name, admin.Email
		}
	case enums.ActorRep:
		var rep *models.Rep
		if rep, err = s.repo.FindRep(ctx, actor.ID); err == nil {
			name, email = rep.Name, rep.Email
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ref, nil
		}
		return ref, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve actor")
	}
	ref.Name, ref.Email, ref.Found = name, email, true
	return ref, nil
}

func (s *service) StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names, err := s.repo.StoreNames(ctx, dedupe(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store names")
	}
	return names, nil
}

func (s *service) RepNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names, err := s.repo.RepNames(ctx, dedupe(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rep names")
	}
	return names, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
