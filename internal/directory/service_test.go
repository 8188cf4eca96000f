package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/dbtest"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

func newDirectory(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t, dbtest.Directory()...)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestResolveAdminAndRep(t *testing.T) {
	ctx := context.Background()
	svc, conn := newDirectory(t)

	admin := models.Admin{ID: uuid.New(), Name: "Dana", Email: "dana@betteredibles.com"}
	rep := models.Rep{ID: uuid.New(), Name: "Sam", Email: "sam@betteredibles.com", Active: true}
	require.NoError(t, conn.Create(&admin).Error)
	require.NoError(t, conn.Create(&rep).Error)

	ref, err := svc.Resolve(ctx, types.Actor{Kind: enums.ActorAdmin, ID: admin.ID})
	require.NoError(t, err)
	require.True(t, ref.Found)
	require.Equal(t, "Dana", ref.Name)

	ref, err = svc.Resolve(ctx, types.Actor{Kind: enums.ActorRep, ID: rep.ID})
	require.NoError(t, err)
	require.True(t, ref.Found)
	require.Equal(t, "sam@betteredibles.com", ref.Email)
}

func TestResolveKeepsRawReferenceWhenMissing(t *testing.T) {
	svc, _ := newDirectory(t)
	id := uuid.New()

	ref, err := svc.Resolve(context.Background(), types.Actor{Kind: enums.ActorRep, ID: id})
	require.NoError(t, err)
	require.False(t, ref.Found)
	require.Equal(t, id, ref.ID)
	require.Equal(t, enums.ActorRep, ref.Kind)
}

func TestResolveRejectsInvalidActor(t *testing.T) {
	svc, _ := newDirectory(t)
	_, err := svc.Resolve(context.Background(), types.Actor{Kind: "vendor", ID: uuid.New()})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestStoreLookupAndNames(t *testing.T) {
	ctx := context.Background()
	svc, conn := newDirectory(t)

	store := models.Store{ID: uuid.New(), Name: "Green Leaf"}
	require.NoError(t, conn.Create(&store).Error)

	found, err := svc.Store(ctx, store.ID)
	require.NoError(t, err)
	require.Equal(t, "Green Leaf", found.Name)

	_, err = svc.Store(ctx, uuid.New())
	require.ErrorIs(t, err, ErrStoreNotFound)

	names, err := svc.StoreNames(ctx, []uuid.UUID{store.ID, store.ID, uuid.Nil, uuid.New()})
	require.NoError(t, err)
	require.Equal(t, map[uuid.UUID]string{store.ID: "Green Leaf"}, names)

	_, err = svc.Rep(ctx, uuid.New())
	require.ErrorIs(t, err, ErrRepNotFound)
}
