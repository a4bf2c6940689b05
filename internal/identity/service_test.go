package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/present"
)

func TestLoginStoresLocalPart(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, 0, zap.NewNop())

	res, err := svc.Login(context.Background(), "1", "  maria.silva@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "maria.silva", res.UserName)
	assert.Equal(t, "Bem-vindo(a), maria.silva!", res.Message)

	v, ok, _ := store.Get(context.Background(), "1")
	assert.True(t, ok)
	assert.Equal(t, "maria.silva", v)
}

func TestLoginWithoutAtUsesWholeValue(t *testing.T) {
	svc := NewService(NewMemoryStore(), 0, zap.NewNop())

	res, err := svc.Login(context.Background(), "1", "maria", "x")
	require.NoError(t, err)
	assert.Equal(t, "maria", res.UserName)
}

func TestLoginRequiresBothFields(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, 0, zap.NewNop())

	for _, tc := range []struct{ email, password string }{
		{"", "x"},
		{"a@b.c", ""},
		{"   ", "x"},
		{"a@b.c", "  "},
	} {
		_, err := svc.Login(context.Background(), "1", tc.email, tc.password)
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, present.LoginMissingField, ve.Reason)
	}

	_, ok, _ := store.Get(context.Background(), "1")
	assert.False(t, ok)
}

func TestLoginDelayHonoursContext(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Minute, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Login(ctx, "1", "a@b.c", "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type brokenStore struct{ MemoryStore }

func (*brokenStore) Set(context.Context, string, string) error { return errors.New("down") }
func (*brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	svc := NewService(&brokenStore{}, 0, zap.NewNop())

	_, err := svc.Login(context.Background(), "1", "a@b.c", "x")
	assert.ErrorContains(t, err, "store display name")

	_, err = svc.Header(context.Background(), "1", ScreenCatalog)
	assert.ErrorContains(t, err, "read display name")
}

func TestHeader(t *testing.T) {
	svc := NewService(NewMemoryStore(), 0, zap.NewNop())
	ctx := context.Background()

	v, err := svc.Header(ctx, "1", ScreenCatalog)
	require.NoError(t, err)
	assert.False(t, v.LoggedIn)
	assert.Equal(t, present.LoginLabel, v.Login)
	assert.False(t, v.Back)

	_, err = svc.Login(ctx, "1", "joana@example.com", "x")
	require.NoError(t, err)

	v, err = svc.Header(ctx, "1", ScreenDetails)
	require.NoError(t, err)
	assert.True(t, v.LoggedIn)
	assert.Equal(t, "joana", v.UserName)
	assert.Empty(t, v.Login)
	assert.True(t, v.Back)

	require.NoError(t, svc.Logout(ctx, "1"))
	v, err = svc.Header(ctx, "1", ScreenCart)
	require.NoError(t, err)
	assert.False(t, v.LoggedIn)
	assert.True(t, v.Back)
}
