// Package testkit builds an injector backed by memstore and miniredis.
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/datastore/memstore"
	"github.com/Maheshwickramage/S3learnUID/internal/interfaces"
	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/caching"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

const JWTSecret = "test-secret"

type AllowAll struct{}

func (AllowAll) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	return nil
}

type Env struct {
	Injector *do.Injector
	Store    *memstore.Store
	Redis    *miniredis.Miniredis
	Client   redis.UniversalClient
}

func NewEnv(t testing.TB) *Env {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := memstore.New()
	cache, err := caching.NewCacheRedis(client, false)
	require.NoError(t, err)

	injector := do.New()
	do.ProvideNamedValue(injector, "envs", map[string]string{"JWT_SECRET": JWTSecret})
	do.ProvideValue[interfaces.Store](injector, store)
	do.ProvideValue[interfaces.Limiter](injector, AllowAll{})
	do.ProvideNamedValue[redis.UniversalClient](injector, "redis-db", client)
	do.ProvideNamedValue[redis.UniversalClient](injector, "redis-cache", client)
	do.ProvideValue[caching.Cache](injector, cache)
	do.ProvideValue[caching.ReadOnlyCache](injector, cache)
	do.ProvideValue(injector, redsync.New(goredis.NewPool(client)))
	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(JWTSecret)
	})
	services.Provide(injector)

	return &Env{injector, store, mr, client}
}

func (env *Env) SeedCreator(t testing.TB, id int64, username string) {
	t.Helper()

	require.NoError(t, env.Store.InsertCreator(context.Background(), &models.Creator{
		ID:          id,
		Username:    username,
		DisplayName: username,
		CreatedAt:   time.Now(),
	}))
}

// SeedComponent stores a component owned by ownerID. The owner's upload count
// goes up by one; points and downloads are untouched.
func (env *Env) SeedComponent(t testing.TB, ownerID int64) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	owner, err := env.Store.FindCreatorByID(ctx, ownerID)
	require.NoError(t, err)

	id := uuid.New()
	_, err = env.Store.RegisterUpload(ctx, &models.Component{
		ID:           id,
		CreatorID:    &ownerID,
		CreatorName:  owner.Username,
		Name:         "Seeded",
		Slug:         "seeded-" + id.String()[:8],
		Category:     "Cards",
		PreviewImage: "https://cdn.example.com/preview.png",
		ZipFile:      "https://cdn.example.com/seeded.zip",
		Version:      "1.0.0",
	}, 0)
	require.NoError(t, err)

	return id
}

func MustInvoke[T any](t testing.TB, env *Env) T {
	t.Helper()

	v, err := do.Invoke[T](env.Injector)
	require.NoError(t, err)
	return v
}

// UseStore replaces the store seen by services. Call it before the first
// MustInvoke of a service.
func (env *Env) UseStore(store interfaces.Store) {
	do.OverrideValue[interfaces.Store](env.Injector, store)
}

func (env *Env) UseLimiter(limiter interfaces.Limiter) {
	do.OverrideValue[interfaces.Limiter](env.Injector, limiter)
}
