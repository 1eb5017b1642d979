package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/notes-app/backend/internal/models"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// UserLookup resolves a user by identifier.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// CachedUsers is a read-through Redis cache in front of a UserLookup.
// Users are never updated or deleted, so a cached profile cannot go stale;
// the TTL only bounds memory. Cache failures fall back to the source.
type CachedUsers struct {
	next UserLookup
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedUsers(next UserLookup, rdb *redis.Client, ttl time.Duration) *CachedUsers {
	return &CachedUsers{next: next, rdb: rdb, ttl: ttl}
}

// cachedUser omits the password hash; identity resolution never needs it.
type cachedUser struct {
	ID        string    `json:"_id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedOn time.Time `json:"createdOn"`
}

func userCacheKey(id string) string { return "user:" + id }

func (c *CachedUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	raw, err := c.rdb.Get(ctx, userCacheKey(id)).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if json.Unmarshal(raw, &cu) == nil {
			return &models.User{ID: cu.ID, FullName: cu.FullName, Email: cu.Email, CreatedOn: cu.CreatedOn}, nil
		}
	case errors.Is(err, redis.Nil):
	case ctx.Err() != nil:
		return nil, ctx.Err()
	}

	u, err := c.next.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedUser{ID: u.ID, FullName: u.FullName, Email: u.Email, CreatedOn: u.CreatedOn})
	if err == nil {
		// Best effort; a failed write only costs a later miss.
		_ = c.rdb.Set(ctx, userCacheKey(id), data, c.ttl).Err()
	}
	return u, nil
}
