package assets

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key layout: one hash of bodies and one of content types per
	// version, plus a set of stored versions.
	redisKeyPrefix   = "assets:"
	redisVersionsKey = redisKeyPrefix + "versions"
)

func redisBodyKey(version string) string { return redisKeyPrefix + version + ":body" }
func redisTypeKey(version string) string { return redisKeyPrefix + version + ":type" }

// RedisStore is a Redis-backed Store shared by every instance of the service.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed asset store. The client lifecycle
// is managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// PutVersion writes the version in a MULTI/EXEC transaction so readers never
// observe a partially populated version.
func (s *RedisStore) PutVersion(ctx context.Context, version string, assets []Asset) error {
	bodies := make(map[string]any, len(assets))
	types := make(map[string]any, len(assets))
	for _, a := range assets {
		bodies[a.Path] = a.Body
		types[a.Path] = a.ContentType
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisBodyKey(version), redisTypeKey(version))
		if len(assets) > 0 {
			pipe.HSet(ctx, redisBodyKey(version), bodies)
			pipe.HSet(ctx, redisTypeKey(version), types)
		}
		pipe.SAdd(ctx, redisVersionsKey, version)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store asset version %s: %w", version, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, version, path string) (Asset, bool, error) {
	pipe := s.client.Pipeline()
	body := pipe.HGet(ctx, redisBodyKey(version), path)
	contentType := pipe.HGet(ctx, redisTypeKey(version), path)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Asset{}, false, fmt.Errorf("get asset %s@%s: %w", path, version, err)
	}

	data, err := body.Bytes()
	if errors.Is(err, redis.Nil) {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, fmt.Errorf("get asset %s@%s: %w", path, version, err)
	}
	return Asset{Path: path, ContentType: contentType.Val(), Body: data}, true, nil
}

func (s *RedisStore) Versions(ctx context.Context) ([]string, error) {
	versions, err := s.client.SMembers(ctx, redisVersionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list asset versions: %w", err)
	}
	slices.Sort(versions)
	return versions, nil
}

func (s *RedisStore) DeleteVersion(ctx context.Context, version string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisBodyKey(version), redisTypeKey(version))
		pipe.SRem(ctx, redisVersionsKey, version)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete asset version %s: %w", version, err)
	}
	return nil
}
