package authinfra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/MicahParks/jwkset"
	"github.com/redis/go-redis/v9"
)

const defaultJWKSKey = "staffhub:auth:jwks"

// redisKV is the slice of redis.Cmdable the snapshot needs.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisJWKSStorage is an in-memory jwkset.Storage that snapshots the
// public key set to Redis on every write, so a restarted instance can
// verify tokens before its first successful fetch.
type RedisJWKSStorage struct {
	jwkset.Storage
	rdb redisKV
	key string
	ttl time.Duration
}

func NewRedisJWKSStorage(rdb redisKV, key string, ttl time.Duration) *RedisJWKSStorage {
	if key == "" {
		key = defaultJWKSKey
	}
	return &RedisJWKSStorage{
		Storage: jwkset.NewMemoryStorage(),
		rdb:     rdb,
		key:     key,
		ttl:     ttl,
	}
}

// KeyWrite stores jwk in memory and refreshes the snapshot. A Redis
// failure only costs the snapshot, never the write.
func (s *RedisJWKSStorage) KeyWrite(ctx context.Context, jwk jwkset.JWK) error {
	if err := s.Storage.KeyWrite(ctx, jwk); err != nil {
		return err
	}

	doc, err := s.Storage.JSONPublic(ctx)
	if err != nil {
		logx.WithError(err).Warn("jwks snapshot encode failed")
		return nil
	}
	if err := s.rdb.Set(ctx, s.key, []byte(doc), s.ttl).Err(); err != nil {
		logx.WithError(err).Warn("jwks snapshot write failed")
	}
	return nil
}

// Restore loads the last snapshot into memory and reports how many keys
// it held. A missing snapshot is not an error; undecodable keys are
// skipped.
func (s *RedisJWKSStorage) Restore(ctx context.Context) (int, error) {
	doc, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var set jwkset.JWKSMarshal
	if err := json.Unmarshal(doc, &set); err != nil {
		return 0, err
	}

	restored := 0
	for _, m := range set.Keys {
		jwk, err := jwkset.NewJWKFromMarshal(m, jwkset.JWKMarshalOptions{}, jwkset.JWKValidateOptions{})
		if err != nil {
			logx.WithError(err).WithField("kid", m.KID).Warn("jwks snapshot key skipped")
			continue
		}
		if err := s.Storage.KeyWrite(ctx, jwk); err != nil {
			return restored, err
		}
		restored++
	}
	return restored, nil
}
