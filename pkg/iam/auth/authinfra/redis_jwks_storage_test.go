package authinfra_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/iam/auth/authinfra"
	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	doc    string
	has    bool
	ttl    time.Duration
	sets   int
	getErr error
	setErr error
}

func (f *fakeRedis) Get(_ context.Context, _ string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if !f.has {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(f.doc, nil)
}

func (f *fakeRedis) Set(_ context.Context, _ string, value any, ttl time.Duration) *redis.StatusCmd {
	f.sets++
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.doc = string(value.([]byte))
	f.has = true
	f.ttl = ttl
	return redis.NewStatusResult("OK", nil)
}

func snapshotOf(t *testing.T, keys ...map[string]string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"keys": keys})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	store := authinfra.NewRedisJWKSStorage(&fakeRedis{}, "", time.Hour)

	n, err := store.Restore(context.Background())
	if err != nil || n != 0 {
		t.Errorf("Restore() = %d, %v, want 0, nil", n, err)
	}
}

func TestRestoreLoadsSnapshotKeys(t *testing.T) {
	priv, _ := rsa.GenerateKey(rand.Reader, 2048)
	rdb := &fakeRedis{has: true, doc: snapshotOf(t, jwk("k1", &priv.PublicKey))}
	store := authinfra.NewRedisJWKSStorage(rdb, "", time.Hour)

	n, err := store.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Restore() = %d keys, want 1", n)
	}
	if _, err := store.KeyRead(context.Background(), "k1"); err != nil {
		t.Errorf("KeyRead(k1) error = %v", err)
	}
	if rdb.sets != 0 {
		t.Errorf("Restore wrote the snapshot back %d times, want 0", rdb.sets)
	}
}

func TestRestoreSurfacesRedisErrors(t *testing.T) {
	store := authinfra.NewRedisJWKSStorage(&fakeRedis{getErr: errors.New("conn refused")}, "", time.Hour)

	if _, err := store.Restore(context.Background()); err == nil {
		t.Error("Restore() error = nil, want redis error")
	}
}

func TestKeyWriteSnapshotsPublicSet(t *testing.T) {
	priv, _ := rsa.GenerateKey(rand.Reader, 2048)
	src := authinfra.NewRedisJWKSStorage(&fakeRedis{has: true, doc: snapshotOf(t, jwk("k1", &priv.PublicKey))}, "", time.Hour)
	if _, err := src.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	key, err := src.KeyRead(context.Background(), "k1")
	if err != nil {
		t.Fatalf("KeyRead() error = %v", err)
	}

	rdb := &fakeRedis{}
	store := authinfra.NewRedisJWKSStorage(rdb, "", 6*time.Hour)
	if err := store.KeyWrite(context.Background(), key); err != nil {
		t.Fatalf("KeyWrite() error = %v", err)
	}

	if rdb.sets != 1 {
		t.Errorf("snapshot written %d times, want 1", rdb.sets)
	}
	if !strings.Contains(rdb.doc, `"kid":"k1"`) {
		t.Errorf("snapshot = %s, want k1", rdb.doc)
	}
	if rdb.ttl != 6*time.Hour {
		t.Errorf("snapshot ttl = %v, want 6h", rdb.ttl)
	}
}

func TestKeyWriteSurvivesRedisFailure(t *testing.T) {
	priv, _ := rsa.GenerateKey(rand.Reader, 2048)
	src := authinfra.NewRedisJWKSStorage(&fakeRedis{has: true, doc: snapshotOf(t, jwk("k1", &priv.PublicKey))}, "", time.Hour)
	if _, err := src.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	key, _ := src.KeyRead(context.Background(), "k1")

	store := authinfra.NewRedisJWKSStorage(&fakeRedis{setErr: errors.New("readonly")}, "", time.Hour)
	if err := store.KeyWrite(context.Background(), key); err != nil {
		t.Fatalf("KeyWrite() error = %v, want nil", err)
	}
	if _, err := store.KeyRead(context.Background(), "k1"); err != nil {
		t.Errorf("KeyRead(k1) error = %v, want key kept in memory", err)
	}
}
