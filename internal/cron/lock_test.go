package cron

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) key(parts ...string) string {
	return strings.Join(parts, ":")
}

func (f *fakeLockStore) SetNX(ctx context.Context, value string, ttl time.Duration, parts ...string) (bool, error) {
	k := f.key(parts...)
	if _, exists := f.values[k]; exists {
		return false, nil
	}
	f.values[k] = value
	return true, nil
}

func (f *fakeLockStore) Get(ctx context.Context, parts ...string) (string, bool, error) {
	v, ok := f.values[f.key(parts...)]
	return v, ok, nil
}

func (f *fakeLockStore) Del(ctx context.Context, parts ...string) error {
	delete(f.values, f.key(parts...))
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewRedisLock(store, "worker", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got ok=%v err=%v", ok, err)
	}

	other, err := NewRedisLock(store, "worker", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	ok, err = other.Acquire(context.Background())
	if err != nil || ok {
		t.Fatalf("expected second acquire to fail, got ok=%v err=%v", ok, err)
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release: %v", err)
	}
	ok, err = other.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected acquire after release to succeed, got ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	store := newFakeLockStore()
	holder, _ := NewRedisLock(store, "worker", time.Minute)
	stale, _ := NewRedisLock(store, "worker", time.Minute)

	if ok, _ := holder.Acquire(context.Background()); !ok {
		t.Fatal("holder acquire failed")
	}
	// A replica that never acquired must not delete the holder's lock.
	if err := stale.Release(context.Background()); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if _, found, _ := store.Get(context.Background(), "cron", "lock", "worker"); !found {
		t.Fatal("lock was deleted by a non-owner")
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "worker", time.Minute); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewRedisLock(newFakeLockStore(), "", time.Minute); err == nil {
		t.Fatal("expected error for empty name")
	}
}
