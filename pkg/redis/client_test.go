package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type stubCmdable struct {
	store map[string]string
}

func newStubCmdable() *stubCmdable {
	return &stubCmdable{store: map[string]string{}}
}

func (s *stubCmdable) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (s *stubCmdable) Get(ctx context.Context, key string) *goredis.StringCmd {
	cmd := goredis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(goredis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubCmdable) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *goredis.StatusCmd {
	s.store[key] = value.(string)
	cmd := goredis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubCmdable) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *goredis.BoolCmd {
	cmd := goredis.NewBoolCmd(ctx)
	if _, exists := s.store[key]; exists {
		cmd.SetVal(false)
		return cmd
	}
	s.store[key] = value.(string)
	cmd.SetVal(true)
	return cmd
}

func (s *stubCmdable) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	cmd := goredis.NewIntCmd(ctx)
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd.SetVal(removed)
	return cmd
}

func (s *stubCmdable) Close() error { return nil }

func TestGetSetDel(t *testing.T) {
	client := &Client{rdb: newStubCmdable()}
	ctx := context.Background()

	_, found, err := client.Get(ctx, "session", "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected miss before set")
	}

	if err := client.Set(ctx, "value", time.Minute, "session", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found, err := client.Get(ctx, "session", "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || val != "value" {
		t.Fatalf("expected hit with %q, got found=%v val=%q", "value", found, val)
	}

	if err := client.Del(ctx, "session", "abc"); err != nil {
		t.Fatalf("del: %v", err)
	}
	_, found, _ = client.Get(ctx, "session", "abc")
	if found {
		t.Fatal("expected miss after delete")
	}
}

func TestIdempotencyKeyClaimsOnce(t *testing.T) {
	client := &Client{rdb: newStubCmdable()}
	ctx := context.Background()

	first, err := client.IdempotencyKey(ctx, "bulk-123", time.Hour)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !first {
		t.Fatal("expected first claim to succeed")
	}

	second, err := client.IdempotencyKey(ctx, "bulk-123", time.Hour)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if second {
		t.Fatal("expected second claim to be rejected")
	}
}

func TestBuildKeyNamespacing(t *testing.T) {
	key := buildKey("idempotency", "abc")
	want := "th:idempotency:abc"
	if key != want {
		t.Fatalf("expected %q, got %q", want, key)
	}
}
