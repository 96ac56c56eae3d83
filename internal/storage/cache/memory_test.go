package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_Set_Get_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Set(ctx, "k1", "v1", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var v string
	if err := s.Get(ctx, "k1", &v); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "v1" {
		t.Errorf("Get: got %q", v)
	}
	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Get(ctx, "k1", &v); err == nil {
		t.Error("Get after Delete should error")
	}
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var v string
	if err := s.Get(ctx, "missing", &v); err == nil {
		t.Error("Get missing should error")
	}
}

func TestMemoryStore_Incr(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	n, err := s.Incr(ctx, "hits")
	if err != nil || n != 1 {
		t.Errorf("first Incr: n=%d err=%v", n, err)
	}
	n, err = s.Incr(ctx, "hits")
	if err != nil || n != 2 {
		t.Errorf("second Incr: n=%d err=%v", n, err)
	}
	if err := s.Delete(ctx, "hits"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	n, _ = s.Incr(ctx, "hits")
	if n != 1 {
		t.Errorf("Incr after Delete should restart at 1, got %d", n)
	}
}

func TestMemoryStore_Expire(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Set(ctx, "k", "v", 0)
	if err := s.Expire(ctx, "k", -time.Second); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	var v string
	if err := s.Get(ctx, "k", &v); err == nil {
		t.Error("Get after Expire in the past should error")
	}

	// 计数键同样受 Expire 约束
	_, _ = s.Incr(ctx, "hits")
	_, _ = s.Incr(ctx, "hits")
	if err := s.Expire(ctx, "hits", -time.Second); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	n, _ := s.Incr(ctx, "hits")
	if n != 1 {
		t.Errorf("expired counter should restart at 1, got %d", n)
	}
}

func TestMemoryStore_Exists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ok, err := s.Exists(ctx, "k")
	if err != nil || ok {
		t.Errorf("Exists missing: ok=%v err=%v", ok, err)
	}
	_ = s.Set(ctx, "k", "v", 0)
	ok, err = s.Exists(ctx, "k")
	if err != nil || !ok {
		t.Errorf("Exists present: ok=%v err=%v", ok, err)
	}
}

// Expiration 由实现用纳秒时间戳判断；respcache 层另有按 expires_at 的惰性过期测试
