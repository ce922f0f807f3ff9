package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"DawnCall/storage/redis"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	return mr
}

func TestTryMarkMessageProcessing(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	first, err := TryMarkMessageProcessing(ctx, "msg-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !first {
		t.Fatal("first mark should succeed")
	}

	second, err := TryMarkMessageProcessing(ctx, "msg-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if second {
		t.Fatal("duplicate mark should fail")
	}

	// 失败回滚后允许重试
	if err := UnmarkMessageProcessing(ctx, "msg-1"); err != nil {
		t.Fatal(err)
	}
	third, err := TryMarkMessageProcessing(ctx, "msg-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !third {
		t.Fatal("mark after unmark should succeed")
	}
}

func TestTryMarkExecutionClaimed(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	due := time.Date(2026, 4, 1, 7, 0, 0, 0, time.UTC)

	ok, err := TryMarkExecutionClaimed(ctx, 42, due)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("first claim should succeed")
	}

	ok, err = TryMarkExecutionClaimed(ctx, 42, due)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("second claim for same instant should fail")
	}

	// 不同触发时刻互不影响
	ok, err = TryMarkExecutionClaimed(ctx, 42, due.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("claim for next day should succeed")
	}
}

func TestVerificationCode(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	if err := SetVerificationCode(ctx, "hash-1", "123456"); err != nil {
		t.Fatal(err)
	}

	code, err := GetVerificationCode(ctx, "hash-1")
	if err != nil {
		t.Fatal(err)
	}
	if code != "123456" {
		t.Errorf("code = %q", code)
	}

	if err := DeleteVerificationCode(ctx, "hash-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := GetVerificationCode(ctx, "hash-1"); err == nil {
		t.Error("expected miss after delete")
	}
}

func TestIncrVerificationCount(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := IncrVerificationCount(ctx, "hash-2")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("count = %d, want %d", got, want)
		}
	}

	got, err := GetVerificationCount(ctx, "hash-2")
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("GetVerificationCount = %d, want 3", got)
	}

	// 未发送过的号码计数为 0
	got, err = GetVerificationCount(ctx, "hash-none")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("GetVerificationCount = %d, want 0", got)
	}
}

func TestTryLock(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	token, ok, err := TryLock(ctx, "dispatch", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("first lock should succeed")
	}

	_, ok, err = TryLock(ctx, "dispatch", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("second lock should fail while held")
	}

	if err := Unlock(ctx, "dispatch", token); err != nil {
		t.Fatal(err)
	}

	_, ok, err = TryLock(ctx, "dispatch", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("lock should succeed after unlock")
	}
}

func TestUnlockWrongToken(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	token, ok, err := TryLock(ctx, "dispatch", time.Minute)
	if err != nil || !ok {
		t.Fatalf("lock failed: ok=%v err=%v", ok, err)
	}

	// 模拟锁过期后被另一个实例拿走
	mr.FastForward(2 * time.Minute)
	otherToken, ok, err := TryLock(ctx, "dispatch", time.Minute)
	if err != nil || !ok {
		t.Fatalf("relock after expiry failed: ok=%v err=%v", ok, err)
	}

	// 旧持有者带着过期令牌释放，不能删掉新实例的锁
	if err := Unlock(ctx, "dispatch", token); err != nil {
		t.Fatal(err)
	}
	_, ok, err = TryLock(ctx, "dispatch", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("stale unlock must not release the new holder's lock")
	}

	// 当前持有者正常释放
	if err := Unlock(ctx, "dispatch", otherToken); err != nil {
		t.Fatal(err)
	}
	_, ok, err = TryLock(ctx, "dispatch", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("lock should succeed after the holder releases it")
	}
}
