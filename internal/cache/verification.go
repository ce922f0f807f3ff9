package cache

import (
	"context"
	"time"

	ri "github.com/redis/go-redis/v9"

	"DawnCall/config"
	"DawnCall/storage/redis"
)

// 验证码存储：dwc:verification:{phoneHash}
// TTL: 默认 600 秒

// 每日发送计数：dwc:verification:count:{phoneHash}:{date}
// 过期时间为次日零点
const (
	verificationPrefix = "verification"
)

// SetVerificationCode 存储验证码
func SetVerificationCode(ctx context.Context, phoneHash, code string) error {
	key := redis.Key(verificationPrefix, phoneHash)
	ttl := time.Duration(config.Cfg.VerificationExpireSeconds) * time.Second

	return redis.Client().Set(ctx, key, code, ttl).Err()
}

func GetVerificationCode(ctx context.Context, phoneHash string) (string, error) {
	key := redis.Key(verificationPrefix, phoneHash)
	return redis.Client().Get(ctx, key).Result()
}

func DeleteVerificationCode(ctx context.Context, phoneHash string) error {
	key := redis.Key(verificationPrefix, phoneHash)
	return redis.Client().Del(ctx, key).Err()
}

// IncrVerificationCount 增加今日发送计数，返回当前次数
func IncrVerificationCount(ctx context.Context, phoneHash string) (int, error) {
	date := time.Now().Format("2006-01-02")
	key := redis.Key(verificationPrefix, "count", phoneHash, date)

	count, err := redis.Client().Incr(ctx, key).Result()

	if err != nil {
		return 0, err // 具体在业务层处理报错
	}

	if count == 1 { // 今天第一次发送，过期时间设到次日零点
		now := time.Now()
		tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		ttl := tomorrow.Sub(now)
		redis.Client().Expire(ctx, key, ttl)
	}

	return int(count), nil
}

func GetVerificationCount(ctx context.Context, phoneHash string) (int, error) {
	date := time.Now().Format("2006-01-02")
	key := redis.Key(verificationPrefix, "count", phoneHash, date)

	count, err := redis.Client().Get(ctx, key).Int()
	if err == ri.Nil {
		return 0, nil
	}

	return count, err
}
