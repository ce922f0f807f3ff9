package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"DawnCall/storage/redis"
)

// 基于 SETNX 的分布式锁，多个 dispatcher 实例间互斥。
// 值存持有者令牌，释放时校验，防止超过 TTL 的实例删掉别人的锁
const (
	lockPrefix = "lock"
)

var unlockScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// TryLock 尝试加锁，成功时返回持有者令牌，释放时原样传回
func TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	fullkey := redis.Key(lockPrefix, key)
	token := uuid.NewString()

	ok, err := redis.Client().SetNX(ctx, fullkey, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// Unlock 校验令牌后释放锁，锁已易主时不做任何事
func Unlock(ctx context.Context, key, token string) error {
	fullkey := redis.Key(lockPrefix, key)

	return unlockScript.Run(ctx, redis.Client(), []string{fullkey}, token).Err()
}
