package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"DawnCall/config"
)

// hash 化手机号用于限流键和日志输出，加盐避免彩虹表攻击，盐 + ":" + phone

func HashPhone(phone string) string {
	key := config.Cfg.PhoneHashSalt

	sum := sha256.Sum256([]byte(key + ":" + phone))

	return hex.EncodeToString(sum[:])
}
