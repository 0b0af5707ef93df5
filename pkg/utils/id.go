package utils

import "github.com/google/uuid"

func NewID() string { return uuid.NewString() }

// IsID 校验是否为合法 id（UUID 字符串）
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
