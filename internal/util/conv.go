package util

import (
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseID parses a positive path id.
func ParseID(s string) (uint, error) {
	id := MustParseUint(s)
	if id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func UintPtr(v uint) *uint {
	return &v
}

func StringPtr(s string) *string {
	return &s
}
