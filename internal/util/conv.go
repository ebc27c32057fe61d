package util

import (
	"strconv"
)

// ParseID 路径参数转为正整数 ID
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, Validation("invalid id: " + s)
	}
	return uint(id), nil
}
