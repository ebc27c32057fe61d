package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gorm.io/datatypes"
)

// normalizedAnswer 列表答案按字符串排序；none 表示未作答
type normalizedAnswer struct {
	none   bool
	isList bool
	scalar string
	list   []string
}

// IsCorrect 单选比较字符串，多选按集合（排序后逐项）比较，任一侧为空则判错
func IsCorrect(canonical, submitted interface{}) bool {
	a := normalizeAnswer(canonical)
	b := normalizeAnswer(submitted)
	if a.none || b.none {
		return false
	}
	if a.isList != b.isList {
		return false
	}
	if a.isList {
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if a.list[i] != b.list[i] {
				return false
			}
		}
		return true
	}
	return a.scalar == b.scalar
}

func normalizeAnswer(v interface{}) normalizedAnswer {
	switch val := v.(type) {
	case nil:
		return normalizedAnswer{none: true}
	case datatypes.JSON:
		return normalizeRaw([]byte(val))
	case json.RawMessage:
		return normalizeRaw([]byte(val))
	case []byte:
		return normalizeRaw(val)
	case []string:
		list := make([]string, len(val))
		copy(list, val)
		sort.Strings(list)
		return normalizedAnswer{isList: true, list: list}
	case []interface{}:
		list := make([]string, 0, len(val))
		for _, item := range val {
			list = append(list, coerceElement(item))
		}
		sort.Strings(list)
		return normalizedAnswer{isList: true, list: list}
	default:
		return normalizedAnswer{scalar: coerceScalar(val)}
	}
}

// normalizeRaw 解码 JSON 文本；空值、null 与非法 JSON 均视为未作答
func normalizeRaw(raw []byte) normalizedAnswer {
	if len(bytes.TrimSpace(raw)) == 0 {
		return normalizedAnswer{none: true}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded interface{}
	if err := dec.Decode(&decoded); err != nil {
		return normalizedAnswer{none: true}
	}
	return normalizeAnswer(decoded)
}

func coerceElement(v interface{}) string {
	if v == nil {
		return "null"
	}
	return coerceScalar(v)
}

func coerceScalar(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case map[string]interface{}:
		return "[object Object]"
	case []interface{}:
		parts := make([]byte, 0)
		for i, item := range val {
			if i > 0 {
				parts = append(parts, ',')
			}
			if item != nil {
				parts = append(parts, coerceScalar(item)...)
			}
		}
		return string(parts)
	default:
		return fmt.Sprint(val)
	}
}
