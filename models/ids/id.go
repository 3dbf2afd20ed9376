// Package ids 定义跨越序列化边界的大整数标识符。
//
// 数据库内部使用 uint64 主键/外键，JSON 中一律以十进制字符串出现，
// 因为 JSON 数字超过 2^53 会丢失精度。编解码只发生在类型化的 DTO/VO 上，
// 不对任意 map 做按字段名猜测的转换，因此 provider_account_id 这类由第三方
// 控制的字符串天然不会被误转。
package ids

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidID 表示字符串不是合法的十进制标识符
var ErrInvalidID = errors.New("invalid identifier")

// ID 内部大整数标识符
type ID uint64

// Encode 将标识符渲染为十进制字符串
func Encode(id ID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Decode 解析纯十进制数字字符串。空串、符号、空白、越界都视为非法。
func Decode(s string) (ID, error) {
	if s == "" {
		return 0, ErrInvalidID
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(n), nil
}

// MustDecode 用于常量与测试
func MustDecode(s string) ID {
	id, err := Decode(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string {
	return Encode(id)
}

// IsZero 未分配的标识符
func (id ID) IsZero() bool {
	return id == 0
}

// MarshalJSON 输出 JSON 字符串
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Encode(id) + `"`), nil
}

// UnmarshalJSON 接受数字字符串，也兼容旧客户端传来的 JSON 数字
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
	} else {
		s = string(data)
	}
	v, err := Decode(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}
