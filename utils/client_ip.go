package utils

import (
	"net/http"
	"strings"
)

// UnknownIP 所有来源都拿不到地址时的取值
const UnknownIP = "unknown"

// 按优先级排列的代理头，X-Forwarded-For 单独处理取第一跳
var clientIPHeaders = []string{
	"X-Real-IP",
	"CF-Connecting-IP",
	"X-Client-IP",
	"X-Forwarded",
	"X-AppEngine-User-IP",
}

// ClientIP 从代理头中提取客户端 IP，用于记录会话与验证令牌的来源。
// 只做记录用途，不用于鉴权。
func ClientIP(h http.Header) string {
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" && first != UnknownIP {
			return first
		}
	}
	for _, name := range clientIPHeaders {
		if v := strings.TrimSpace(h.Get(name)); v != "" && v != UnknownIP {
			return v
		}
	}
	return UnknownIP
}

// IsMobileUserAgent 粗略判断是否来自移动设备
func IsMobileUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, marker := range []string{"mobile", "android", "iphone", "ipad", "micromessenger"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
