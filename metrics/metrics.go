// Package metrics 提供认证服务的 Prometheus 指标。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 登录结果标签
const (
	ResultSuccess = "success"
	ResultDenied  = "denied"
	ResultError   = "error"
)

// Recorder 服务层使用的指标接口，测试中可以传 Nop
type Recorder interface {
	RecordSignIn(provider, strategy, result string)
	RecordSessionCache(hit bool)
	RecordMagicLinkSent()
	RecordRateLimited(route string)
}

// Collector Recorder 的 Prometheus 实现
type Collector struct {
	signIn       *prometheus.CounterVec
	sessionCache *prometheus.CounterVec
	magicLink    prometheus.Counter
	rateLimited  *prometheus.CounterVec
}

// NewCollector 创建 Collector 并注册到 reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keenmind_auth_sign_in_total",
			Help: "登录尝试次数，按提供方、会话策略和结果区分",
		}, []string{"provider", "strategy", "result"}),
		sessionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keenmind_auth_session_cache_total",
			Help: "会话缓存命中/未命中次数",
		}, []string{"result"}),
		magicLink: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keenmind_auth_magic_link_sent_total",
			Help: "已发送的邮件登录链接数",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keenmind_auth_rate_limited_total",
			Help: "被限流拒绝的请求数",
		}, []string{"route"}),
	}
	reg.MustRegister(c.signIn, c.sessionCache, c.magicLink, c.rateLimited)
	return c
}

func (c *Collector) RecordSignIn(provider, strategy, result string) {
	c.signIn.WithLabelValues(provider, strategy, result).Inc()
}

func (c *Collector) RecordSessionCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.sessionCache.WithLabelValues(result).Inc()
}

func (c *Collector) RecordMagicLinkSent() {
	c.magicLink.Inc()
}

func (c *Collector) RecordRateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

// Nop 不记录任何指标
type Nop struct{}

func (Nop) RecordSignIn(string, string, string) {}
func (Nop) RecordSessionCache(bool)             {}
func (Nop) RecordMagicLinkSent()                {}
func (Nop) RecordRateLimited(string)            {}

// Handler /metrics 的处理器
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
