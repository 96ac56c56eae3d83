package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		TurnDuration, TurnTotal,
		ToolDuration, ToolTotal,
		CacheLookupTotal,
		RetrievalRewriteTotal,
		LLMTokensTotal, RateLimitWaitSeconds,
	)
}

// TurnDuration 单轮会话处理耗时（秒）
var TurnDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "chat_turn_duration_seconds",
		Help:    "单轮会话处理耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"agent"},
)

// TurnTotal 会话轮次总数（按结果）
var TurnTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_turn_total",
		Help: "会话轮次总数（按结果）",
	},
	[]string{"status"}, // completed | degraded | failed | cached
)

// ToolDuration 工具调用耗时（秒）
var ToolDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "chat_tool_duration_seconds",
		Help:    "工具调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"tool"},
)

// ToolTotal 工具调用总数（按工具与结果）
var ToolTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_tool_total",
		Help: "工具调用总数",
	},
	[]string{"tool", "status"}, // ok | error | empty
)

// CacheLookupTotal 响应缓存查询数（hit / miss / expired / bypass）
var CacheLookupTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_response_cache_lookup_total",
		Help: "响应缓存查询数",
	},
	[]string{"result"},
)

// RetrievalRewriteTotal 检索自纠重写次数（按 kind）
var RetrievalRewriteTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_retrieval_rewrite_total",
		Help: "检索自纠重写次数",
	},
	[]string{"kind"},
)

// LLMTokensTotal LLM 调用 token 数
var LLMTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_llm_tokens_total",
		Help: "LLM 调用 token 总数",
	},
	[]string{"direction"}, // input | output
)

// RateLimitWaitSeconds 限流等待时间（超过 100ms 才记录）
var RateLimitWaitSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "chat_rate_limit_wait_seconds",
		Help:    "限流等待时间（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"kind", "target"},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
