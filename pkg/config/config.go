// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构体
type Config struct {
	API          APIConfig          `mapstructure:"api"`
	Model        ModelConfig        `mapstructure:"model"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Memory       MemoryConfig       `mapstructure:"memory"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval"`
	Log          LogConfig          `mapstructure:"log"`
	Monitoring   MonitoringConfig   `mapstructure:"monitoring"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Port    int    `mapstructure:"port"`
	Host    string `mapstructure:"host"`
	Timeout string `mapstructure:"timeout"`
}

// OrchestratorConfig 会话编排配置
type OrchestratorConfig struct {
	// MaxToolCalls 单轮允许的最大工具调用数，<=0 使用默认 6
	MaxToolCalls int `mapstructure:"max_tool_calls"`
	// DefaultLocale 请求未携带 locale 时使用
	DefaultLocale string `mapstructure:"default_locale"`
	// HistoryLimit 注入上下文的历史消息条数上限，<=0 使用默认 20
	HistoryLimit int `mapstructure:"history_limit"`
	// HistoryTTL 会话历史保留时长，如 "72h"
	HistoryTTL string `mapstructure:"history_ttl"`
}

// MemoryConfig 客户记忆配置
type MemoryConfig struct {
	// MaxFacts LOAD_MEMORY 注入上下文的事实条数上限，<=0 使用默认 50
	MaxFacts int `mapstructure:"max_facts"`
}

// RetrievalConfig 混合检索配置
type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
	// RewriteThreshold product 检索语义 top 分低于此值触发一次改写重查，<=0 使用默认 0.7
	RewriteThreshold float64 `mapstructure:"rewrite_threshold"`
	// SemanticWeight 混合打分中语义分权重，(0,1]，默认 0.7
	SemanticWeight float64 `mapstructure:"semantic_weight"`
}

// ModelConfig 模型配置
type ModelConfig struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// LLMConfig LLM 客户端配置
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // openai | qwen
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// EmbeddingConfig Embedding 客户端配置
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Dimension int    `mapstructure:"dimension"`
}

// RateLimitConfig LLM 限流配置
type RateLimitConfig struct {
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	TokensPerMinute   int     `mapstructure:"tokens_per_minute"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Vector   VectorConfig   `mapstructure:"vector"`
}

// PostgresConfig 关系库配置（事实、商品、订单、知识条目）
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	PoolSize int    `mapstructure:"pool_size"`
}

// RedisConfig Redis 配置（响应缓存、会话历史）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

// VectorConfig 向量存储配置（memory 为内置内存实现；集合由外部索引器写入）
type VectorConfig struct {
	Type                string `mapstructure:"type"`
	ProductCollection   string `mapstructure:"product_collection"`
	KnowledgeCollection string `mapstructure:"knowledge_collection"`
}

// CacheConfig 响应缓存配置
type CacheConfig struct {
	Type string `mapstructure:"type"` // memory | redis
	// TTL 默认缓存时长，如 "24h"
	TTL string `mapstructure:"ttl"`
	// Intents 允许缓存的意图白名单，空则默认 greeting/faq
	Intents []string `mapstructure:"intents"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Insecure       bool   `mapstructure:"insecure"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetEnvPrefix("CHAT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	// 替换环境变量
	replaceEnvVars(&config)

	return &config, nil
}

// replaceEnvVars 替换配置中 ${VAR} 形式的敏感项
func replaceEnvVars(config *Config) {
	config.Model.LLM.APIKey = expandEnv(config.Model.LLM.APIKey)
	config.Model.Embedding.APIKey = expandEnv(config.Model.Embedding.APIKey)
	config.Storage.Postgres.DSN = expandEnv(config.Storage.Postgres.DSN)
	config.Storage.Redis.Password = expandEnv(config.Storage.Redis.Password)
}

func expandEnv(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		if val := os.Getenv(strings.TrimSuffix(strings.TrimPrefix(v, "${"), "}")); val != "" {
			return val
		}
	}
	return v
}

// LoadAPIConfig 加载 API 配置（config.yaml，路径可被 CHAT_CONFIG 覆盖）
func LoadAPIConfig() (*Config, error) {
	path := "config.yaml"
	if env := os.Getenv("CHAT_CONFIG"); env != "" {
		path = env
	}
	return LoadConfig(path)
}
