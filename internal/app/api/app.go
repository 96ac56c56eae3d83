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

// Package api 装配 API 进程：模型客户端、检索引擎、工具、编排器与 HTTP 服务。
package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	"chat-platform/internal/api/http"
	"chat-platform/internal/api/http/middleware"
	"chat-platform/internal/app"
	"chat-platform/internal/memory"
	"chat-platform/internal/model/embedding"
	"chat-platform/internal/model/llm"
	"chat-platform/internal/orchestrator"
	"chat-platform/internal/prompt"
	"chat-platform/internal/respcache"
	"chat-platform/internal/retrieval"
	"chat-platform/internal/storage/vector"
	"chat-platform/internal/tool"
	"chat-platform/internal/tool/builtin"
	"chat-platform/internal/tool/registry"
	"chat-platform/pkg/config"
	"chat-platform/pkg/tracing"
	"chat-platform/pkg/utils"
)

// otelProviderShutdown 用于优雅关闭时关闭 OpenTelemetry provider
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App API 应用（装配编排器、工具层与 HTTP Router）
type App struct {
	bootstrap    *app.Bootstrap
	router       *http.Router
	hertz        *server.Hertz
	otelProvider otelProviderShutdown
}

// NewApp 创建 API 应用（由 cmd/api 调用）
func NewApp(bootstrap *app.Bootstrap) (*App, error) {
	cfg := bootstrap.Config
	logger := bootstrap.Logger

	llmClient, err := newLLMClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化 LLM 客户端failed: %w", err)
	}

	embedder, err := embedding.NewEmbedder(
		cfg.Model.Embedding.Provider,
		cfg.Model.Embedding.Model,
		cfg.Model.Embedding.APIKey,
		cfg.Model.Embedding.BaseURL,
		cfg.Model.Embedding.Dimension,
	)
	if err != nil {
		return nil, fmt.Errorf("初始化 Embedder failed: %w", err)
	}

	// memory 向量后端集合随进程创建；外部向量库由独立索引器维护集合
	if err := ensureCollections(context.Background(), bootstrap.VectorStore, cfg.Model.Embedding.Dimension); err != nil {
		logger.Warn("创建向量集合failed（首次写入时可能再创建）", "error", err)
	}

	engine := retrieval.NewEngine(
		bootstrap.VectorStore,
		embedder,
		bootstrap.Commerce,
		bootstrap.Commerce,
		retrieval.NewLLMRewriter(llmClient),
		retrieval.Options{
			TopK:             cfg.Retrieval.TopK,
			RewriteThreshold: cfg.Retrieval.RewriteThreshold,
			SemanticWeight:   cfg.Retrieval.SemanticWeight,
		},
	)

	bank := memory.NewBank(bootstrap.FactStore, memory.NewExtractor(llmClient, logger), cfg.Memory.MaxFacts, logger)

	reg := registry.New()
	builtin.RegisterBuiltin(reg, engine, bootstrap.Commerce, bank)
	invoker := tool.NewInvoker(reg, logger)

	loop := orchestrator.NewAgentLoop(llmClient, invoker, reg, cfg.Orchestrator.MaxToolCalls, logger)
	router := orchestrator.NewRouter(llmClient, logger)

	respCache := respcache.New(bootstrap.CacheStore, utils.ParseDurationOr(cfg.Cache.TTL, 0), cfg.Cache.Intents)

	orch := orchestrator.New(router, loop, bank, bootstrap.History, respCache, bootstrap.CacheStore,
		prompt.NewLibrary(), orchestrator.Options{
			DefaultLocale: cfg.Orchestrator.DefaultLocale,
			HistoryLimit:  cfg.Orchestrator.HistoryLimit,
		}, logger)

	handler := http.NewHandler(orch, bank, logger)
	httpRouter := http.NewRouter(handler, middleware.NewMiddleware())

	return &App{bootstrap: bootstrap, router: httpRouter}, nil
}

// Run 启动 HTTP 服务，addr 如 ":8080"
func (a *App) Run(addr string) error {
	a.bootstrap.Logger.Info("API 服务启动", "addr", addr)

	// 使用 Hertz slog 扩展，与 bootstrap 日志配置对齐
	output := os.Stdout
	if a.bootstrap.Config.Log.File != "" {
		f, err := os.OpenFile(a.bootstrap.Config.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("打开日志文件failed: %w", err)
		}
		output = f
	}
	levelVar := &slog.LevelVar{}
	switch a.bootstrap.Config.Log.Level {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
	hertzLogger := hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	)
	hlog.SetLogger(hertzLogger)

	// 可选：启用链路追踪（OpenTelemetry）。InitTracer 注册全局 TracerProvider，
	// Hertz 服务端追踪与检索/工具层的 span 都从它取 Tracer。
	tracingCfg := a.bootstrap.Config.Monitoring.Tracing
	if tracingCfg.Enable {
		serviceName := utils.CoalesceString(tracingCfg.ServiceName, "chat-api")
		exportEndpoint := utils.CoalesceString(tracingCfg.ExportEndpoint, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
		if exportEndpoint != "" {
			tp, err := tracing.InitTracer(tracing.OTelConfig{
				ServiceName:    serviceName,
				ExportEndpoint: exportEndpoint,
				Insecure:       tracingCfg.Insecure,
			})
			if err != nil {
				return fmt.Errorf("初始化链路追踪failed: %w", err)
			}
			a.otelProvider = tp
			tracerOpt, tracerCfg := hertztracing.NewServerTracer()
			a.hertz = a.router.Build(addr, tracerOpt)
			a.hertz.Use(hertztracing.ServerMiddleware(tracerCfg))
			a.bootstrap.Logger.Info("链路追踪已启用", "service_name", serviceName, "endpoint", exportEndpoint)
		} else {
			a.hertz = a.router.Build(addr)
		}
	} else {
		a.hertz = a.router.Build(addr)
	}
	return a.hertz.Run()
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）
func (a *App) Shutdown(ctx context.Context) error {
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	a.bootstrap.Close()
	return nil
}

// newLLMClient 创建 LLM 客户端并按配置包一层限流
func newLLMClient(cfg *config.Config) (llm.Client, error) {
	client, err := llm.NewClient(
		cfg.Model.LLM.Provider,
		cfg.Model.LLM.Model,
		cfg.Model.LLM.APIKey,
		cfg.Model.LLM.BaseURL,
	)
	if err != nil {
		return nil, err
	}
	rl := cfg.Model.RateLimit
	if rl.RequestsPerMinute > 0 || rl.TokensPerMinute > 0 || rl.MaxConcurrent > 0 {
		limiter := llm.NewRateLimiter(llm.LimitConfig{
			RequestsPerMinute: rl.RequestsPerMinute,
			TokensPerMinute:   rl.TokensPerMinute,
			MaxConcurrent:     rl.MaxConcurrent,
		})
		return llm.NewRateLimitedClient(client, limiter), nil
	}
	return client, nil
}

// ensureCollections 确保商品与知识库向量集合存在
func ensureCollections(ctx context.Context, store vector.Store, dimension int) error {
	if store == nil {
		return nil
	}
	if dimension <= 0 {
		dimension = 1536
	}
	for _, name := range []string{retrieval.CollectionProducts, retrieval.CollectionKnowledge} {
		if err := vector.EnsureCollection(ctx, store, name, dimension, "cosine"); err != nil {
			return err
		}
	}
	return nil
}
