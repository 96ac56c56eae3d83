package builtin

import (
	"chat-platform/internal/commerce"
	"chat-platform/internal/memory"
	"chat-platform/internal/retrieval"
	"chat-platform/internal/tool"
	"chat-platform/internal/tool/registry"
)

// RegisterBuiltin 将内置工具注册到 ToolRegistry（需传入已装配的依赖）
func RegisterBuiltin(reg *registry.Registry, engine retrieval.Searcher, store commerce.Store, bank *memory.Bank) {
	if reg == nil {
		return
	}
	if engine != nil {
		reg.Register(NewProductSearchTool(engine))
		reg.Register(NewKnowledgeSearchTool(engine))
	}
	if store != nil {
		reg.Register(NewAvailabilityTool(store))
		reg.Register(NewOrderCreateTool(store, store))
		reg.Register(NewOrderStatusTool(store))
		reg.Register(NewOrderHistoryTool(store))
	}
	if bank != nil {
		reg.Register(NewCustomerFactsTool(bank))
		reg.Register(NewRememberFactTool(bank))
	}
}

// RegisterTools 仅注册给定工具（用于测试或最小装配）
func RegisterTools(reg *registry.Registry, tools ...tool.Tool) {
	if reg == nil {
		return
	}
	for _, t := range tools {
		reg.Register(t)
	}
}
