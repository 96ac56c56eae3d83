package vector

import (
	"context"
)

// Store 向量存储接口。集合由外部索引器写入，本服务只读查询为主，
// Add 保留给测试与本地 memory 场景。
type Store interface {
	// Create 创建向量集合
	Create(ctx context.Context, collection *Collection) error
	// Add 添加向量
	Add(ctx context.Context, collection string, vectors []*Vector) error
	// Search 相似度搜索
	Search(ctx context.Context, collection string, query []float64, options *SearchOptions) ([]*SearchResult, error)
	// ListCollections 列出所有集合
	ListCollections(ctx context.Context) ([]string, error)
	// Close 关闭存储连接
	Close() error
}

// Collection 向量集合
type Collection struct {
	Name      string `json:"name"`      // 集合名称
	Dimension int    `json:"dimension"` // 向量维度
	Distance  string `json:"distance"`  // 距离度量方式
}

// Vector 向量数据
type Vector struct {
	ID       string            `json:"id"`       // 条目唯一标识
	Values   []float64         `json:"values"`   // 向量值
	Metadata map[string]string `json:"metadata"` // 条目元数据（name/kind 等）
}

// SearchOptions 搜索选项
type SearchOptions struct {
	TopK      int               `json:"top_k"`     // 返回前 K 个结果
	Filter    map[string]string `json:"filter"`    // 元数据过滤
	Threshold float64           `json:"threshold"` // 相似度阈值
}

// SearchResult 搜索结果
type SearchResult struct {
	ID       string            `json:"id"`       // 条目唯一标识
	Score    float64           `json:"score"`    // 相似度得分
	Metadata map[string]string `json:"metadata"` // 条目元数据
}
