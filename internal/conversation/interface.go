package conversation

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// History 会话历史存储，按客户保存最近消息序列
type History interface {
	Append(ctx context.Context, customerID string, msgs ...*schema.Message) error
	// Get 返回最近 limit 条消息（时间正序）；limit<=0 返回全部已保留的
	Get(ctx context.Context, customerID string, limit int) ([]*schema.Message, error)
	Clear(ctx context.Context, customerID string) error
	Close() error
}
