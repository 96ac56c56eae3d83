package vector

import (
	"context"
	"fmt"
)

// EnsureCollection 若集合不存在则创建，存在则跳过
func EnsureCollection(ctx context.Context, s Store, name string, dimension int, distance string) error {
	if distance == "" {
		distance = "cosine"
	}
	list, err := s.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("列出集合失败: %w", err)
	}
	for _, n := range list {
		if n == name {
			return nil
		}
	}
	return s.Create(ctx, &Collection{
		Name:      name,
		Dimension: dimension,
		Distance:  distance,
	})
}
