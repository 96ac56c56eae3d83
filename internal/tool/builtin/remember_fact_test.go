package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-platform/internal/memory"
	apperrors "chat-platform/pkg/errors"
)

func TestRememberFactTool_SaveThenLoad(t *testing.T) {
	bank := memory.NewBank(memory.NewStoreMem(), nil, 10, nil)
	save := NewRememberFactTool(bank)
	load := NewCustomerFactsTool(bank)

	res := save.Execute(context.Background(), map[string]any{
		"customer_id": "cust-1",
		"fact_type":   memory.FactTypePreference,
		"fact_key":    "preferred_size",
		"fact_value":  "M",
	})
	require.True(t, res.Success)

	res = load.Execute(context.Background(), map[string]any{"customer_id": "cust-1"})
	require.True(t, res.Success)
	facts := res.Data["facts"].([]map[string]any)
	require.Len(t, facts, 1)
	assert.Equal(t, "preferred_size", facts[0]["fact_key"])
	assert.Equal(t, memory.SourceExplicit, facts[0]["source"])
}

func TestRememberFactTool_InvalidType(t *testing.T) {
	bank := memory.NewBank(memory.NewStoreMem(), nil, 10, nil)
	save := NewRememberFactTool(bank)

	res := save.Execute(context.Background(), map[string]any{
		"customer_id": "cust-1",
		"fact_type":   "rumor",
		"fact_key":    "k",
		"fact_value":  "v",
	})
	require.False(t, res.Success)
	assert.Equal(t, apperrors.KindValidation, res.Kind)
}
