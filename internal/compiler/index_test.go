package compiler_test

import (
	"testing"

	"github.com/aretw0/kiteflow/internal/compiler"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGraphIndex(t *testing.T) {
	idx := compiler.NewGraphIndex([]domain.Edge{
		edge("a", "b"),
		edge("a", "c"),
		edge("d", "b"),
		edge("a", "missing"),
	})

	assert.Equal(t, []string{"b", "c", "missing"}, idx.Targets("a"))
	assert.Equal(t, []string{"a", "d"}, idx.Sources("b"))
	assert.Nil(t, idx.Targets("b"))
	assert.Nil(t, idx.Sources("zzz"))
}

func TestRegistry(t *testing.T) {
	reg := compiler.NewRegistry([]domain.Node{
		node("a", domain.NodeTypeActionLog, domain.NodeData{LogMessage: "first"}),
		node("b", domain.NodeTypeActionLog, domain.NodeData{}),
		node("a", domain.NodeTypeActionLog, domain.NodeData{LogMessage: "second"}),
	})

	assert.Equal(t, 2, reg.Len())
	a, ok := reg.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "second", a.Data.LogMessage)
	assert.Equal(t, []string{"a"}, reg.Duplicates())

	_, ok = reg.Get("c")
	assert.False(t, ok)
}
