package ratiocache

import (
	"testing"

	"github.com/paiban/engine/pkg/model"
)

func TestComputePatternHash_StableForSamePattern(t *testing.T) {
	p := model.WorkPattern{"D", "D", "N", "O"}
	h1 := ComputePatternHash(p)
	h2 := ComputePatternHash(model.WorkPattern{"D", "D", "N", "O"})
	if h1 != h2 {
		t.Errorf("相同班表应产生相同哈希: %s != %s", h1, h2)
	}
}

func TestComputePatternHash_DiffersOnDifferentComposition(t *testing.T) {
	a := ComputePatternHash(model.WorkPattern{"D", "D", "O"})
	b := ComputePatternHash(model.WorkPattern{"D", "N", "O"})
	if a == b {
		t.Error("不同班次构成的模式不应产生相同哈希")
	}
}

func TestComputePatternHash_DiffersOnLength(t *testing.T) {
	a := ComputePatternHash(model.WorkPattern{"D", "O"})
	b := ComputePatternHash(model.WorkPattern{"D", "O", "D", "O"})
	if a == b {
		t.Error("不同长度的模式不应产生相同哈希")
	}
}
