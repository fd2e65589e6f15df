package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindClosestString(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s, dist, ok := FindClosestString(context.Background(), []string{"aaa", "bba", "cca"}, "aa", 2)
		if !assert.True(t, ok) {
			return
		}

		assert.Equal(t, 1, dist)
		assert.Equal(t, "aaa", s)
	})

	t.Run("substitutions count as one difference", func(t *testing.T) {
		s, dist, ok := FindClosestString(context.Background(), []string{"check", "compile", "test"}, "chek", 2)
		if !assert.True(t, ok) {
			return
		}

		assert.Equal(t, 1, dist)
		assert.Equal(t, "check", s)

		s, dist, ok = FindClosestString(context.Background(), []string{"test"}, "tesr", 1)
		assert.True(t, ok)
		assert.Equal(t, 1, dist)
		assert.Equal(t, "test", s)
	})

	t.Run("maxDifferences should be respected", func(t *testing.T) {
		_, _, ok := FindClosestString(context.Background(), []string{"aaaaa"}, "aa", 2)
		if !assert.False(t, ok) {
			return
		}
	})
}
