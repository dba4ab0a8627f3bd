package dbmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT id FROM reservations", "select"},
		{"  INSERT INTO x VALUES ($1)", "insert"},
		{"UPDATE\nreservations SET", "update"},
		{"SAVEPOINT links", "savepoint"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, operation(tt.query), tt.query)
	}
}

func TestIsInTransaction_EmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsInTransaction(ctx))
	assert.Nil(t, GetExecutor(ctx, nil))
}
