package tsgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_MarkedModelsSorted(t *testing.T) {
	reg, cols := testFixture(t)
	r := &Runner{Generator: New(reg, cols, nil, nil), Workers: 2}

	out, err := r.Run(context.Background())
	require.NoError(t, err)

	var classes []string
	for _, tt := range out {
		classes = append(classes, tt.Class)
	}
	// Comment is unmarked and SharedData is a shape, so neither appears.
	assert.Equal(t, []string{`App\Models\Post`, `App\Models\Tag`, `App\Models\User`}, classes)
	assert.Zero(t, cols.reads["comments"])
}

func TestRunner_DefaultWorkers(t *testing.T) {
	reg, cols := testFixture(t)
	r := &Runner{Generator: New(reg, cols, nil, nil)}

	out, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestRunner_StopsOnError(t *testing.T) {
	reg, cols := testFixture(t)
	cols.err = errors.New("boom")
	r := &Runner{Generator: New(reg, cols, nil, nil), Workers: 1}

	out, err := r.Run(context.Background())
	assert.ErrorIs(t, err, cols.err)
	assert.Nil(t, out)
}

func TestRunner_CancelledContext(t *testing.T) {
	reg, cols := testFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Runner{Generator: New(reg, cols, nil, nil)}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
