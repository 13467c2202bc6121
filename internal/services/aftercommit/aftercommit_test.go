package aftercommit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gysagsohn/game-tracker-server/internal/testutil"
)

func TestRunContinuesAfterFailures(t *testing.T) {
	r := New(testutil.NopLogger())
	var ran []string

	failed := r.Run(context.Background(),
		Action{Name: "first", Run: func(context.Context) error {
			ran = append(ran, "first")
			return errors.New("boom")
		}},
		Action{Name: "second", Run: func(context.Context) error {
			ran = append(ran, "second")
			panic("unexpected")
		}},
		Action{Name: "third", Run: func(context.Context) error {
			ran = append(ran, "third")
			return nil
		}},
	)

	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"first", "second", "third"}, ran)
}

func TestRunIgnoresRequestCancellation(t *testing.T) {
	r := New(testutil.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr error
	r.Run(ctx, Action{Name: "check", Run: func(ctx context.Context) error {
		sawErr = ctx.Err()
		return nil
	}})

	assert.NoError(t, sawErr)
}

func TestRunSkipsNilActions(t *testing.T) {
	r := New(testutil.NopLogger())
	assert.Equal(t, 0, r.Run(context.Background(), Action{Name: "empty"}))
}
