package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Register(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }

	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "six field spec", spec: "0 0 5 * * 1-5"},
		{name: "descriptor", spec: "@every 1h"},
		{name: "five field spec is rejected", spec: "0 5 * * 1-5", wantErr: true},
		{name: "garbage", spec: "not a spec", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New(context.Background(), nil, 0)
			err := s.Register("sync", tt.spec, noop)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, 0, s.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestScheduler_Register_Duplicate(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), time.UTC, 0)
	noop := func(context.Context) error { return nil }
	require.NoError(t, s.Register("sync", "@daily", noop))

	err := s.Register("sync", "@hourly", noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, s.Len())
}

func TestScheduler_RunNow(t *testing.T) {
	t.Parallel()

	errJob := errors.New("sync failed")
	s := New(context.Background(), time.UTC, time.Minute)

	var gotDeadline bool
	calls := 0
	require.NoError(t, s.Register("ok", "@daily", func(ctx context.Context) error {
		calls++
		_, gotDeadline = ctx.Deadline()
		return nil
	}))
	require.NoError(t, s.Register("fail", "@daily", func(context.Context) error { return errJob }))

	require.NoError(t, s.RunNow("ok"))
	assert.Equal(t, 1, calls)
	assert.True(t, gotDeadline, "job context carries the configured timeout")

	assert.ErrorIs(t, s.RunNow("fail"), errJob)
	assert.Error(t, s.RunNow("missing"))
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), time.UTC, 0)
	require.NoError(t, s.Register("sync", "@every 1h", func(context.Context) error { return nil }))

	s.Start()
	s.Stop()
	assert.Equal(t, 1, s.Len())
}
