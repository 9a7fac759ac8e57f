package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"deadlock", fmt.Errorf("update: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}), true},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	r := &PostgresRepository{retryDelays: []time.Duration{0, 0, 0}}

	t.Run("retries serialization failures", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry domain errors", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			return ErrNotPending
		})
		assert.ErrorIs(t, err, ErrNotPending)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after all delays", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			return &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
		})
		require.Error(t, err)
		assert.Equal(t, 4, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		slow := &PostgresRepository{retryDelays: []time.Duration{time.Hour}}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := slow.withRetry(ctx, func() error {
			return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestListApplicationsQuery(t *testing.T) {
	r := newRepository(nil)

	t.Run("no filters", func(t *testing.T) {
		query, args, err := r.listApplicationsQuery(model.ApplicationFilter{})
		require.NoError(t, err)
		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "ORDER BY a.created_at DESC")
		assert.Empty(t, args)
	})

	t.Run("all filters", func(t *testing.T) {
		query, args, err := r.listApplicationsQuery(model.ApplicationFilter{
			Status:     model.ApplicationStatusPending,
			Gender:     model.GenderFemale,
			Department: "CSE",
			Search:     " priya ",
		})
		require.NoError(t, err)
		assert.Contains(t, query, "a.status = $1")
		assert.Contains(t, query, "s.gender = $2")
		assert.Contains(t, query, "s.department = $3")
		assert.Contains(t, query, "s.name ILIKE $4")
		assert.Contains(t, query, "s.email ILIKE $5")
		assert.Equal(t, []any{"PENDING", "FEMALE", "CSE", "%priya%", "%priya%", "priya", "priya"}, args)
	})
}

func TestLatestApplicationQuery(t *testing.T) {
	r := newRepository(nil)

	query, args, err := r.latestApplicationQuery("s1", "")
	require.NoError(t, err)
	assert.NotContains(t, query, "a.status")
	assert.Contains(t, query, "ORDER BY a.created_at DESC LIMIT 1")
	assert.Equal(t, []any{"s1"}, args)

	query, args, err = r.latestApplicationQuery("s1", model.ApplicationStatusApproved)
	require.NoError(t, err)
	assert.Contains(t, query, "a.student_id = $1 AND a.status = $2")
	assert.Equal(t, []any{"s1", "APPROVED"}, args)
}
