package kube

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResolver struct {
	lookupHostFunc func(ctx context.Context, host string) ([]string, error)
}

func (m mockResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if m.lookupHostFunc != nil {
		return m.lookupHostFunc(ctx, host)
	}
	panic("not implemented")
}

func TestResolveServiceAddress(t *testing.T) {
	tests := []struct {
		name     string
		context  *ClusterContext
		expected string
	}{
		{
			name:     "Nil context",
			expected: "mssql.default.svc.cluster.local",
		},
		{
			name:     "No namespace",
			context:  &ClusterContext{},
			expected: "mssql.default.svc.cluster.local",
		},
		{
			name:     "Namespace",
			context:  &ClusterContext{Namespace: "db"},
			expected: "mssql.db.svc.cluster.local",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.context.ResolveServiceAddress("mssql"))
		})
	}
}

func TestWaitForDNS_ResolvesAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	resolver := mockResolver{
		lookupHostFunc: func(ctx context.Context, host string) ([]string, error) {
			if attempts.Add(1) < 3 {
				return nil, errors.New("no such host")
			}
			return []string{"10.0.0.1"}, nil
		},
	}

	err := waitForDNS(context.Background(), resolver, "mssql.default.svc.cluster.local", time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestWaitForDNS_Timeout(t *testing.T) {
	resolver := mockResolver{
		lookupHostFunc: func(ctx context.Context, host string) ([]string, error) {
			return nil, errors.New("no such host")
		},
	}

	err := waitForDNS(context.Background(), resolver, "missing.default.svc.cluster.local", 20*time.Millisecond, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDNSTimeout)
	assert.ErrorContains(t, err, "'missing.default.svc.cluster.local' could not be resolved")
}

func TestWaitForDNS_ParentCancelled(t *testing.T) {
	resolver := mockResolver{
		lookupHostFunc: func(ctx context.Context, host string) ([]string, error) {
			return nil, errors.New("no such host")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitForDNS(ctx, resolver, "missing", time.Minute, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrDNSTimeout)
}
