package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitRequiresServiceName(t *testing.T) {
	_, err := Init(context.Background(), Config{})
	require.Error(t, err)
}

func TestInitWithoutExportersIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "stakevestd"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders(" authorization=Bearer abc , x-tenant=ops,broken,=empty")
	require.Equal(t, map[string]string{"authorization": "Bearer abc", "x-tenant": "ops"}, headers)
}

func TestSamplerRatio(t *testing.T) {
	require.Contains(t, sampler(0).Description(), "AlwaysOnSampler")
	require.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
	var _ sdktrace.Sampler = sampler(1)
}

func TestResourceCarriesDeployment(t *testing.T) {
	res, err := newResource(Config{
		ServiceName: "stakevestd",
		Environment: "test",
		Deployment: Deployment{
			RewardToken:   "rwd",
			VestingToken:  "vst",
			BlockInterval: 2 * time.Second,
		},
	})
	require.NoError(t, err)
	set := res.Set()
	got, ok := set.Value(AttrRewardToken)
	require.True(t, ok)
	require.Equal(t, "rwd", got.AsString())
	got, ok = set.Value(AttrBlockInterval)
	require.True(t, ok)
	require.Equal(t, int64(2000), got.AsInt64())
	_, ok = set.Value(AttrOwner)
	require.False(t, ok)
}
