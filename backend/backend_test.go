package backend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestCollectConcatenatesDeltasAndUsage(t *testing.T) {
	be := mock.New(mock.Response{Text: "hello world", Usage: &core.TokenUsage{InputTokens: 5, OutputTokens: 2}})
	s, err := be.Stream(context.Background(), core.Prompt{})
	require.NoError(t, err)

	text, usage, err := backend.Collect(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
	require.NotNil(t, usage)
	require.Equal(t, 7, usage.Total())
}

func TestMockStreamReturnsScriptedError(t *testing.T) {
	be := mock.New(mock.Response{Err: core.New(core.KindClient, "test", "boom")})
	_, err := be.Stream(context.Background(), core.Prompt{})
	require.Error(t, err)
	require.True(t, core.IsClient(err))
}
