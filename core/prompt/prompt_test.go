package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdin_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"  YES \n", true},
		{"Y", true},
		{"n\n", false},
		{"no\n", false},
		{"yeah\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			s := NewStdin(strings.NewReader(tt.input), &out)

			got, err := s.Confirm(context.Background(), "Zero out all cookie expiration times?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(out.String(), "Zero out all cookie expiration times? "))
		})
	}
}

func TestStdin_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	got, err := NewStdin(strings.NewReader("yes\n"), &out).Confirm(ctx, "Continue?")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, got)
	assert.Empty(t, out.String())
}

func TestFixed_Confirm(t *testing.T) {
	var out bytes.Buffer

	got, err := Fixed{Answer: true, Out: &out}.Confirm(context.Background(), "Continue?")
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, "Continue? yes (auto-answered)\n", out.String())

	got, err = Fixed{}.Confirm(context.Background(), "Continue?")
	require.NoError(t, err)
	assert.False(t, got)
}
