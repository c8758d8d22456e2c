package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string verbatim", "hello\nworld", "hello\nworld"},
		{
			"map sorted by key",
			map[string]any{"b": 2, "a": "x", "c": true},
			"a: x\nb: 2\nc: true",
		},
		{
			"string map sorted",
			map[string]string{"z": "last", "a": "first"},
			"a: first\nz: last",
		},
		{
			"slice in order",
			[]any{"one", 2, "three"},
			"- one\n- 2\n- three",
		},
		{
			"string slice",
			[]string{"x", "y"},
			"- x\n- y",
		},
		{
			"nested inline",
			map[string]any{"items": []any{"a", "b"}, "meta": map[string]any{"k": "v"}},
			"items: [a, b]\nmeta: {k=v}",
		},
		{"fallback", 42, "42"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, RenderText(tt.in))
		})
	}
}

func TestRenderTextDeterministic(t *testing.T) {
	t.Parallel()

	payload := map[string]any{"delta": 4, "alpha": 1, "charlie": 3, "bravo": 2}
	first := RenderText(payload)
	for i := 0; i < 50; i++ {
		if got := RenderText(payload); got != first {
			t.Fatalf("rendering changed between calls:\n%q\nvs\n%q", first, got)
		}
	}
}

func TestArtifactWithDestination(t *testing.T) {
	t.Parallel()

	a := NewArtifact("generate", "payload")
	b := a.WithDestination("validate")

	require.Equal(t, "", a.Destination(), "receiver must be unchanged")
	require.Equal(t, "validate", b.Destination())
	require.Equal(t, a.Origin(), b.Origin())
	require.Equal(t, a.Payload(), b.Payload())
}

func TestArtifactText(t *testing.T) {
	t.Parallel()

	a := NewArtifact(OriginSystem, map[string]string{"name": "atlas"})
	require.Equal(t, "name: atlas", a.Text())
}
