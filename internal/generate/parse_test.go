package generate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangxinyong12/auto-fill-extension/internal/generate"
)

func TestExtractValueMap(t *testing.T) {
	cases := []struct {
		name string
		text string
		want map[string]any
	}{
		{
			"bare object",
			`{"email": "a@b.cn", "age": 30}`,
			map[string]any{"email": "a@b.cn", "age": float64(30)},
		},
		{
			"json fence",
			"Here you go:\n```json\n{\"name\": \"王芳\"}\n```",
			map[string]any{"name": "王芳"},
		},
		{
			"unlabeled fence",
			"```\n{\"a\": 1}\n```",
			map[string]any{"a": float64(1)},
		},
		{
			"leading and trailing prose",
			`Sure! The values are {"city": "Beijing"} — let me know if you need more.`,
			map[string]any{"city": "Beijing"},
		},
		{
			"trailing comma repaired",
			`{"a": "1", "b": "2",}`,
			map[string]any{"a": "1", "b": "2"},
		},
		{
			"braces inside string values",
			`{"note": "use {curly} braces", "ok": true}`,
			map[string]any{"note": "use {curly} braces", "ok": true},
		},
		{
			"nested object",
			`{"outer": {"inner": "v"}}`,
			map[string]any{"outer": map[string]any{"inner": "v"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := generate.ExtractValueMap(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractValueMapFailures(t *testing.T) {
	cases := []struct {
		name string
		text string
		err  error
	}{
		{"no json at all", "I cannot help with that.", generate.ErrNoJSON},
		{"unterminated object", `{"a": "1"`, generate.ErrNoJSON},
		{"array instead of object", `["a", "b"]`, generate.ErrNoJSON},
		{"empty object", `{}`, generate.ErrEmptyResult},
		{"empty fenced object", "```json\n{}\n```", generate.ErrEmptyResult},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := generate.ExtractValueMap(tc.text)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
