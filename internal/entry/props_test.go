package entry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropsKeepInsertionOrder(t *testing.T) {
	p := NewProps().Set("b", 1).Set("a", 2).Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, p.Keys())
	assert.Equal(t, 3, p.Get("b"))
	assert.Equal(t, 2, p.Len())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"b":3,"a":2}`, string(out))
}

func TestPropsMergeOverrides(t *testing.T) {
	base := NewProps().Set("component", "x").Set("state", 1)
	base.Merge(NewProps().Set("state", 2).Set("extra", true)).Merge(nil)

	assert.Equal(t, []string{"component", "state", "extra"}, base.Keys())
	assert.Equal(t, 2, base.Get("state"))
	assert.True(t, base.Has("extra"))
	assert.False(t, base.Has("missing"))
}

func TestPropsNestedJSON(t *testing.T) {
	p := NewProps().Set("items", []*Props{NewProps().Set("z", nil).Set("a", "x")})

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[{"z":null,"a":"x"}]}`, string(out))
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, 0, int64(0), 0.0, "", "0", []any{}, map[string]any{}}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}
	truthy := []any{true, 1, -1, 0.5, "a", "false", []any{0}, map[string]any{"a": 1}, time.Now()}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	for _, in := range []any{"2024-01-15T10:30:00Z", "2024-01-15 10:30:00", "2024-01-15 10:30", want, &want, want.Unix()} {
		got, err := ParseTime(in)
		require.NoError(t, err, "%#v", in)
		assert.True(t, want.Equal(got), "%#v", in)
	}

	_, err := ParseTime([]int{1})
	assert.Error(t, err)
}
