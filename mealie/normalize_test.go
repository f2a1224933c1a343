package mealie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"recipeYield", "recipe_yield"},
		{"already_snake", "already_snake"},
		{"Name", "name"},
		{"orgURL", "org_u_r_l"},
		{"a", "a"},
		{"", ""},
		{"dateAdded", "date_added"},
		{"xYZ", "x_y_z"},
		{"émigréName", "émigré_name"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SnakeCase(tt.in))
		})
	}
}

func TestNormalizeNested(t *testing.T) {
	in := map[string]any{
		"recipeYield": "4",
		"recipeIngredient": []any{
			map[string]any{"noteText": "salt", "quantity": 1.0},
			"plain",
		},
		"nutrition": map[string]any{"fatContent": "10g"},
	}

	got := Normalize(in)

	want := map[string]any{
		"recipe_yield": "4",
		"recipe_ingredient": []any{
			map[string]any{"note_text": "salt", "quantity": 1.0},
			"plain",
		},
		"nutrition": map[string]any{"fat_content": "10g"},
	}
	assert.Equal(t, want, got)
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	inner := map[string]any{"innerKey": 1.0}
	in := map[string]any{"outerKey": inner}

	_ = Normalize(in)

	assert.Contains(t, in, "outerKey")
	assert.Contains(t, inner, "innerKey")
	assert.NotContains(t, in, "outer_key")
}

func TestNormalizeScalarsUnchanged(t *testing.T) {
	for _, v := range []any{nil, "camelCase", 3.5, true} {
		assert.Equal(t, v, Normalize(v))
	}
}

func TestNormalizeCollisionLastKeyWins(t *testing.T) {
	in := map[string]any{"a_b": "snake", "aB": "camel"}

	got := Normalize(in).(map[string]any)

	// "a_b" sorts after "aB", so it is written last.
	assert.Len(t, got, 1)
	assert.Equal(t, "snake", got["a_b"])
}

func TestNormalizeIdempotentOnSnakeKeys(t *testing.T) {
	in := map[string]any{"total_time": "1h", "tags": []any{"x"}}
	assert.Equal(t, in, Normalize(Normalize(in)))
}
