package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps undeclared keys in order",
			input: `{"product_url":"https://s.example/1","title":"Tote","description":"Calfskin tote","price":"¥1,250"}`,
			want:  `{"product_url":"https://s.example/1","title":"Tote","description":"Calfskin tote","price":"¥1,250"}`,
		},
		{
			name:  "values of any type pass through",
			input: `{"match_confidence":"0.85","official_price":1250,"tags":["a",1,null],"nested":{"k":true}}`,
			want:  `{"match_confidence":"0.85","official_price":1250,"tags":["a",1,null],"nested":{"k":true}}`,
		},
		{
			name:  "repeated key keeps first position and last value",
			input: `{"a":1,"b":2,"a":3}`,
			want:  `{"a":3,"b":2}`,
		},
		{
			name:  "null becomes empty object",
			input: `null`,
			want:  `{}`,
		},
		{
			name:  "non-object kept verbatim",
			input: `"unexpected"`,
			want:  `"unexpected"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Object
			require.NoError(t, json.Unmarshal([]byte(tt.input), &o))

			data, err := json.Marshal(o)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestObject_With(t *testing.T) {
	var o Object
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":2}`), &o))

	updated := o.With("a", json.RawMessage(`"x"`)).With("c", json.RawMessage(`true`))

	before, _ := json.Marshal(o)
	after, _ := json.Marshal(updated)
	assert.Equal(t, `{"a":1,"b":2}`, string(before))
	assert.Equal(t, `{"a":"x","b":2,"c":true}`, string(after))
}

func TestRawProduct_MapImageURLs(t *testing.T) {
	upper := func(s string) string { return strings.ToUpper(s) }

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "rewrites string entries only",
			input: `{"title":"Bag","image_urls":["a.jpg",7,"b.jpg"]}`,
			want:  `{"title":"Bag","image_urls":["A.JPG",7,"B.JPG"]}`,
		},
		{
			name:  "non-array left alone",
			input: `{"image_urls":"a.jpg"}`,
			want:  `{"image_urls":"a.jpg"}`,
		},
		{
			name:  "absent gallery",
			input: `{"title":"Bag"}`,
			want:  `{"title":"Bag"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw RawProduct
			require.NoError(t, json.Unmarshal([]byte(tt.input), &raw))

			data, err := json.Marshal(raw.MapImageURLs(upper))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			original, _ := json.Marshal(raw)
			assert.Equal(t, tt.input, string(original))
		})
	}
}

func TestCheckpoint_PipelineShape(t *testing.T) {
	// Checkpoints written straight from the scraper record
	input := `{"raw":{"product_internal_id":"655730","product_url":"https://s.example/655730","title":"Shoulder bag","description":"Calfskin","price":"1250","image_urls":["https://pic.qiqi2000.com/1.jpg"]},"inference":{"brand":"Celine","confidence":"high"}}`

	var cp Checkpoint
	require.NoError(t, json.Unmarshal([]byte(input), &cp))

	raw, err := json.Marshal(cp.Raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_internal_id":"655730","product_url":"https://s.example/655730","title":"Shoulder bag","description":"Calfskin","price":"1250","image_urls":["https://pic.qiqi2000.com/1.jpg"]}`, string(raw))

	inference, err := json.Marshal(cp.Inference)
	require.NoError(t, err)
	assert.JSONEq(t, `{"brand":"Celine","confidence":"high"}`, string(inference))
}
