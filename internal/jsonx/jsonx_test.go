package jsonx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(s), &doc))
	return doc
}

func TestPathText(t *testing.T) {
	region := MustCompile("$.microrregiao.mesorregiao.UF.regiao.nome")

	tests := []struct {
		name   string
		doc    string
		want   string
		wantOK bool
	}{
		{
			name:   "full chain",
			doc:    `{"microrregiao":{"mesorregiao":{"UF":{"regiao":{"nome":"Sudeste"}}}}}`,
			want:   "Sudeste",
			wantOK: true,
		},
		{
			name: "missing intermediate level",
			doc:  `{"microrregiao":{"mesorregiao":{}}}`,
		},
		{
			name: "null intermediate level",
			doc:  `{"microrregiao":null}`,
		},
		{
			name: "wrong type at leaf",
			doc:  `{"microrregiao":{"mesorregiao":{"UF":{"regiao":{"nome":3}}}}}`,
		},
		{
			name: "intermediate is an array",
			doc:  `{"microrregiao":[1,2]}`,
		},
		{
			name: "top level is not an object",
			doc:  `"x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := region.Text(decode(t, tt.doc))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupNilDocument(t *testing.T) {
	_, ok := MustCompile("$.a").Lookup(nil)
	assert.False(t, ok)

	_, ok = Path{}.Lookup(map[string]any{"a": "b"})
	assert.False(t, ok)
}

func TestCompileInvalid(t *testing.T) {
	_, err := Compile("$.a[")
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile("$.a[") })
}

func TestField(t *testing.T) {
	obj := map[string]any{"uf": "SP", "ibge": 3550308}
	assert.Equal(t, "SP", Field(obj, "uf"))
	assert.Equal(t, "", Field(obj, "ibge"))
	assert.Equal(t, "", Field(obj, "missing"))
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(true))
	assert.True(t, Truthy("true"))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy("false"))
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(1))
}

func TestInt(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   int
		wantOK bool
	}{
		{"json number", json.Number("11451999"), 11451999, true},
		{"fractional json number", json.Number("1.5"), 0, false},
		{"float64 integral", float64(42), 42, true},
		{"float64 fractional", 4.2, 0, false},
		{"numeric string", "12325232", 12325232, true},
		{"non-numeric string", "-", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Int(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
