package codec

import (
	"strings"
	"testing"

	"github.com/hupe1980/frozen/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json", "yaml"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	c, ok := ByName("yml")
	require.True(t, ok)
	assert.Equal(t, "yaml", c.Name())

	_, ok = ByName("xml")
	assert.False(t, ok)
}

func TestByExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "countries.json", want: "go-json"},
		{name: "countries.JSON", want: "go-json"},
		{name: "countries.yml", want: "yaml"},
		{name: "data/countries.yaml", want: "yaml"},
		{name: "countries.yml.zst", want: "yaml"},
		{name: "countries.json.lz4", want: "go-json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ByExtension(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}

	_, err := ByExtension("countries.csv")
	assert.Error(t, err)
	_, err = ByExtension("countries")
	assert.Error(t, err)
}

func TestCodecsPreserveOrder(t *testing.T) {
	docs := map[string]string{
		"json":    `[{"name":"Canada","id":1,"density":3.5},{"name":"France","id":2,"density":116}]`,
		"go-json": `[{"name":"Canada","id":1,"density":3.5},{"name":"France","id":2,"density":116}]`,
		"yaml":    "- name: Canada\n  id: 1\n  density: 3.5\n- name: France\n  id: 2\n  density: 116\n",
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)

			var rows []record.Attributes
			require.NoError(t, c.Unmarshal([]byte(doc), &rows))
			require.Len(t, rows, 2)
			assert.Equal(t, []string{"name", "id", "density"}, rows[0].Names())
			assert.Equal(t, record.Int(116), rows[1].Value("density"))

			out, err := c.Marshal(rows)
			require.NoError(t, err)

			var back []record.Attributes
			require.NoError(t, c.Unmarshal(out, &back))
			require.Len(t, back, 2)
			assert.Equal(t, rows[1].Names(), back[1].Names())
			assert.True(t, rows[0].Equal(back[0]))
		})
	}
}

func TestYAMLMarshal(t *testing.T) {
	attrs := record.NewAttributes(
		record.F("id", record.Int(1)),
		record.F("tags", record.Array([]record.Value{record.String("a")})),
	)
	out, err := YAML{}.Marshal([]record.Attributes{attrs})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "- id: 1\n  tags:\n"), string(out))

	var back []record.Attributes
	require.NoError(t, YAML{}.Unmarshal(out, &back))
	require.Len(t, back, 1)
	assert.True(t, attrs.Equal(back[0]))
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"id":1}`, string(MustMarshal(nil, map[string]int{"id": 1})))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
