package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{"titles":["A","B"],"description":"Nice saree","bullets":["Soft"],"keywords":["saree"]}`

func TestNormalizeResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", validJSON, validJSON},
		{"json fence", "```json\n" + validJSON + "\n```", validJSON},
		{"bare fence", "```\n" + validJSON + "\n```", validJSON},
		{"leading fence only", "```json" + validJSON, validJSON},
		{"surrounding whitespace", "\n\n  ```json\n" + validJSON + "\n```  \n", validJSON},
		{"trailing fence without leading is kept", validJSON + "```", validJSON + "```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := NormalizeResponse(tt.in)
			assert.Equal(t, tt.want, once)
			assert.Equal(t, once, NormalizeResponse(once))
		})
	}
}

func TestNormalizeResponse_StripsOneLayer(t *testing.T) {
	nested := "```json\n```json\n" + validJSON + "\n```\n```"
	assert.Equal(t, "```json\n"+validJSON+"\n```", NormalizeResponse(nested))

	_, err := ParseContent(nested)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseContent(t *testing.T) {
	t.Run("fenced payload parses the same as plain", func(t *testing.T) {
		plain, err := ParseContent(validJSON)
		require.NoError(t, err)
		fenced, err := ParseContent("```json\n" + validJSON + "\n```")
		require.NoError(t, err)
		twice, err := ParseContent(NormalizeResponse(NormalizeResponse("```json\n" + validJSON + "\n```")))
		require.NoError(t, err)

		assert.Equal(t, plain, fenced)
		assert.Equal(t, plain, twice)
		assert.Equal(t, []string{"A", "B"}, plain.Titles)
		assert.Equal(t, "Nice saree", plain.Description)
		assert.Equal(t, []string{"Soft"}, plain.Bullets)
		assert.Equal(t, []string{"saree"}, plain.Keywords)
	})

	t.Run("empty arrays are accepted", func(t *testing.T) {
		c, err := ParseContent(`{"titles":[],"description":"","bullets":[],"keywords":[]}`)
		require.NoError(t, err)
		assert.Empty(t, c.Titles)
	})

	t.Run("empty", func(t *testing.T) {
		for _, in := range []string{"", "   \n\t"} {
			_, err := ParseContent(in)
			assert.ErrorIs(t, err, ErrEmptyResponse)
		}
	})

	malformed := []struct {
		name string
		in   string
	}{
		{"not json", "Here is your listing!"},
		{"only fences", "```json\n```"},
		{"truncated", `{"titles":["A"],"description":"x"`},
		{"missing keywords", `{"titles":["A"],"description":"x","bullets":["b"]}`},
		{"null description", `{"titles":["A"],"description":null,"bullets":["b"],"keywords":["k"]}`},
		{"wrong type", `{"titles":"A","description":"x","bullets":["b"],"keywords":["k"]}`},
		{"array root", `[1,2,3]`},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseContent(tt.in)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, c)
		})
	}
}
