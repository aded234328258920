package charts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	raw := []byte(`{
		"visualize": {"x-grid": "off"},
		"publish": {
			"embed-width": 600,
			"embed-height": 400,
			"embed-codes": {
				"embed-method-responsive": "<div>responsive</div>",
				"embed-method-iframe": "<iframe></iframe>"
			}
		}
	}`)

	meta, err := ParseMetadata(raw)
	require.NoError(t, err)

	width, height := meta.Publish.EmbedSize()
	assert.Equal(t, 600, width)
	assert.Equal(t, 400, height)

	code, ok := meta.Publish.ResponsiveEmbed()
	assert.True(t, ok)
	assert.Equal(t, "<div>responsive</div>", code)
}

func TestParseMetadata_Empty(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("  "), []byte("null")} {
		meta, err := ParseMetadata(raw)
		require.NoError(t, err)
		assert.Equal(t, Metadata{}, meta)
	}
}

func TestParseMetadata_FractionalSizeIsRounded(t *testing.T) {
	meta, err := ParseMetadata([]byte(`{"publish": {"embed-width": 599.6, "embed-height": 400.4}}`))
	require.NoError(t, err)

	width, height := meta.Publish.EmbedSize()
	assert.Equal(t, 600, width)
	assert.Equal(t, 400, height)
}

func TestParseMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{publish`},
		{name: "width is a string", raw: `{"publish": {"embed-width": "600"}}`},
		{name: "negative height", raw: `{"publish": {"embed-height": -1}}`},
		{name: "embed code is not a string", raw: `{"publish": {"embed-codes": {"embed-method-responsive": 42}}}`},
		{name: "publish is an array", raw: `{"publish": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidMetadata), "expected ErrInvalidMetadata, got %v", err)
		})
	}
}

func TestResponsiveEmbed_ShortKey(t *testing.T) {
	p := PublishMetadata{EmbedCodes: map[string]string{"responsive": "<div/>"}}
	code, ok := p.ResponsiveEmbed()
	assert.True(t, ok)
	assert.Equal(t, "<div/>", code)
}

func TestResponsiveEmbed_Missing(t *testing.T) {
	p := PublishMetadata{EmbedCodes: map[string]string{
		"embed-method-iframe":     "<iframe></iframe>",
		"embed-method-responsive": "",
	}}
	_, ok := p.ResponsiveEmbed()
	assert.False(t, ok)

	_, ok = PublishMetadata{}.ResponsiveEmbed()
	assert.False(t, ok)
}

func TestChart_IsPublished(t *testing.T) {
	assert.True(t, (&Chart{LastEditStep: PublishedStep}).IsPublished())
	assert.False(t, (&Chart{LastEditStep: PublishedStep, Deleted: true}).IsPublished())
	assert.False(t, (&Chart{LastEditStep: 3}).IsPublished())
	assert.False(t, (&Chart{LastEditStep: 6}).IsPublished())
}

func TestChart_AuthorName(t *testing.T) {
	assert.Equal(t, "", (&Chart{}).AuthorName())
	assert.Equal(t, "Ada", (&Chart{Owner: &Owner{Name: "Ada"}}).AuthorName())
}
