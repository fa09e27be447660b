package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReferrer(t *testing.T) {
	t.Run("known search engine", func(t *testing.T) {
		ref := ParseReferrer("https://www.google.com/search?q=openpanel")
		require.NotNil(t, ref)
		assert.Equal(t, "Google", ref.Name)
		assert.Equal(t, "search", ref.Type)
	})

	t.Run("subdomain matches suffix", func(t *testing.T) {
		ref := ParseReferrer("https://news.ycombinator.com/item?id=1")
		require.NotNil(t, ref)
		assert.Equal(t, "Hacker News", ref.Name)
		assert.Equal(t, "social", ref.Type)
	})

	t.Run("unknown host keeps url with empty classification", func(t *testing.T) {
		ref := ParseReferrer("https://some.blog.test/post")
		require.NotNil(t, ref)
		assert.Equal(t, "https://some.blog.test/post", ref.URL)
		assert.Empty(t, ref.Name)
		assert.Empty(t, ref.Type)
	})

	t.Run("empty and unparseable yield nil", func(t *testing.T) {
		assert.Nil(t, ParseReferrer(""))
		assert.Nil(t, ParseReferrer("not a url"))
	})
}

func TestUTMReferrer(t *testing.T) {
	t.Run("utm source and medium", func(t *testing.T) {
		ref := UTMReferrer(map[string]string{"utm_source": "newsletter", "utm_medium": "email"})
		require.NotNil(t, ref)
		assert.Equal(t, "newsletter", ref.Name)
		assert.Equal(t, "email", ref.Type)
	})

	t.Run("utm source without medium", func(t *testing.T) {
		ref := UTMReferrer(map[string]string{"utm_source": "newsletter"})
		require.NotNil(t, ref)
		assert.Equal(t, "newsletter", ref.Name)
		assert.Equal(t, "utm", ref.Type)
	})

	t.Run("ref param fallback", func(t *testing.T) {
		ref := UTMReferrer(map[string]string{"ref": "producthunt"})
		require.NotNil(t, ref)
		assert.Equal(t, "producthunt", ref.Name)
		assert.Equal(t, "ref", ref.Type)
	})

	t.Run("nothing usable", func(t *testing.T) {
		assert.Nil(t, UTMReferrer(nil))
		assert.Nil(t, UTMReferrer(map[string]string{"plan": "pro"}))
	})
}
