package posters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`
posters:
  - filename: lion-king.jpg
    url: https://image.tmdb.org/t/p/w500/lion.jpg
  - filename: frozen.jpg
    url: https://image.tmdb.org/t/p/w500/frozen.jpg
`))
	require.NoError(t, err)
	require.Len(t, m.Posters, 2)
	assert.Equal(t, "frozen.jpg", m.Posters[1].Filename)
}

func TestParseManifestRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"path in filename": "posters:\n  - filename: ../x.jpg\n    url: https://a.test/x.jpg\n",
		"ftp url":          "posters:\n  - filename: x.jpg\n    url: ftp://a.test/x.jpg\n",
		"duplicate":        "posters:\n  - filename: x.jpg\n    url: https://a.test/1.jpg\n  - filename: x.jpg\n    url: https://a.test/2.jpg\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestFilenameFor(t *testing.T) {
	assert.Equal(t, "the-lion-king.jpg", FilenameFor("The Lion King", "https://img.test/p/abc.jpg"))
	assert.Equal(t, "wandavision.png", FilenameFor("WandaVision!", "https://img.test/p/abc.PNG?x=1"))
	assert.Equal(t, "poster.jpg", FilenameFor("???", "not a url"))
}
