// Package posters downloads catalog artwork into local storage.
package posters

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Poster names one artwork file and where to fetch it from.
type Poster struct {
	Filename string `yaml:"filename"`
	URL      string `yaml:"url"`
}

// Manifest is the YAML document listing posters to fetch.
type Manifest struct {
	Posters []Poster `yaml:"posters"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(file string) (Manifest, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return Manifest{}, fmt.Errorf("read poster manifest: %w", err)
	}
	return ParseManifest(raw)
}

// ParseManifest decodes a manifest and rejects entries without a usable
// filename or an http(s) URL.
func ParseManifest(raw []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode poster manifest: %w", err)
	}
	seen := make(map[string]struct{}, len(m.Posters))
	for i, p := range m.Posters {
		if err := p.validate(); err != nil {
			return Manifest{}, fmt.Errorf("poster %d: %w", i, err)
		}
		if _, dup := seen[p.Filename]; dup {
			return Manifest{}, fmt.Errorf("poster %d: duplicate filename %q", i, p.Filename)
		}
		seen[p.Filename] = struct{}{}
	}
	return m, nil
}

func (p Poster) validate() error {
	if strings.TrimSpace(p.Filename) == "" || strings.ContainsAny(p.Filename, `/\`) {
		return fmt.Errorf("invalid filename %q", p.Filename)
	}
	u, err := url.Parse(p.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q", p.URL)
	}
	return nil
}

// FilenameFor derives a local poster name from a content name and remote
// URL, keeping the remote extension ("The Lion King" + ".jpg" →
// "the-lion-king.jpg").
func FilenameFor(name, rawURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		if e := path.Ext(u.Path); e != "" && len(e) <= 5 {
			ext = strings.ToLower(e)
		}
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "poster"
	}
	return slug + ext
}
