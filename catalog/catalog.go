/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package catalog loads and verifies the set of card images used by a game.
//
// A manifest lists every image with its key, path, and a checksum (the MD5
// hex digest of the image's base64 encoding). Manifests are JSON, or YAML
// when the file name ends in .yaml or .yml.
package catalog

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Seednode/storyteller/dixit"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownCard     = errors.New("unknown card")
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Entry is one manifest record.
type Entry struct {
	Key            int    `json:"key" yaml:"key"`
	Path           string `json:"path" yaml:"path"`
	Checksum       string `json:"checksum" yaml:"checksum"`
	EncodedPicture string `json:"encoded_picture" yaml:"encoded_picture"`
}

var _ dixit.Catalog = (*Catalog)(nil)

// Catalog is an immutable, validated set of cards.
type Catalog struct {
	entries     map[int]Entry
	cards       []dixit.Card
	regenerated bool
}

// Load reads and verifies manifest against the images in imageDir. If the
// manifest is missing, malformed, or out of date, it is rebuilt from
// imageDir and read once more.
func Load(manifest, imageDir string) (*Catalog, error) {
	c, err := read(manifest, imageDir)
	if err == nil {
		return c, nil
	}

	if err := Import(imageDir, manifest); err != nil {
		return nil, fmt.Errorf("regenerate manifest: %w", err)
	}

	c, err = read(manifest, imageDir)
	if err != nil {
		return nil, err
	}
	c.regenerated = true

	return c, nil
}

// Synthetic returns n image-less cards keyed 1..n.
func Synthetic(n int) *Catalog {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Key: i + 1}
	}
	return newCatalog(entries)
}

func newCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make(map[int]Entry, len(entries)),
		cards:   make([]dixit.Card, 0, len(entries)),
	}
	for _, e := range entries {
		c.entries[e.Key] = e
		c.cards = append(c.cards, dixit.Card{Key: e.Key, Image: e.Path})
	}
	slices.SortFunc(c.cards, func(a, b dixit.Card) int { return a.Key - b.Key })
	return c
}

func read(manifest, imageDir string) (*Catalog, error) {
	data, err := os.ReadFile(manifest)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if isYAML(manifest) {
		err = yaml.Unmarshal(data, &entries)
	} else {
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	files, err := countFiles(imageDir)
	if err != nil {
		return nil, err
	}
	if files != len(entries) {
		return nil, fmt.Errorf("%w: %d entries but %d images in %s", ErrInvalidManifest, len(entries), files, imageDir)
	}

	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.Path == "" || e.Checksum == "" || e.EncodedPicture == "" {
			return nil, fmt.Errorf("%w: entry %d is incomplete", ErrInvalidManifest, e.Key)
		}
		if seen[e.Key] {
			return nil, fmt.Errorf("%w: duplicate key %d", ErrInvalidManifest, e.Key)
		}
		seen[e.Key] = true

		encoded, err := encodeFile(e.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		if checksum(encoded) != e.Checksum {
			return nil, fmt.Errorf("%w: checksum mismatch for card %d", ErrInvalidManifest, e.Key)
		}
	}

	return newCatalog(entries), nil
}

// FindCard returns the card with the given key.
func (c *Catalog) FindCard(key int) (dixit.Card, error) {
	e, ok := c.entries[key]
	if !ok {
		return dixit.Card{}, fmt.Errorf("%w: %d", ErrUnknownCard, key)
	}
	return dixit.Card{Key: e.Key, Image: e.Path}, nil
}

// AllCards returns every card ordered by key.
func (c *Catalog) AllCards() []dixit.Card {
	return slices.Clone(c.cards)
}

// Encoded returns the base64 image data for key.
func (c *Catalog) Encoded(key int) (string, error) {
	e, ok := c.entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownCard, key)
	}
	return e.EncodedPicture, nil
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Regenerated reports whether Load had to rebuild the manifest.
func (c *Catalog) Regenerated() bool {
	return c.regenerated
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func countFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n, nil
}

func encodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func checksum(encoded string) string {
	sum := md5.Sum([]byte(encoded))
	return hex.EncodeToString(sum[:])
}
