/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Import builds a manifest from every image in imageDir and writes it to
// manifest. Image files must be named after their key, e.g. 12.png.
func Import(imageDir, manifest string) error {
	dirEntries, err := os.ReadDir(imageDir)
	if err != nil {
		return err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		if !d.Type().IsRegular() {
			continue
		}

		name := d.Name()
		key, err := strconv.Atoi(strings.TrimSuffix(name, filepath.Ext(name)))
		if err != nil {
			return fmt.Errorf("image %q is not named after a numeric key", name)
		}

		path := filepath.Join(imageDir, name)
		encoded, err := encodeFile(path)
		if err != nil {
			return err
		}

		entries = append(entries, Entry{
			Key:            key,
			Path:           path,
			Checksum:       checksum(encoded),
			EncodedPicture: encoded,
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int { return a.Key - b.Key })

	var data []byte
	if isYAML(manifest) {
		data, err = yaml.Marshal(entries)
	} else {
		data, err = json.MarshalIndent(entries, "", "    ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(manifest, data, 0o644)
}
