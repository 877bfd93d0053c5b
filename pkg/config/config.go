// Package config loads embedder-facing runtime limit settings.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Limits bounds a runtime's resource use. Zero values mean unlimited.
type Limits struct {
	// MemoryLimit caps accounted heap bytes.
	MemoryLimit int64 `toml:"memory_limit"`
	// MaxAtoms caps the number of interned property names.
	MaxAtoms int `toml:"max_atoms"`
}

// File is the on-disk layout of a kestrel limits file.
type File struct {
	Limits Limits `toml:"limits"`
}

// Load reads a TOML limits file.
func Load(path string) (File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return File{}, fmt.Errorf("config: unknown key %q", undecoded[0].String())
	}
	if f.Limits.MemoryLimit < 0 || f.Limits.MaxAtoms < 0 {
		return File{}, fmt.Errorf("config: limits must be non-negative")
	}
	return f, nil
}
