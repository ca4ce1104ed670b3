package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// BlockConfig describes one synth block: where its face sits in the block
// texture atlas, its size in pixels, and how many ports it exposes.
type BlockConfig struct {
	Name    string     `yaml:"name"`
	UV      [2]float64 `yaml:"uv"`  // atlas center of the block face
	Dim     [2]float64 `yaml:"dim"` // full width and height
	Inputs  int        `yaml:"inputs"`
	Outputs int        `yaml:"outputs"`
}

type catalogueFile struct {
	TexturePath     string        `yaml:"texture_path"`
	PortTexturePath string        `yaml:"port_texture_path"`
	Blocks          []BlockConfig `yaml:"blocks"`
}

// Catalogue provides lookup of block configuration by name.
type Catalogue struct {
	TexturePath     string
	PortTexturePath string
	blocks          map[string]*BlockConfig
}

// LoadCatalogue loads the block catalogue YAML file.
func LoadCatalogue(path string) (*Catalogue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read block catalogue: %w", err)
	}
	return ParseCatalogue(raw)
}

// ParseCatalogue decodes a block catalogue from YAML.
func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse block catalogue: %w", err)
	}
	c := &Catalogue{
		TexturePath:     f.TexturePath,
		PortTexturePath: f.PortTexturePath,
		blocks:          make(map[string]*BlockConfig, len(f.Blocks)),
	}
	for i := range f.Blocks {
		b := &f.Blocks[i]
		if b.Name == "" {
			return nil, fmt.Errorf("block #%d has no name", i)
		}
		if _, dup := c.blocks[b.Name]; dup {
			return nil, fmt.Errorf("duplicate block %q", b.Name)
		}
		if b.Dim[0] <= 0 || b.Dim[1] <= 0 {
			return nil, fmt.Errorf("block %q: dim must be positive", b.Name)
		}
		if b.Inputs < 0 || b.Outputs < 0 {
			return nil, fmt.Errorf("block %q: negative port count", b.Name)
		}
		c.blocks[b.Name] = b
	}
	return c, nil
}

// Get returns the block named name.
func (c *Catalogue) Get(name string) (*BlockConfig, error) {
	b, ok := c.blocks[name]
	if !ok {
		return nil, fmt.Errorf("unknown block %q", name)
	}
	return b, nil
}

// Names returns all block names, sorted.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.blocks))
	for name := range c.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Textures returns the atlas paths, block atlas first.
func (c *Catalogue) Textures() []string {
	return []string{c.TexturePath, c.PortTexturePath}
}

// Count returns the total number of blocks loaded.
func (c *Catalogue) Count() int {
	return len(c.blocks)
}
