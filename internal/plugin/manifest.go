package plugin

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var manifestYAML []byte

var ErrToolNotFound = errors.New("tool not found in manifest")

type I18nText map[string]string

// Get отдает перевод для локали, иначе en_US
func (t I18nText) Get(locale string) string {
	if v, ok := t[locale]; ok {
		return v
	}
	return t["en_US"]
}

type Manifest struct {
	Identity    Identity          `yaml:"identity" json:"identity"`
	Credentials []CredentialField `yaml:"credentials" json:"credentials"`
	Tools       []ToolManifest    `yaml:"tools" json:"tools"`
}

type Identity struct {
	Name        string   `yaml:"name" json:"name"`
	Author      string   `yaml:"author" json:"author"`
	Label       I18nText `yaml:"label" json:"label"`
	Description I18nText `yaml:"description" json:"description"`
}

type CredentialField struct {
	Name     string   `yaml:"name" json:"name"`
	Type     string   `yaml:"type" json:"type"`
	Required bool     `yaml:"required" json:"required"`
	Label    I18nText `yaml:"label" json:"label"`
	Help     I18nText `yaml:"help,omitempty" json:"help,omitempty"`
}

type ToolManifest struct {
	Name        string          `yaml:"name" json:"name"`
	Label       I18nText        `yaml:"label" json:"label"`
	Description I18nText        `yaml:"description" json:"description"`
	Parameters  []ToolParameter `yaml:"parameters" json:"parameters"`
}

type ToolParameter struct {
	Name     string      `yaml:"name" json:"name"`
	Type     string      `yaml:"type" json:"type"`
	Required bool        `yaml:"required" json:"required"`
	Form     string      `yaml:"form" json:"form"`
	Default  interface{} `yaml:"default,omitempty" json:"default,omitempty"`
	Label    I18nText    `yaml:"label" json:"label"`
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Identity.Name == "" {
		return nil, errors.New("manifest: identity.name is required")
	}
	return &m, nil
}

// LoadManifest разбирает встроенный manifest.yaml
func LoadManifest() (*Manifest, error) {
	return ParseManifest(manifestYAML)
}

func (m *Manifest) Tool(name string) (ToolManifest, error) {
	for _, t := range m.Tools {
		if t.Name == name {
			return t, nil
		}
	}
	return ToolManifest{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
}

func (t ToolManifest) Parameter(name string) (ToolParameter, bool) {
	for _, p := range t.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ToolParameter{}, false
}
