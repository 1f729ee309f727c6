package commands

import (
	"fmt"
	"maps"
	"os"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/renderers/html"
)

// themeFile is a theme manifest on disk:
//
//	name: acme
//	tokens: {brand: "#123456", class.input: acme-input}
//	assets: {prefix: /themes/acme, files: {formstate.css: theme.css}}
//	variants:
//	  dark:
//	    tokens: {brand: "#000000"}
type themeFile struct {
	Name     string                  `yaml:"name"`
	Tokens   map[string]string       `yaml:"tokens"`
	Assets   themeAssets             `yaml:"assets"`
	Variants map[string]themeVariant `yaml:"variants"`
}

type themeAssets struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type themeVariant struct {
	Tokens map[string]string `yaml:"tokens"`
	Assets themeAssets       `yaml:"assets"`
}

// loadTheme reads a manifest and resolves it into renderer configuration
// for variant. Tokens outside the class namespace also become CSS variables.
func loadTheme(file, variant string) (*theme.RendererConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("--theme: %w", err)
	}
	var manifest themeFile
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("--theme: parse %s: %w", file, err)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, fmt.Errorf("--theme: %s has no name", file)
	}

	tokens := maps.Clone(manifest.Tokens)
	if tokens == nil {
		tokens = map[string]string{}
	}
	files := maps.Clone(manifest.Assets.Files)
	if files == nil {
		files = map[string]string{}
	}
	prefix := manifest.Assets.Prefix

	if variant != "" {
		v, ok := manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("--theme-variant: %s has no variant %q", manifest.Name, variant)
		}
		maps.Copy(tokens, v.Tokens)
		maps.Copy(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		if strings.HasPrefix(key, html.ClassTokenPrefix) {
			continue
		}
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:   manifest.Name,
		Variant: variant,
		Tokens:  tokens,
		CSSVars: cssVars,
		AssetURL: func(key string) string {
			name, ok := files[key]
			if !ok || name == "" {
				return ""
			}
			if prefix == "" {
				return name
			}
			return path.Join(prefix, name)
		},
	}, nil
}
