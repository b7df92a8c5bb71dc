package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	Name   string // for builtin/default
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> last writer source (file only)
	Files   []string          // all loaded files, in load order
	Path    string            // main config path, whether or not it exists
}

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "BSPTILE_CONFIG"

func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	if xdg.ConfigHome == "" {
		return "", fmt.Errorf("failed to resolve config home")
	}
	return filepath.Join(xdg.ConfigHome, "bsptile", "config.yaml"), nil
}

// Load reads the merged configuration from the standard location and returns an
// effective config ready for use by the daemon.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns file-level sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := newLoader()
	raw := RawConfig{}

	exists, err := pathExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		if raw, err = l.load(path); err != nil {
			return nil, err
		}
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err != nil {
		return nil, attachSourceContext(err, l.sources)
	}
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, l.sources)
	}

	return &LoadResult{
		Config:  cfg,
		Sources: l.sources,
		Files:   l.files,
		Path:    path,
	}, nil
}

type includeRef struct {
	Value  string
	Source Source
}

// loader merges a file with everything it includes. Includes are merged
// before the including file, so the includer wins; each file is read once.
type loader struct {
	seen    map[string]struct{}
	chain   []string
	files   []string
	sources map[string]Source
}

func newLoader() *loader {
	return &loader{
		seen:    make(map[string]struct{}),
		sources: make(map[string]Source),
	}
}

func (l *loader) load(path string) (RawConfig, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, err
	}
	if slices.Contains(l.chain, canon) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), canon)
	}
	if _, ok := l.seen[canon]; ok {
		return RawConfig{}, nil
	}
	l.seen[canon] = struct{}{}

	raw, doc, err := parseFile(canon)
	if err != nil {
		return RawConfig{}, err
	}

	l.chain = append(l.chain, canon)
	defer func() { l.chain = l.chain[:len(l.chain)-1] }()

	merged := RawConfig{}
	for _, ref := range collectIncludeRefs(doc, canon) {
		paths, err := expandInclude(canon, ref.Value)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s:%d:%d: include %q: %w", ref.Source.File, ref.Source.Line, ref.Source.Column, ref.Value, err)
		}
		for _, p := range paths {
			inc, err := l.load(p)
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(inc)
		}
	}

	maps.Copy(l.sources, collectSources(doc, canon))
	l.files = append(l.files, canon)
	return merged.merge(raw), nil
}

// parseFile decodes file strictly and also returns its node tree, which
// carries the line and column of every key.
func parseFile(file string) (RawConfig, *yaml.Node, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", file, err)
	}
	return raw, &doc, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Best-effort; still use abs.
		return abs, nil
	}
	return real, nil
}

func expandInclude(baseFile string, include string) ([]string, error) {
	path, err := resolvePathRelativeToFile(baseFile, include)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	sort.Strings(files)
	return files, nil
}

func resolvePathRelativeToFile(baseFile string, include string) (string, error) {
	if include == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(include, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if include == "~" {
			include = home
		} else if strings.HasPrefix(include, "~/") {
			include = filepath.Join(home, include[2:])
		}
	}
	if filepath.IsAbs(include) {
		return include, nil
	}
	return filepath.Join(filepath.Dir(baseFile), include), nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// mappingRoot returns the top-level mapping of a parsed document, or nil.
func mappingRoot(doc *yaml.Node) *yaml.Node {
	if doc == nil {
		return nil
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

func nodeSource(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}

// collectSources maps every dotted key path in doc to the position of its
// value. Sequences are recorded as a whole.
func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	var walk func(node *yaml.Node, prefix string)
	walk = func(node *yaml.Node, prefix string) {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			path := key.Value
			if prefix != "" {
				path = prefix + "." + path
			}
			out[path] = nodeSource(file, val)
			if val.Kind == yaml.MappingNode {
				walk(val, path)
			}
		}
	}
	if root := mappingRoot(doc); root != nil {
		walk(root, "")
	}
	return out
}

// collectIncludeRefs reads the top-level include key, a single path or a list.
func collectIncludeRefs(doc *yaml.Node, file string) []includeRef {
	root := mappingRoot(doc)
	if root == nil {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			return []includeRef{{Value: val.Value, Source: nodeSource(file, val)}}
		case yaml.SequenceNode:
			refs := make([]includeRef, 0, len(val.Content))
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode {
					refs = append(refs, includeRef{Value: item.Value, Source: nodeSource(file, item)})
				}
			}
			return refs
		}
		return nil
	}
	return nil
}

func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr == nil {
		return err
	}
	if verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
