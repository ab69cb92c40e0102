package bundler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver implements spec.md §4.5/§6's pair of resolver callbacks. Both
// may fail; neither actually suspends in this single-threaded Go port (the
// spec's "may suspend" describes a cooperative-coroutine host this
// implementation doesn't need — see spec.md §5).
type Resolver interface {
	// ResolveFilename turns an import specifier seen from currentDir into
	// a canonical module name and the directory further imports from that
	// module should resolve relative to.
	ResolveFilename(currentDir, name string) (canonicalName, newCurrentDir string, err error)
	// ResolveImport returns canonicalName's source text.
	ResolveImport(canonicalName string) ([]byte, error)
}

// FileResolver is the default filesystem resolver: relative-path imports
// resolve against currentDir; bare specifiers are tried against each of
// Config.Roots in order; Config.Aliases rewrites a specifier before either
// of those lookups.
type FileResolver struct {
	Roots   []string
	Aliases map[string]string
}

// NewFileResolver builds a FileResolver from a bundler config, tolerating
// a nil config (no roots, no aliases).
func NewFileResolver(cfg *Config) *FileResolver {
	fr := &FileResolver{}
	if cfg != nil {
		fr.Roots = cfg.Roots
		fr.Aliases = cfg.Aliases
	}
	return fr
}

func (fr *FileResolver) rewrite(name string) string {
	if alias, ok := fr.Aliases[name]; ok {
		return alias
	}
	return name
}

func (fr *FileResolver) ResolveFilename(currentDir, name string) (string, string, error) {
	name = fr.rewrite(name)
	candidates := fr.candidatePaths(currentDir, name)
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", "", err
			}
			return abs, filepath.Dir(abs), nil
		}
	}
	return "", "", fmt.Errorf("bundler: cannot resolve %q from %q", name, currentDir)
}

func (fr *FileResolver) candidatePaths(currentDir, name string) []string {
	var bases []string
	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") || filepath.IsAbs(name) {
		bases = append(bases, filepath.Join(currentDir, name))
	} else {
		for _, root := range fr.Roots {
			bases = append(bases, filepath.Join(root, name))
		}
		bases = append(bases, filepath.Join(currentDir, name))
	}
	var out []string
	for _, base := range bases {
		if filepath.Ext(base) != "" {
			out = append(out, base)
			continue
		}
		out = append(out, base+".eco", filepath.Join(base, "index.eco"))
	}
	return out
}

func (fr *FileResolver) ResolveImport(canonicalName string) ([]byte, error) {
	return os.ReadFile(canonicalName)
}

// StubResolver is an in-memory resolver for tests and `eco bundle --stub`:
// name → source, with import specifiers treated as already-canonical keys
// into the map.
type StubResolver struct {
	Sources map[string]string
}

func (sr *StubResolver) ResolveFilename(currentDir, name string) (string, string, error) {
	canonical := strings.TrimPrefix(strings.TrimPrefix(name, "./"), "../")
	if _, ok := sr.Sources[canonical]; !ok {
		return "", "", fmt.Errorf("bundler: stub resolver has no module %q", canonical)
	}
	return canonical, canonical, nil
}

func (sr *StubResolver) ResolveImport(canonicalName string) ([]byte, error) {
	src, ok := sr.Sources[canonicalName]
	if !ok {
		return nil, fmt.Errorf("bundler: stub resolver has no module %q", canonicalName)
	}
	return []byte(src), nil
}
