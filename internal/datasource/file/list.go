// Package file enumerates and opens local input files.
package file

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file extensions scanned when none are configured.
var DefaultExtensions = []string{".c", ".h"}

// Matcher reports whether a path should be scanned, based on its extension.
// Comparison is exact (case-sensitive), with or without the leading dot in
// the configured list. An empty Matcher accepts every file.
type Matcher struct{ exts map[string]struct{} }

// NewMatcher builds a Matcher for the given extensions.
func NewMatcher(exts []string) Matcher {
	m := Matcher{exts: make(map[string]struct{}, len(exts))}
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m.exts[e] = struct{}{}
	}
	return m
}

// Match reports whether path has one of the configured extensions.
func (m Matcher) Match(path string) bool {
	if len(m.exts) == 0 {
		return true
	}
	_, ok := m.exts[filepath.Ext(path)]
	return ok
}

// Find walks root recursively and returns every regular file accepted by m, in
// lexical walk order.
//
// An inaccessible root is an error. Unreadable subdirectories below the root
// are skipped so that one bad directory does not fail the whole scan.
func Find(root string, m Matcher) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	var out []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if m.Match(p) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return out, nil
}

// ReadList reads a manifest of input paths, one per line, and returns those
// accepted by m.
//
// Lines that are empty or start with '#' (after trimming whitespace) are
// skipped. Relative paths are resolved against the manifest's directory. The
// order of lines is preserved.
func ReadList(path string, m Matcher) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := filepath.Dir(path)
	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if m.Match(line) {
			out = append(out, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
