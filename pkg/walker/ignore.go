package walker

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// scope holds the ignore rules contributed by a single directory's .ignore
// and .gitignore files, scoped to that directory's subtree. A chain of
// scopes (root-to-leaf) is threaded down the recursive walk so each
// directory inherits its ancestors' rules without any shared mutable state
// between concurrent goroutines — Walk builds a fresh copy of the chain
// for each directory that adds rules, never mutating the parent's slice.
type scope struct {
	// dir is this scope's directory, relative to the walk root ("." for
	// root). Rule patterns without a slash match basenames anywhere
	// under dir; patterns with a slash are anchored to dir.
	dir   string
	rules []rule
}

type rule struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool
	regex    *regexp.Regexp
}

// alwaysIgnoredDirs are excluded regardless of any ignore file: the
// repository's own metadata directory, and a colocated .git directory
// left over from the source being tracked by git too.
var alwaysIgnoredDirs = []string{".mtl", ".git"}

// DefaultIgnoreFileNames lists the ignore files read when Options.
// IgnoreFileNames is empty.
var DefaultIgnoreFileNames = []string{".ignore", ".gitignore"}

// loadScopeRules reads each named ignore file (in order, so a later file's
// line can override an earlier one within the same scope under
// last-match-wins) from absDir.
func loadScopeRules(absDir string, names []string) []rule {
	var rules []rule
	for _, name := range names {
		f, err := os.Open(filepath.Join(absDir, name))
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if r, ok := parseRuleLine(scanner.Text()); ok {
				rules = append(rules, r)
			}
		}
		f.Close()
	}
	return rules
}

func parseRuleLine(line string) (rule, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if strings.HasPrefix(line, "!") {
		r.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	r.hasSlash = strings.Contains(line, "/")
	r.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			r.regex = re
		}
	}
	return r, true
}

func (r rule) matches(relToScope string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	target := relToScope
	if !r.hasSlash {
		target = filepath.Base(relToScope)
	}
	if r.regex != nil {
		return r.regex.MatchString(target)
	}
	matched, _ := filepath.Match(r.pattern, target)
	return matched
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			if i+2 < len(pattern) && pattern[i+2] == '/' {
				b.WriteString("(?:.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		case strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)):
			b.WriteByte('\\')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteString("$")
	return b.String()
}

// isIgnored applies last-match-wins across the full chain, outer scope
// first: a rule in a deeper (more specific) scope naturally overrides one
// from an ancestor scope because it is evaluated later in iteration order.
func isIgnored(chain []scope, relPath string, isDir bool) bool {
	for _, d := range alwaysIgnoredDirs {
		if relPath == d || strings.HasPrefix(relPath, d+"/") {
			return true
		}
	}

	ignored := false
	for _, sc := range chain {
		relToScope := relPath
		if sc.dir != "" && sc.dir != "." {
			if !strings.HasPrefix(relPath, sc.dir+"/") {
				continue
			}
			relToScope = strings.TrimPrefix(relPath, sc.dir+"/")
		}
		for _, r := range sc.rules {
			if r.matches(relToScope, isDir) {
				ignored = !r.negated
			}
		}
	}
	return ignored
}
