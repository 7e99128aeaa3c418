package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// layerRule lists what a service layer may import. Local entries are
// relative to the service root; external entries are absolute prefixes.
type layerRule struct {
	local          []string
	external       []string
	anyThirdParty  bool
	forbiddenLocal []string
}

var layerRules = map[string]layerRule{
	"domain": {
		local: []string{"domain"},
	},
	"ports": {
		local:    []string{"domain"},
		external: []string{"kdom/contracts"},
	},
	"application": {
		local:    []string{"application", "domain", "ports"},
		external: []string{"kdom/contracts", "golang.org/x/sync"},
	},
	"transport": {
		local: []string{"transport"},
	},
	"adapters": {
		local:          []string{"adapters", "application", "domain", "ports", "transport"},
		external:       []string{"kdom/contracts"},
		anyThirdParty:  true,
		forbiddenLocal: []string{"application/workers"},
	},
}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		return violations[i].Line < violations[j].Line
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(path), "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}

		servicePrefix := fmt.Sprintf("kdom/contexts/%s/%s", parts[1], parts[2])
		layer := parts[3]
		if len(parts) == 4 {
			// Files at the service root are the composition layer.
			layer = ""
		}
		violations = append(violations, validateFile(path, layer, servicePrefix)...)
		return nil
	})

	return violations
}

func validateFile(path string, layer string, servicePrefix string) []violation {
	normalized := filepath.ToSlash(path)
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalized, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		report := func(rule string) {
			violations = append(violations, violation{File: normalized, Line: line, Import: importPath, Rule: rule})
		}

		switch {
		case strings.HasPrefix(importPath, "kdom/contexts/") && !hasPrefix(importPath, servicePrefix):
			report("cross-service imports are forbidden")
			continue
		case strings.HasPrefix(importPath, "kdom/internal/") || strings.HasPrefix(importPath, "kdom/cmd/"):
			report("service code must not import runtime infrastructure")
			continue
		}

		rule, ok := layerRules[layer]
		if !ok || isStdlib(importPath) {
			continue
		}
		if rel, local := strings.CutPrefix(importPath, servicePrefix+"/"); local {
			if isAllowed(rel, rule.forbiddenLocal) {
				report(layer + " must not import " + rel)
			} else if !isAllowed(rel, rule.local) {
				report(layer + " import is outside the layer allowlist")
			}
			continue
		}
		if strings.HasPrefix(importPath, "kdom/") {
			if !isAllowed(importPath, rule.external) {
				report(layer + " import is outside the layer allowlist")
			}
			continue
		}
		if !rule.anyThirdParty && !isAllowed(importPath, rule.external) {
			report(layer + " must not import third-party packages")
		}
	}
	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if strings.HasPrefix(importPath, "kdom/") {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
