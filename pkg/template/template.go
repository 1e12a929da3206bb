// Package template provides variable substitution for action detail strings.
//
// Templates embed {{path.to.value}} tokens that resolve against the trigger
// context. Rendering never fails: a token whose path does not resolve is left
// in place verbatim, so a broken template degrades visibly instead of
// silently deleting content. No escaping is performed; callers embed the
// result in their transport themselves.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coverly/automation/pkg/models"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)\s*\}\}`)

// Render substitutes every resolvable {{path}} token in input with its
// stringified context value. Unresolvable tokens stay untouched.
func Render(input string, ctx map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(input, func(token string) string {
		path := tokenPattern.FindStringSubmatch(token)[1]

		value, ok := models.ResolvePath(ctx, path)
		if !ok {
			return token
		}

		return models.Stringify(value)
	})
}

// ValidationResult reports authoring-time template validation. Errors holds
// one entry per unknown-variable occurrence.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate scans input for {{path}} tokens and requires every variable to
// start with one of the allowed prefixes (e.g. "lead.", "contactId"). It is
// an authoring-time check only; execution never hard-fails on an unknown
// variable.
func Validate(input string, allowedPrefixes []string) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, match := range tokenPattern.FindAllStringSubmatch(input, -1) {
		path := match[1]

		if !allowed(path, allowedPrefixes) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("unknown variable %q", path))
		}
	}

	return result
}

// Variables returns the distinct variable paths referenced by input, in
// order of first appearance.
func Variables(input string) []string {
	var paths []string

	seen := make(map[string]struct{})

	for _, match := range tokenPattern.FindAllStringSubmatch(input, -1) {
		path := match[1]
		if _, ok := seen[path]; ok {
			continue
		}

		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	return paths
}

func allowed(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasSuffix(prefix, ".") {
			if strings.HasPrefix(path, prefix) {
				return true
			}

			continue
		}

		if path == prefix {
			return true
		}
	}

	return false
}
