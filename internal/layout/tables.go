package layout

import (
	"regexp"
	"strings"
)

// renames maps legacy variable names to the names used by current implementations
var renames = map[string]string{
	"initialized":  "_initialized",
	"initializing": "_initializing",
	"_isPaused":    "_paused",
}

// typeEquivalents maps type names to their upgrade-safe counterparts
var typeEquivalents = map[string]string{
	"EnumerableSet.AddressSet":       "EnumerableSetUpgradeable.AddressSet",
	"EnumerableSet.Bytes32Set":       "EnumerableSetUpgradeable.Bytes32Set",
	"EnumerableSet.UintSet":          "EnumerableSetUpgradeable.UintSet",
	"EnumerableSet.Set":              "EnumerableSetUpgradeable.Set",
	"EnumerableMap.AddressToUintMap": "EnumerableMapUpgradeable.AddressToUintMap",
}

// astIDs matches the compilation-specific AST ids embedded in type identifiers,
// e.g. the 4015 in t_struct(AddressSet)4015_storage
var astIDs = regexp.MustCompile(`\)\d+`)

type tables struct {
	renames map[string]string
	types   *strings.Replacer
}

func newTables(extraRenames, extraTypes map[string]string) *tables {
	r := make(map[string]string, len(renames)+len(extraRenames))
	for k, v := range renames {
		r[k] = v
	}
	for k, v := range extraRenames {
		r[k] = v
	}

	pairs := make([]string, 0, 2*(len(typeEquivalents)+len(extraTypes)))
	for k, v := range typeEquivalents {
		pairs = append(pairs, k, v)
	}
	for k, v := range extraTypes {
		pairs = append(pairs, k, v)
	}
	return &tables{renames: r, types: strings.NewReplacer(pairs...)}
}

func (t *tables) label(l string) string {
	if renamed, ok := t.renames[l]; ok {
		return renamed
	}
	return l
}

func (t *tables) typ(l string) string {
	return t.types.Replace(astIDs.ReplaceAllString(l, ")"))
}
