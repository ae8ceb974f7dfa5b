// # internal/engine/parser/types.go
package parser

import (
	"encoding/json"
	"strings"
)

// WildcardItems marks an import with no named-imports clause.
const WildcardItems = "*"

// Location is a 1-based line/column position. Columns count bytes.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type ImportRecord struct {
	Specifier     string `json:"specifier"`
	ImportedItems string `json:"imported_items"`
	ResolvedPath  string `json:"resolved_path,omitempty"`
}

// Items splits a named-imports clause into its tokens. Wildcard imports have none.
func (r ImportRecord) Items() []string {
	return ImportedItemTokens(r.ImportedItems)
}

type ExportRecord struct {
	Name        string `json:"name"`
	Declaration string `json:"declaration"`
	// Position of the exported name token; nil when the analyzer could not pin it.
	Position   *Location       `json:"position,omitempty"`
	References ReferenceGroups `json:"references"`
}

type FunctionRecord struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

type ClassRecord struct {
	Name    string           `json:"name"`
	Members []FunctionRecord `json:"members"`
}

// Analysis is everything extracted from a single source file, in document order.
type Analysis struct {
	FilePath  string            `json:"file_path"`
	Language  string            `json:"language"`
	Imports   []*ImportRecord   `json:"imports"`
	Exports   []*ExportRecord   `json:"exports"`
	Classes   []*ClassRecord    `json:"classes"`
	Functions []*FunctionRecord `json:"functions"`
}

// ModuleResolver maps a module specifier to a file on disk.
type ModuleResolver interface {
	Resolve(specifier, baseDir string) (string, bool)
}

type ReferenceGroup struct {
	Path      string     `json:"path"`
	Locations []Location `json:"locations"`
}

// ReferenceGroups keeps reference locations grouped by file, in the order
// files were first seen.
type ReferenceGroups struct {
	groups []ReferenceGroup
	index  map[string]int
}

func GroupReferences(locs []Location) ReferenceGroups {
	var g ReferenceGroups
	for _, loc := range locs {
		g.Add(loc)
	}
	return g
}

func (g *ReferenceGroups) Add(loc Location) {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	i, ok := g.index[loc.File]
	if !ok {
		i = len(g.groups)
		g.index[loc.File] = i
		g.groups = append(g.groups, ReferenceGroup{Path: loc.File})
	}
	g.groups[i].Locations = append(g.groups[i].Locations, loc)
}

func (g ReferenceGroups) Groups() []ReferenceGroup {
	return g.groups
}

func (g ReferenceGroups) Len() int {
	return len(g.groups)
}

func (g ReferenceGroups) Get(path string) ([]Location, bool) {
	i, ok := g.index[path]
	if !ok {
		return nil, false
	}
	return g.groups[i].Locations, true
}

func (g ReferenceGroups) MarshalJSON() ([]byte, error) {
	if g.groups == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(g.groups)
}

// ImportedItemTokens strips braces and spaces from a named-imports clause
// and splits it on commas.
func ImportedItemTokens(items string) []string {
	if items == "" || items == WildcardItems {
		return nil
	}
	cleaned := strings.NewReplacer("{", "", "}", "", " ", "").Replace(items)
	return splitAndTrim(cleaned, ",")
}
