package parser

import (
	"depgraph/internal/core/errors"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	paths map[string]string
	calls []string
	dirs  []string
}

func (f *fakeResolver) Resolve(specifier, baseDir string) (string, bool) {
	f.calls = append(f.calls, specifier)
	f.dirs = append(f.dirs, baseDir)
	p, ok := f.paths[specifier]
	return p, ok
}

func newTestAnalyzer(t *testing.T, r ModuleResolver) *Analyzer {
	t.Helper()
	loader, err := NewGrammarLoader()
	require.NoError(t, err)
	return NewAnalyzer(loader, r)
}

func functionNames(records []*FunctionRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

func exportNames(records []*ExportRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

func TestAnalyze_ImportsAndExports(t *testing.T) {
	resolver := &fakeResolver{paths: map[string]string{"./utils": "/src/utils.ts"}}
	a := newTestAnalyzer(t, resolver)

	code := `import { readFile } from 'fs';
import defaultThing from "./utils";
export function load() {}
`
	file := filepath.Join("/src", "index.ts")
	res, err := a.Analyze([]byte(code), file)
	require.NoError(t, err)

	assert.Equal(t, "typescript", res.Language)
	require.Len(t, res.Imports, 2)
	assert.Equal(t, "fs", res.Imports[0].Specifier)
	assert.Equal(t, "{ readFile }", res.Imports[0].ImportedItems)
	assert.Empty(t, res.Imports[0].ResolvedPath)
	assert.Equal(t, "./utils", res.Imports[1].Specifier)
	assert.Equal(t, WildcardItems, res.Imports[1].ImportedItems)
	assert.Equal(t, "/src/utils.ts", res.Imports[1].ResolvedPath)

	assert.Equal(t, []string{"fs", "./utils"}, resolver.calls)
	assert.Equal(t, []string{"/src", "/src"}, resolver.dirs)

	require.Len(t, res.Exports, 1)
	assert.Equal(t, "load", res.Exports[0].Name)
	assert.Equal(t, "export function load() {}", res.Exports[0].Declaration)
	require.NotNil(t, res.Exports[0].Position)
	assert.Equal(t, Location{File: file, Line: 3, Column: 17}, *res.Exports[0].Position)
	assert.Zero(t, res.Exports[0].References.Len())

	// The same declaration is also a function.
	assert.Equal(t, []string{"load"}, functionNames(res.Functions))
	assert.Empty(t, res.Classes)
}

func TestAnalyze_RequireCalls(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	code := "const utils = require('./utils');\n" +
		"const path = require(`path`);\n" +
		"const dynamic = require(name);\n" +
		"const lazy = import('./lazy');\n"
	res, err := a.Analyze([]byte(code), "/src/app.js")
	require.NoError(t, err)

	require.Len(t, res.Imports, 2)
	assert.Equal(t, "./utils", res.Imports[0].Specifier)
	assert.Equal(t, WildcardItems, res.Imports[0].ImportedItems)
	assert.Equal(t, "path", res.Imports[1].Specifier)
	assert.Equal(t, "javascript", res.Language)
}

func TestAnalyze_ExportNames(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	code := `export const a = 1, b = 2;
export default foo;
export { x, y };
export * from './all';
module.exports.bar = 1;
exports.baz = 2;
module.exports = Widget;
module.exports = { other: 1 };
`
	res, err := a.Analyze([]byte(code), "/src/mod.js")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "foo", "bar", "baz", "Widget"}, exportNames(res.Exports))
	assert.Equal(t, Location{File: "/src/mod.js", Line: 1, Column: 14}, *res.Exports[0].Position)
	assert.Equal(t, Location{File: "/src/mod.js", Line: 1, Column: 21}, *res.Exports[1].Position)
	assert.Equal(t, "export const a = 1, b = 2;", res.Exports[1].Declaration)
	assert.Equal(t, Location{File: "/src/mod.js", Line: 5, Column: 16}, *res.Exports[3].Position)
	assert.Equal(t, "module.exports.bar = 1;", res.Exports[3].Declaration)
	assert.Equal(t, Location{File: "/src/mod.js", Line: 7, Column: 18}, *res.Exports[5].Position)

	// export ... from is a re-export, not an import.
	assert.Empty(t, res.Imports)
}

func TestAnalyze_DestructuredExports(t *testing.T) {
	code := `export const { c, d: e, ...rest } = obj;
export let [f, [g], h = 1] = arr;
`
	for _, file := range []string{"/src/destruct.js", "/src/destruct.ts"} {
		t.Run(filepath.Ext(file), func(t *testing.T) {
			a := newTestAnalyzer(t, nil)
			res, err := a.Analyze([]byte(code), file)
			require.NoError(t, err)

			assert.Equal(t, []string{"c", "e", "rest", "f", "g", "h"}, exportNames(res.Exports))
			assert.Equal(t, Location{File: file, Line: 1, Column: 16}, *res.Exports[0].Position)
			assert.Equal(t, Location{File: file, Line: 1, Column: 22}, *res.Exports[1].Position)
			assert.Equal(t, "export let [f, [g], h = 1] = arr;", res.Exports[4].Declaration)
		})
	}
}

func TestAnalyze_TypeScriptDeclarations(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	code := `import fs = require('fs');
import type { Props } from './types';
export interface Shape {}
export type Id = string;
export enum Color { Red }
export abstract class Base {
  abstract area(): number;
  describe(): string { return 'base'; }
}
`
	res, err := a.Analyze([]byte(code), "/src/shapes.ts")
	require.NoError(t, err)

	require.Len(t, res.Imports, 2)
	assert.Equal(t, "fs", res.Imports[0].Specifier)
	assert.Equal(t, WildcardItems, res.Imports[0].ImportedItems)
	assert.Equal(t, "./types", res.Imports[1].Specifier)
	assert.Equal(t, "{ Props }", res.Imports[1].ImportedItems)

	assert.Equal(t, []string{"Shape", "Id", "Color", "Base"}, exportNames(res.Exports))

	require.Len(t, res.Classes, 1)
	assert.Equal(t, "Base", res.Classes[0].Name)
	require.Len(t, res.Classes[0].Members, 2)
	assert.Equal(t, "area", res.Classes[0].Members[0].Name)
	assert.Empty(t, res.Classes[0].Members[0].Body)
	assert.Equal(t, "describe", res.Classes[0].Members[1].Name)
	assert.Equal(t, "{ return 'base'; }", res.Classes[0].Members[1].Body)
}

func TestAnalyze_ClassMembers(t *testing.T) {
	code := `class Service {
  constructor() {}
  get name() { return 'svc'; }
  handler = () => { return 1; };
  count = 0;
  run() {}
}
`
	for _, file := range []string{"/src/service.js", "/src/service.ts", "/src/service.tsx"} {
		t.Run(filepath.Ext(file), func(t *testing.T) {
			a := newTestAnalyzer(t, nil)
			res, err := a.Analyze([]byte(code), file)
			require.NoError(t, err)

			require.Len(t, res.Classes, 1)
			class := res.Classes[0]
			assert.Equal(t, "Service", class.Name)
			assert.Equal(t, []string{"constructor", "name", "handler", "run"}, functionNames(memberPointers(class.Members)))
			assert.Equal(t, "{ return 1; }", class.Members[2].Body)
			assert.Empty(t, res.Functions)
		})
	}
}

func TestAnalyze_AnonymousDefaultClass(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	code := `export default class {
  render() { return 1; }
}
const Local = class Named {};
`
	res, err := a.Analyze([]byte(code), "/src/anon.js")
	require.NoError(t, err)

	require.Len(t, res.Classes, 1)
	assert.Empty(t, res.Classes[0].Name)
	assert.Equal(t, []string{"render"}, functionNames(memberPointers(res.Classes[0].Members)))
	assert.Empty(t, res.Exports)
}

func TestAnalyze_OverloadSignatures(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	code := `class Parser {
  parse(input: string): string;
  parse(input: number): string;
  parse(input: any): string { return String(input); }
}
`
	res, err := a.Analyze([]byte(code), "/src/overload.ts")
	require.NoError(t, err)

	require.Len(t, res.Classes, 1)
	assert.Equal(t, []string{"parse", "parse", "parse"}, functionNames(memberPointers(res.Classes[0].Members)))
	assert.Equal(t, "{ return String(input); }", res.Classes[0].Members[2].Body)
}

func memberPointers(members []FunctionRecord) []*FunctionRecord {
	out := make([]*FunctionRecord, 0, len(members))
	for i := range members {
		out = append(out, &members[i])
	}
	return out
}

func TestAnalyze_Functions(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	code := `function a() { return 1; }
const b = () => 2;
const c = function d() {};
function* gen() {}
[1].map(function () {});
let value = 3;
`
	res, err := a.Analyze([]byte(code), "/src/fns.mjs")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "gen"}, functionNames(res.Functions))
	assert.Equal(t, "{ return 1; }", res.Functions[0].Body)
	assert.Equal(t, "2", res.Functions[1].Body)
}

func TestAnalyze_UnsupportedFileType(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	res, err := a.Analyze([]byte("print('hi')"), "/src/script.py")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsUnsupported(err))
}

func TestAnalyze_MissingGrammarCarriesLanguage(t *testing.T) {
	a := newTestAnalyzer(t, nil)
	delete(a.pools, "tsx")

	_, err := a.Analyze([]byte("export const x = <div />;"), "/src/view.tsx")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInternal))

	var de *errors.DomainError
	require.True(t, stderrors.As(err, &de))
	assert.Equal(t, "tsx", de.Context[errors.CtxLanguage])
	assert.Equal(t, "/src/view.tsx", de.Context[errors.CtxPath])
}

func TestAnalyze_ToleratesSyntaxErrors(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	code := `import { a } from './a';
export function broken( {
class Half {
`
	res, err := a.Analyze([]byte(code), "/src/broken.ts")
	require.NoError(t, err)
	require.NotEmpty(t, res.Imports)
	assert.Equal(t, "./a", res.Imports[0].Specifier)
}

func TestAnalyze_EmptySource(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	res, err := a.Analyze(nil, "/src/empty.ts")
	require.NoError(t, err)
	assert.Empty(t, res.Imports)
	assert.Empty(t, res.Exports)
	assert.Empty(t, res.Classes)
	assert.Empty(t, res.Functions)
}

func TestAnalyzer_DetectLanguage(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	tests := map[string]string{
		"a.js":     "javascript",
		"a.CJS":    "javascript",
		"a.jsx":    "jsx",
		"a.ts":     "typescript",
		"a.mts":    "typescript",
		"a.tsx":    "tsx",
		"a.d.ts":   "typescript",
		"a.vue":    "",
		"Makefile": "",
	}
	for path, want := range tests {
		assert.Equal(t, want, a.DetectLanguage(path), path)
	}
	assert.Contains(t, a.SupportedExtensions(), ".tsx")
}
