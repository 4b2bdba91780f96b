package runtime

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"ecp/internal/ast"
	"ecp/internal/span"
)

// moduleExt is the file extension of ECP source modules.
const moduleExt = ".ecp"

func (i *Interpreter) execImport(s *ast.Import) error {
	loc, err := i.evalExpr(s.Location)
	if err != nil {
		return err
	}
	name, ok := loc.(StringVal)
	if !ok {
		return i.errorf(CodeType, s.Location.GetSpan(), "IMPORT location must be a String, got '%s'", loc.TypeName())
	}
	alias := s.Alias
	if alias == "" {
		alias = strings.TrimSuffix(path.Base(filepath.ToSlash(string(name))), moduleExt)
	}
	mod, err := i.importModule(string(name), alias, s.Span)
	if err != nil {
		return err
	}
	return i.bind(alias, mod, s)
}

// importModule resolves name against the importing directory, the search
// path, the embedded standard library and finally the native extensions.
// Source modules are executed on every import.
func (i *Interpreter) importModule(name, alias string, s span.Span) (Value, error) {
	file := strings.TrimSuffix(name, moduleExt) + moduleExt

	var searched []string
	for _, dir := range i.searchDirs() {
		candidate := file
		if !filepath.IsAbs(file) {
			candidate = filepath.Join(dir, file)
		}
		searched = append(searched, candidate)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			return nil, i.importFailed(name, s, err)
		}
		key := candidate
		if abs, err := filepath.Abs(candidate); err == nil {
			key = abs
		}
		return i.runModule(key, filepath.Dir(candidate), candidate, string(data), alias, s)
	}

	if i.stdlib != nil {
		stdName := path.Clean(filepath.ToSlash(file))
		if fs.ValidPath(stdName) {
			searched = append(searched, "<stdlib>/"+stdName)
			data, err := fs.ReadFile(i.stdlib, stdName)
			if err == nil {
				return i.runModule("stdlib:"+stdName, "", "<stdlib>/"+stdName, string(data), alias, s)
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, i.importFailed(name, s, err)
			}
		}
	}

	mod, found, err := i.loadExtension(name)
	if err != nil {
		return nil, i.importFailed(name, s, err)
	}
	if found {
		return mod, nil
	}

	nf := &ModuleNotFoundError{
		RuntimeError: *i.errorf(CodeModuleMissing, s, "module '%s' not found", name),
		Name:         name,
		Searched:     searched,
	}
	nf.Hint = suggest(name, i.availableModules())
	return nil, nf
}

// searchDirs returns the directories searched for source modules, importing
// directory first.
func (i *Interpreter) searchDirs() []string {
	dir := i.dir
	if dir == "" {
		dir = "."
	}
	return append([]string{dir}, i.search...)
}

// runModule executes module source in a nested interpreter that shares this
// interpreter's streams, search path and extensions.
func (i *Interpreter) runModule(key, dir, display, source, alias string, s span.Span) (Value, error) {
	if slices.Contains(i.importing, key) {
		chain := append(slices.Clone(i.importing), key)
		return nil, i.errorf(CodeCircular, s, "circular import: %s", strings.Join(chain, " -> "))
	}

	child := NewInterpreter(
		WithOutput(i.out),
		WithDir(dir),
		WithName(display),
		WithMaxDepth(i.maxDepth),
		WithStdlib(i.stdlib),
		WithSearchPath(i.search...),
	)
	child.in = i.in
	child.rng = i.rng
	child.exts = i.exts
	child.importing = append(slices.Clone(i.importing), key)
	child.root.name = "module:" + alias

	scope, err := child.RunSource(source)
	if err != nil {
		var re *RuntimeError
		if errors.As(err, &re) && re.Code == CodeCircular {
			return nil, err
		}
		return nil, i.importFailed(alias, s, err)
	}
	return &ModuleVal{Name: alias, Scope: scope}, nil
}

func (i *Interpreter) importFailed(name string, s span.Span, cause error) error {
	msg := cause.Error()
	if line, _, found := strings.Cut(msg, "\n"); found {
		msg = line
	}
	err := i.errorf(CodeImport, s, "error importing module '%s': %s", name, msg)
	err.Cause = cause
	return err
}

// availableModules lists module names for "did you mean" hints: the source
// files on the search path, the embedded library and the extensions.
func (i *Interpreter) availableModules() []string {
	var names []string
	add := func(file string) {
		if strings.HasSuffix(file, moduleExt) {
			names = append(names, strings.TrimSuffix(file, moduleExt))
		}
	}
	for _, dir := range i.searchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			add(e.Name())
		}
	}
	if i.stdlib != nil {
		if entries, err := fs.ReadDir(i.stdlib, "."); err == nil {
			for _, e := range entries {
				add(e.Name())
			}
		}
	}
	return append(names, i.extensionNames()...)
}
