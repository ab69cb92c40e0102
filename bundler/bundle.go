package bundler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eco-lang/eco/ast"
	"github.com/eco-lang/eco/lexer"
	"github.com/eco-lang/eco/parser"
	"github.com/maruel/natural"
)

// context is spec.md §4.5's BundlerContext: per-module bundling state,
// pushed before a module's statements are walked and popped after.
type context struct {
	currentDir       string
	namedExports     map[string]string // exported name -> local alias
	spreadNamespaces []string          // local vars spread into module.exports, for `export * from`
	defaultExport    string            // rendered source of the default export value, "" if none
	hasDefaultExport bool
	hasImports       bool
}

// Bundler walks an eco module graph per spec.md §4.5: not an optimizer,
// just cycle-safe canonical caching and export aggregation wrapped around
// string assembly of the emitted script.
type Bundler struct {
	resolver Resolver
	order    []string          // canonical names in first-discovery (placeholder-insertion) order
	bodies   map[string]string // canonical name -> rendered module body, "" while still a placeholder
}

// New creates a Bundler that resolves imports through resolver.
func New(resolver Resolver) *Bundler {
	return &Bundler{resolver: resolver, bodies: map[string]string{}}
}

// Bundle resolves entryName from entryDir, walks its import graph, and
// emits the single-script skeleton from spec.md §4.5/§6.
func (b *Bundler) Bundle(entryDir, entryName string) (string, error) {
	canonical, currentDir, err := b.resolver.ResolveFilename(entryDir, entryName)
	if err != nil {
		return "", err
	}
	if _, err := b.bundleModule(canonical, currentDir); err != nil {
		return "", err
	}
	return b.emit(canonical), nil
}

// ListModules returns the canonical names bundled so far, natural-sorted —
// the backing implementation for `eco bundle --list-modules`.
func (b *Bundler) ListModules() []string {
	names := append([]string(nil), b.order...)
	sort.Slice(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
	return names
}

// bundleModule implements spec.md §4.5 step 2: canonicalise (done by the
// caller), short-circuit if already emitted (including a placeholder, which
// breaks cycles), else parse and render the module body.
func (b *Bundler) bundleModule(canonical, currentDir string) (string, error) {
	if _, ok := b.bodies[canonical]; ok {
		return canonical, nil
	}
	b.bodies[canonical] = "" // placeholder inserted before recursion, per spec.md §4.5
	b.order = append(b.order, canonical)

	src, err := b.resolver.ResolveImport(canonical)
	if err != nil {
		return "", err
	}
	p := parser.New(lexer.New(string(src)))
	prog, err := p.ParseProgram()
	if err != nil {
		return "", fmt.Errorf("bundler: parsing %q: %w", canonical, err)
	}

	ctx := &context{currentDir: currentDir, namedExports: map[string]string{}}
	var body strings.Builder
	body.WriteString("const __eco_require__ = require;\n")
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.Import:
			if err := b.emitImport(&body, ctx, s); err != nil {
				return "", err
			}
		case *ast.Export:
			if err := b.emitExport(&body, ctx, s); err != nil {
				return "", err
			}
		default:
			text, err := toSource(stmt)
			if err != nil {
				return "", err
			}
			body.WriteString(text)
			body.WriteString("\n")
		}
	}

	if ctx.hasDefaultExport {
		fmt.Fprintf(&body, "module.exports = %s;\n", ctx.defaultExport)
	} else if len(ctx.namedExports) > 0 || len(ctx.spreadNamespaces) > 0 {
		var parts []string
		for _, ns := range ctx.spreadNamespaces {
			parts = append(parts, "..."+ns)
		}
		names := make([]string, 0, len(ctx.namedExports))
		for name := range ctx.namedExports {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			alias := ctx.namedExports[name]
			if alias == name {
				parts = append(parts, name)
			} else {
				parts = append(parts, fmt.Sprintf("%s: %s", name, alias))
			}
		}
		fmt.Fprintf(&body, "module.exports = { %s };\n", strings.Join(parts, ", "))
	}

	b.bodies[canonical] = body.String()
	return canonical, nil
}

// emitImport rewrites every import form to `const … = __eco_require__('canonical');`
// per spec.md §6, recursively bundling the target module first.
func (b *Bundler) emitImport(out *strings.Builder, ctx *context, imp *ast.Import) error {
	depCanonical, depDir, err := b.resolver.ResolveFilename(ctx.currentDir, imp.FromFile)
	if err != nil {
		return err
	}
	if _, err := b.bundleModule(depCanonical, depDir); err != nil {
		return err
	}
	ctx.hasImports = true
	requireExpr := fmt.Sprintf("__eco_require__(%s)", quote(depCanonical))

	switch {
	case imp.DefaultName != "":
		fmt.Fprintf(out, "const %s = %s;\n", imp.DefaultName, requireExpr)
	case imp.NamespaceName != "":
		fmt.Fprintf(out, "const %s = %s;\n", imp.NamespaceName, requireExpr)
	case len(imp.Objects) > 0:
		tmp := fmt.Sprintf("__eco_import_%s__", sanitize(depCanonical))
		fmt.Fprintf(out, "const %s = %s;\n", tmp, requireExpr)
		for _, o := range imp.Objects {
			if o.Alias != "" && o.Alias != o.Name {
				fmt.Fprintf(out, "const %s = %s.%s;\n", o.Alias, tmp, o.Name)
			} else {
				fmt.Fprintf(out, "const %s = %s.%s;\n", o.Name, tmp, o.Name)
			}
		}
	default:
		fmt.Fprintf(out, "%s;\n", requireExpr)
	}
	return nil
}

// emitExport implements the four export forms from spec.md §4.2, updating
// ctx's aggregation state; the two from-file forms also trigger recursive
// bundling of the re-exported module.
func (b *Bundler) emitExport(out *strings.Builder, ctx *context, exp *ast.Export) error {
	switch {
	case exp.DefaultValue != nil:
		text, err := toSource(exp.DefaultValue)
		if err != nil {
			return err
		}
		ctx.defaultExport = text
		ctx.hasDefaultExport = true
		return nil

	case exp.VarDeclStmt != nil:
		text, err := toSourceVarDecl(exp.VarDeclStmt)
		if err != nil {
			return err
		}
		out.WriteString(text)
		out.WriteString("\n")
		collectExportedNames(exp.VarDeclStmt.Variable, ctx.namedExports)
		return nil

	case exp.FromFile != "":
		depCanonical, depDir, err := b.resolver.ResolveFilename(ctx.currentDir, exp.FromFile)
		if err != nil {
			return err
		}
		if _, err := b.bundleModule(depCanonical, depDir); err != nil {
			return err
		}
		tmp := fmt.Sprintf("__eco_reexport_%s__", sanitize(depCanonical))
		fmt.Fprintf(out, "const %s = __eco_require__(%s);\n", tmp, quote(depCanonical))
		if exp.FromAll {
			// `export * from '...'` forwards the dependency's whole exports
			// object by spreading it into this module's own; the bundler
			// has no static export-name listing once a dependency is
			// already rendered, so spreading is the faithful equivalent.
			ctx.spreadNamespaces = append(ctx.spreadNamespaces, tmp)
			return nil
		}
		for _, o := range exp.FromNamed {
			localAlias := o.Alias
			if localAlias == "" {
				localAlias = o.Name
			}
			if o.Name == "default" {
				ctx.namedExports[localAlias] = fmt.Sprintf("%s.default", tmp)
				continue
			}
			ctx.namedExports[localAlias] = fmt.Sprintf("%s.%s", tmp, o.Name)
		}
		return nil
	}
	return fmt.Errorf("bundler: export statement with no recognised form")
}

func collectExportedNames(v ast.Variable, out map[string]string) {
	switch v.Kind {
	case ast.Identifier:
		out[v.Name] = v.Name
	case ast.DestructureArray, ast.DestructureObject:
		for _, el := range v.Elements {
			if el.Name != "" {
				out[el.Name] = el.Name
			}
		}
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// emit assembles the final skeleton from spec.md §4.5 step 3, substituting
// the entry canonical name and each module's rendered body in insertion
// order.
func (b *Bundler) emit(entryCanonical string) string {
	var modules strings.Builder
	for i, name := range b.order {
		if i > 0 {
			modules.WriteString(", ")
		}
		fmt.Fprintf(&modules, "%s: (module, require) => {\n%s}", quote(name), b.bodies[name])
	}
	return fmt.Sprintf(
		"((modules) => { cached = {}; require = id => cached[id] ?? (cached[id]={exports:{}}, modules[id](cached[id], require), cached[id]).exports; return require(%s); })({ %s })",
		quote(entryCanonical), modules.String(),
	)
}
