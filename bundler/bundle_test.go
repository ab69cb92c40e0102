package bundler

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	_ = v
}

func TestBundleEndToEndScenario(t *testing.T) {
	// spec.md §8 scenario 7: a.js imports b.js's default export and adds 1.
	resolver := &StubResolver{Sources: map[string]string{
		"a.eco": `import x from './b.eco'; export default x+1;`,
		"b.eco": `export default 41;`,
	}}
	b := New(resolver)
	out, err := b.Bundle(".", "a.eco")
	if err != nil {
		t.Fatalf("unexpected bundle error: %v", err)
	}
	if !strings.Contains(out, "__eco_require__('b.eco')") {
		t.Fatalf("expected a require of b.eco, got:\n%s", out)
	}
	if !strings.Contains(out, "module.exports = x + 1;") {
		t.Fatalf("expected a.eco's default export to reference x, got:\n%s", out)
	}
	if !strings.Contains(out, "module.exports = 41;") {
		t.Fatalf("expected b.eco's default export of 41, got:\n%s", out)
	}
}

func TestBundleCyclicGraphEmitsEachModuleOnce(t *testing.T) {
	resolver := &StubResolver{Sources: map[string]string{
		"a.eco": `import b from './b.eco'; export default 1;`,
		"b.eco": `import a from './a.eco'; export default 2;`,
	}}
	b := New(resolver)
	_, err := b.Bundle(".", "a.eco")
	if err != nil {
		t.Fatalf("unexpected bundle error (cycle should terminate): %v", err)
	}
	count := 0
	for _, name := range b.order {
		if name == "a.eco" || name == "b.eco" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("want each of a.eco/b.eco emitted exactly once, got order = %v", b.order)
	}
}

func TestBundleNamedExportsAndImports(t *testing.T) {
	resolver := &StubResolver{Sources: map[string]string{
		"a.eco": `import { greet as g } from './b.eco'; export const out = g('world');`,
		"b.eco": `export const greet = name => 'hi ' + name;`,
	}}
	b := New(resolver)
	out, err := b.Bundle(".", "a.eco")
	if err != nil {
		t.Fatalf("unexpected bundle error: %v", err)
	}
	if !strings.Contains(out, "const g = __eco_import_b_eco__.greet;") {
		t.Fatalf("expected named import alias rebinding, got:\n%s", out)
	}
	if !strings.Contains(out, "module.exports = { out };") {
		t.Fatalf("expected named export aggregation, got:\n%s", out)
	}
}

func TestListModulesIsNaturallySorted(t *testing.T) {
	resolver := &StubResolver{Sources: map[string]string{
		"a.eco":   `import x1 from './x1.eco'; import x2 from './x2.eco'; import x10 from './x10.eco'; export default 0;`,
		"x1.eco":  `export default 1;`,
		"x2.eco":  `export default 2;`,
		"x10.eco": `export default 10;`,
	}}
	b := New(resolver)
	if _, err := b.Bundle(".", "a.eco"); err != nil {
		t.Fatalf("unexpected bundle error: %v", err)
	}
	modules := b.ListModules()
	wantBeforeX10 := false
	idxX2, idxX10 := -1, -1
	for i, m := range modules {
		if m == "x2.eco" {
			idxX2 = i
		}
		if m == "x10.eco" {
			idxX10 = i
		}
	}
	wantBeforeX10 = idxX2 < idxX10
	if !wantBeforeX10 {
		t.Fatalf("want x2.eco before x10.eco under natural sort, got %v", modules)
	}
}

func TestBundleSnapshotsEmittedScript(t *testing.T) {
	resolver := &StubResolver{Sources: map[string]string{
		"a.eco": `import x from './b.eco'; export default x+1;`,
		"b.eco": `export default 41;`,
	}}
	b := New(resolver)
	out, err := b.Bundle(".", "a.eco")
	if err != nil {
		t.Fatalf("unexpected bundle error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}
