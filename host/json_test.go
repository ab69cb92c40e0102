package host

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eco-lang/eco/lexer"
	"github.com/eco-lang/eco/parser"
	"github.com/eco-lang/eco/runtime"
)

func TestLoadGlobalsSeedsBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "globals.json")
	if err := os.WriteFile(path, []byte(`{"name": "ada", "count": 3, "tags": ["a", "b"], "nested": {"ok": true}}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	global := runtime.NewObject()
	if err := LoadGlobals(path, global); err != nil {
		t.Fatalf("LoadGlobals: %v", err)
	}

	if got := global.Get("name"); got.String() != "ada" {
		t.Fatalf("name: want ada, got %v", got)
	}
	if got, ok := global.Get("count").(runtime.Number); !ok || float64(got) != 3 {
		t.Fatalf("count: want Number(3), got %#v", global.Get("count"))
	}
	tags, ok := global.Get("tags").(*runtime.Array)
	if !ok || len(tags.Elements) != 2 {
		t.Fatalf("tags: want 2-element array, got %#v", global.Get("tags"))
	}
	nested, ok := global.Get("nested").(*runtime.Object)
	if !ok || nested.Get("ok") != runtime.Bool(true) {
		t.Fatalf("nested.ok: want true, got %#v", global.Get("nested"))
	}
}

func TestLoadGlobalsRejectsNonObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "globals.json")
	if err := os.WriteFile(path, []byte(`[1,2,3]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := LoadGlobals(path, runtime.NewObject()); err == nil {
		t.Fatal("want error for non-object globals file")
	}
}

func TestLoadGlobalsFalsyValueFallsBackToUndefined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "globals.json")
	if err := os.WriteFile(path, []byte(`{"flag": false}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	global := runtime.NewObject()
	if err := LoadGlobals(path, global); err != nil {
		t.Fatalf("LoadGlobals: %v", err)
	}
	if got, ok := global.Get("flag").(runtime.Bool); !ok || bool(got) != false {
		t.Fatalf("flag: want Bool(false) as loaded, got %#v", global.Get("flag"))
	}

	p := parser.New(lexer.New(`return typeof flag;`))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	rt := runtime.New(global)
	v, err := runtime.Run(prog, rt)
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if got, ok := v.(runtime.String); !ok || got != "undefined" {
		t.Fatalf("want typeof flag == \"undefined\" for a falsy global, got %#v", v)
	}
}

func TestToJSONRoundTripsObjectsAndArrays(t *testing.T) {
	obj := runtime.NewObject()
	obj.Set("name", runtime.String("ada"))
	obj.Set("scores", &runtime.Array{Elements: []runtime.Value{runtime.Number(1), runtime.Number(2)}})
	inner := runtime.NewObject()
	inner.Set("ok", runtime.Bool(true))
	obj.Set("nested", inner)

	out, err := ToJSON(obj)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	for _, want := range []string{`"name":"ada"`, `"scores":[1,2]`, `"nested":{"ok":true}`} {
		if !strings.Contains(out, want) {
			t.Fatalf("ToJSON output %q missing %q", out, want)
		}
	}
}

func TestToJSONPrettyIndents(t *testing.T) {
	obj := runtime.NewObject()
	obj.Set("a", runtime.Number(1))
	out, err := ToJSONPretty(obj, 2)
	if err != nil {
		t.Fatalf("ToJSONPretty: %v", err)
	}
	if !strings.Contains(out, "\n") {
		t.Fatalf("want multi-line pretty output, got %q", out)
	}
}

func TestToJSONScalarRoot(t *testing.T) {
	out, err := ToJSON(runtime.Number(42))
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if out != "42" {
		t.Fatalf("want \"42\", got %q", out)
	}
	out, err = ToJSON(runtime.String("hi"))
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if out != `"hi"` {
		t.Fatalf("want quoted string, got %q", out)
	}
}
