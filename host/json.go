// Package host supplies the external collaborators spec.md §6 leaves
// abstract: the `global` record's seed bindings, and a JSON rendering of a
// runtime value for the CLI's `--print-json` flag.
package host

import (
	"fmt"
	"os"

	"github.com/eco-lang/eco/runtime"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// LoadGlobals reads path as a JSON object and seeds dst (the runtime's
// global record) with one binding per top-level field, via valueFromGJSON.
func LoadGlobals(path string, dst *runtime.Object) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("host: reading globals %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("host: globals %s is not valid JSON", path)
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return fmt.Errorf("host: globals %s must be a JSON object", path)
	}
	var rangeErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		dst.Set(key.String(), valueFromGJSON(value))
		return true
	})
	return rangeErr
}

// valueFromGJSON converts a gjson.Result into a runtime.Value, recursing
// into arrays and objects.
func valueFromGJSON(r gjson.Result) runtime.Value {
	switch r.Type {
	case gjson.Null:
		return runtime.Null{}
	case gjson.False:
		return runtime.Bool(false)
	case gjson.True:
		return runtime.Bool(true)
	case gjson.Number:
		return runtime.Number(r.Num)
	case gjson.String:
		return runtime.String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			arr := &runtime.Array{}
			r.ForEach(func(_, elem gjson.Result) bool {
				arr.Elements = append(arr.Elements, valueFromGJSON(elem))
				return true
			})
			return arr
		}
		obj := runtime.NewObject()
		r.ForEach(func(key, elem gjson.Result) bool {
			obj.Set(key.String(), valueFromGJSON(elem))
			return true
		})
		return obj
	default:
		return runtime.Undefined{}
	}
}

// ToJSON renders v as a JSON document, built incrementally with sjson so
// object key order follows v's own insertion order rather than sjson's
// default alphabetic merge behavior.
func ToJSON(v runtime.Value) (string, error) {
	doc, err := appendJSON("", "", v)
	if err != nil {
		return "", err
	}
	if doc == "" {
		return "null", nil
	}
	return doc, nil
}

// ToJSONPretty renders v as indented JSON via tidwall/pretty.
func ToJSONPretty(v runtime.Value, indent int) (string, error) {
	doc, err := ToJSON(v)
	if err != nil {
		return "", err
	}
	opts := &pretty.Options{Indent: spaces(indent), SortKeys: false}
	return string(pretty.PrettyOptions([]byte(doc), opts)), nil
}

func spaces(n int) string {
	if n <= 0 {
		n = 2
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// appendJSON sets path within doc to v's JSON rendering, creating doc as a
// top-level value when path is "".
func appendJSON(doc, path string, v runtime.Value) (string, error) {
	switch val := v.(type) {
	case runtime.Undefined:
		return setRaw(doc, path, "null")
	case runtime.Null:
		return setRaw(doc, path, "null")
	case runtime.Bool:
		return setValue(doc, path, bool(val))
	case runtime.Number:
		return setValue(doc, path, float64(val))
	case runtime.String:
		return setValue(doc, path, string(val))
	case *runtime.Array:
		acc, err := setRaw(doc, path, "[]")
		if err != nil {
			return "", err
		}
		for i, elem := range val.Elements {
			elemPath := indexPath(path, i)
			acc, err = appendJSON(acc, elemPath, elem)
			if err != nil {
				return "", err
			}
		}
		return acc, nil
	case *runtime.Object:
		acc, err := setRaw(doc, path, "{}")
		if err != nil {
			return "", err
		}
		for _, key := range val.Keys() {
			acc, err = appendJSON(acc, fieldPath(path, key), val.Get(key))
			if err != nil {
				return "", err
			}
		}
		return acc, nil
	default:
		// Closures, HtmlElements, and host values have no JSON form.
		return setRaw(doc, path, "null")
	}
}

func setRaw(doc, path, raw string) (string, error) {
	if path == "" {
		return raw, nil
	}
	out, err := sjson.SetRaw(doc, path, raw)
	if err != nil {
		return "", fmt.Errorf("host: building JSON at %q: %w", path, err)
	}
	return out, nil
}

func setValue(doc, path string, v any) (string, error) {
	if path == "" {
		// sjson always writes into a document at a path; build a throwaway
		// wrapper object and pull the scalar back out by its raw text.
		raw, err := sjson.Set(`{}`, "x", v)
		if err != nil {
			return "", err
		}
		return gjson.Get(raw, "x").Raw, nil
	}
	out, err := sjson.Set(doc, path, v)
	if err != nil {
		return "", fmt.Errorf("host: building JSON at %q: %w", path, err)
	}
	return out, nil
}

func fieldPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func indexPath(base string, i int) string {
	if base == "" {
		return fmt.Sprintf("%d", i)
	}
	return fmt.Sprintf("%s.%d", base, i)
}
