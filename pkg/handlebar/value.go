package handlebar

import (
	"reflect"
	"sort"
	"strings"
)

// NewView adapts an arbitrary host value into a View. It understands nil,
// booleans, numbers, strings, slices and arrays, string-keyed maps, structs
// (exported fields, honoring `json` tags), pointers, compiled templates and
// values that already implement View. Anything else adapts as Null.
func NewView(value any) View {
	switch v := value.(type) {
	case nil:
		return nullView{}
	case View:
		return v
	case *Template:
		return templateView{v}
	case bool:
		return boolView(v)
	case string:
		return stringView(v)
	case float64:
		return numberView(v)
	case float32:
		return numberView(v)
	case int:
		return numberView(v)
	case int8:
		return numberView(v)
	case int16:
		return numberView(v)
	case int32:
		return numberView(v)
	case int64:
		return numberView(v)
	case uint:
		return numberView(v)
	case uint8:
		return numberView(v)
	case uint16:
		return numberView(v)
	case uint32:
		return numberView(v)
	case uint64:
		return numberView(v)
	}
	return reflectView(reflect.ValueOf(value))
}

func reflectView(rv reflect.Value) View {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nullView{}
		}
		return NewView(rv.Elem().Interface())
	case reflect.Bool:
		return boolView(rv.Bool())
	case reflect.String:
		return stringView(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberView(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numberView(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return numberView(rv.Float())
	case reflect.Slice, reflect.Array:
		return sliceView{rv}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return mapView{rv}
		}
		return nullView{}
	case reflect.Struct:
		return structView{rv}
	default:
		return nullView{}
	}
}

// baseView supplies the no-op half of the View contract; every adapter
// embeds it and overrides what its kind defines.
type baseView struct{}

func (baseView) AsBool() bool                     { return false }
func (baseView) AsNumber() float64                { return 0 }
func (baseView) AsString() string                 { return "" }
func (baseView) ArrayEmpty() bool                 { return true }
func (baseView) EachItem(func(int, View))         {}
func (baseView) ObjectEmpty() bool                { return true }
func (baseView) EachMember(func(string, View))    {}
func (baseView) Get(string) View                  { return nil }
func (baseView) Transient() bool                  { return false }

type nullView struct{ baseView }

func (nullView) Kind() Kind  { return Null }
func (nullView) Unwrap() any { return nil }

type boolView bool

func (v boolView) Kind() Kind                     { return Boolean }
func (v boolView) AsBool() bool                   { return bool(v) }
func (v boolView) AsNumber() float64              { return 0 }
func (v boolView) AsString() string               { return "" }
func (v boolView) ArrayEmpty() bool               { return true }
func (v boolView) EachItem(func(int, View))       {}
func (v boolView) ObjectEmpty() bool              { return true }
func (v boolView) EachMember(func(string, View))  {}
func (v boolView) Get(string) View                { return nil }
func (v boolView) Transient() bool                { return false }
func (v boolView) Unwrap() any                    { return bool(v) }

type numberView float64

func (v numberView) Kind() Kind                    { return Number }
func (v numberView) AsBool() bool                  { return false }
func (v numberView) AsNumber() float64             { return float64(v) }
func (v numberView) AsString() string              { return "" }
func (v numberView) ArrayEmpty() bool              { return true }
func (v numberView) EachItem(func(int, View))      {}
func (v numberView) ObjectEmpty() bool             { return true }
func (v numberView) EachMember(func(string, View)) {}
func (v numberView) Get(string) View               { return nil }
func (v numberView) Transient() bool               { return false }
func (v numberView) Unwrap() any                   { return float64(v) }

type stringView string

func (v stringView) Kind() Kind                    { return String }
func (v stringView) AsBool() bool                  { return false }
func (v stringView) AsNumber() float64             { return 0 }
func (v stringView) AsString() string              { return string(v) }
func (v stringView) ArrayEmpty() bool              { return true }
func (v stringView) EachItem(func(int, View))      {}
func (v stringView) ObjectEmpty() bool             { return true }
func (v stringView) EachMember(func(string, View)) {}
func (v stringView) Get(string) View               { return nil }
func (v stringView) Transient() bool               { return false }
func (v stringView) Unwrap() any                   { return string(v) }

// sliceView adapts a Go slice or array.
type sliceView struct{ rv reflect.Value }

func (v sliceView) Kind() Kind         { return Array }
func (v sliceView) AsBool() bool       { return false }
func (v sliceView) AsNumber() float64  { return 0 }
func (v sliceView) AsString() string   { return "" }
func (v sliceView) ArrayEmpty() bool   { return v.rv.Len() == 0 }
func (v sliceView) ObjectEmpty() bool  { return true }
func (v sliceView) Get(string) View    { return nil }
func (v sliceView) Transient() bool    { return false }
func (v sliceView) Unwrap() any        { return v.rv.Interface() }

func (v sliceView) EachItem(visit func(i int, item View)) {
	for i := 0; i < v.rv.Len(); i++ {
		visit(i, NewView(v.rv.Index(i).Interface()))
	}
}

func (v sliceView) EachMember(func(string, View)) {}

// mapView adapts a string-keyed Go map. Members are visited in sorted key
// order so that serialization of the same map is deterministic.
type mapView struct{ rv reflect.Value }

func (v mapView) Kind() Kind        { return Object }
func (v mapView) AsBool() bool      { return false }
func (v mapView) AsNumber() float64 { return 0 }
func (v mapView) AsString() string  { return "" }
func (v mapView) ArrayEmpty() bool  { return true }
func (v mapView) ObjectEmpty() bool { return v.rv.Len() == 0 }
func (v mapView) Transient() bool   { return false }
func (v mapView) Unwrap() any       { return v.rv.Interface() }

func (v mapView) EachItem(func(int, View)) {}

func (v mapView) EachMember(visit func(key string, member View)) {
	keys := make([]string, 0, v.rv.Len())
	for _, k := range v.rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	for _, k := range keys {
		visit(k, NewView(v.rv.MapIndex(reflect.ValueOf(k).Convert(v.rv.Type().Key())).Interface()))
	}
}

func (v mapView) member(key string) View {
	mv := v.rv.MapIndex(reflect.ValueOf(key).Convert(v.rv.Type().Key()))
	if !mv.IsValid() {
		return nil
	}
	return NewView(mv.Interface())
}

func (v mapView) Get(path string) View {
	return descend(v.member, path)
}

// structView adapts a Go struct via reflection: exported fields become
// members, named by their `json` tag when present.
type structView struct{ rv reflect.Value }

func (v structView) Kind() Kind        { return Object }
func (v structView) AsBool() bool      { return false }
func (v structView) AsNumber() float64 { return 0 }
func (v structView) AsString() string  { return "" }
func (v structView) ArrayEmpty() bool  { return true }
func (v structView) Transient() bool   { return false }
func (v structView) Unwrap() any       { return v.rv.Interface() }

func (v structView) EachItem(func(int, View)) {}

func (v structView) ObjectEmpty() bool {
	empty := true
	v.EachMember(func(string, View) { empty = false })
	return empty
}

func (v structView) EachMember(visit func(key string, member View)) {
	for _, f := range reflect.VisibleFields(v.rv.Type()) {
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		fv, err := v.rv.FieldByIndexErr(f.Index)
		if err != nil {
			continue
		}
		visit(name, NewView(fv.Interface()))
	}
}

func (v structView) member(key string) View {
	for _, f := range reflect.VisibleFields(v.rv.Type()) {
		name, ok := fieldName(f)
		if !ok || name != key {
			continue
		}
		fv, err := v.rv.FieldByIndexErr(f.Index)
		if err != nil {
			return nil
		}
		return NewView(fv.Interface())
	}
	return nil
}

func (v structView) Get(path string) View {
	return descend(v.member, path)
}

// fieldName resolves the member name of a struct field, or reports that the
// field does not participate (unexported, embedded holder, or tagged "-").
func fieldName(f reflect.StructField) (string, bool) {
	if f.PkgPath != "" || f.Anonymous {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name, true
	}
	name := tag
	if i := strings.IndexByte(tag, ','); i >= 0 {
		name = tag[:i]
	}
	if name == "-" {
		return "", false
	}
	if name == "" {
		return f.Name, true
	}
	return name, true
}

// objectView is an object assembled from already-adapted views, used for
// the synthetic context built from partial arguments.
type objectView map[string]View

func (v objectView) Kind() Kind        { return Object }
func (v objectView) AsBool() bool      { return false }
func (v objectView) AsNumber() float64 { return 0 }
func (v objectView) AsString() string  { return "" }
func (v objectView) ArrayEmpty() bool  { return true }
func (v objectView) ObjectEmpty() bool { return len(v) == 0 }
func (v objectView) Transient() bool   { return false }
func (v objectView) Unwrap() any       { return map[string]View(v) }

func (v objectView) EachItem(func(int, View)) {}

func (v objectView) EachMember(visit func(key string, member View)) {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		visit(k, v[k])
	}
}

func (v objectView) member(key string) View {
	return v[key]
}

func (v objectView) Get(path string) View {
	return descend(v.member, path)
}

// templateView wraps a compiled template included in a data model so that
// partials can resolve it. It is transient: serialization skips it.
type templateView struct{ t *Template }

func (v templateView) Kind() Kind                    { return Object }
func (v templateView) AsBool() bool                  { return false }
func (v templateView) AsNumber() float64             { return 0 }
func (v templateView) AsString() string              { return "" }
func (v templateView) ArrayEmpty() bool              { return true }
func (v templateView) EachItem(func(int, View))      {}
func (v templateView) ObjectEmpty() bool             { return true }
func (v templateView) EachMember(func(string, View)) {}
func (v templateView) Get(string) View               { return nil }
func (v templateView) Transient() bool               { return true }
func (v templateView) Unwrap() any                   { return v.t }

// descend walks a dotted path one member per segment, returning nil as soon
// as a segment fails to resolve.
func descend(member func(string) View, path string) View {
	head := path
	tail := ""
	if i := strings.IndexByte(path, '.'); i >= 0 {
		head, tail = path[:i], path[i+1:]
	}
	v := member(head)
	if v == nil || tail == "" {
		return v
	}
	return v.Get(tail)
}
