package handlebar

// Kind is the variant tag of a View.
type Kind int

const (
	Null Kind = iota
	Boolean
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// View is a read-only tree view over a host value, the only capability the
// renderer requires of its data. The As* accessors are defined only when
// Kind matches; the iteration and lookup methods are no-ops (or return nil)
// on scalar kinds. Implementations must never be mutated by rendering.
//
// Values are usually adapted with NewView, but any implementation of View
// may be passed to Render or returned from a custom Get.
type View interface {
	Kind() Kind

	AsBool() bool
	AsNumber() float64
	AsString() string

	ArrayEmpty() bool
	// EachItem visits every element of an Array in order.
	EachItem(visit func(i int, v View))

	ObjectEmpty() bool
	// EachMember visits every member of an Object. Adapters built over Go
	// maps visit members in sorted key order so that serialization is
	// deterministic.
	EachMember(visit func(key string, v View))

	// Get resolves a dotted path against an Object, descending one member
	// per path segment. It returns nil when the path does not resolve, and
	// always returns nil on non-Object kinds.
	Get(path string) View

	// Transient reports that the value is skipped during serialization,
	// e.g. a compiled template embedded in a model. Irrelevant to rendering.
	Transient() bool

	// Unwrap returns the underlying host value. The renderer uses it to
	// detect that a resolved value is itself a compiled *Template.
	Unwrap() any
}
