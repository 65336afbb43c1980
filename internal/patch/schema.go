// Package patch turns untyped JSON partial-update payloads into validated,
// typed patches described by an explicit Schema.
//
// A parsed Patch distinguishes three states per field: absent (leave the
// stored value alone), null (clear it) and a value of the declared kind.
// Parsing is all-or-nothing: the first violation, in schema declaration
// order, aborts with a *ValidationError.
package patch

type Kind int

const (
	KindString Kind = iota
	KindBool
	// KindDate is a calendar date in YYYY-MM-DD form.
	KindDate
	// KindColor is a 6-digit hex color, optional leading '#', normalised to lowercase without it.
	KindColor
	// KindURL is an absolute http or https URL.
	KindURL
	// KindEnum is a string restricted to FieldSpec.Options.
	KindEnum
	// KindObjectList is a JSON array of objects, each parsed with FieldSpec.Elem.
	KindObjectList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindColor:
		return "color"
	case KindURL:
		return "url"
	case KindEnum:
		return "enum"
	case KindObjectList:
		return "list of objects"
	default:
		return "unknown"
	}
}

type FieldSpec struct {
	Name     string
	Kind     Kind
	Nullable bool
	// NonBlank rejects strings that are empty after trimming whitespace.
	NonBlank bool
	// MaxLength limits string kinds, in runes. Zero means unlimited.
	MaxLength int
	Options   []string
	Elem      *Schema
}

type Schema struct {
	Fields []FieldSpec
	// Strict rejects keys that are not declared in Fields.
	Strict bool
	// RequireOneOf lists fields of which at least one must carry a non-empty value.
	RequireOneOf []string
}

func (s Schema) field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
