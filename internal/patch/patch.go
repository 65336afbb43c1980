package patch

import (
	"fmt"
	"sort"
	"time"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Value is a decoded field value. Accessors panic if called for the wrong kind,
// which can only happen on a programming error since values come from a Schema.
type Value struct {
	null bool
	v    any
}

func (v Value) IsNull() bool { return v.null }

func (v Value) String() string { return v.v.(string) }

func (v Value) Bool() bool { return v.v.(bool) }

func (v Value) Time() time.Time { return v.v.(time.Time) }

func (v Value) Objects() []*Patch { return v.v.([]*Patch) }

type Patch struct {
	values map[string]Value
}

func (p *Patch) Lookup(name string) (Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p *Patch) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p *Patch) Len() int { return len(p.values) }

// Fields returns the present field names in lexical order.
func (p *Patch) Fields() []string {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
