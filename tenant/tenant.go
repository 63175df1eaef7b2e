package tenant

import (
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/elliotchance/orderedmap/v2"
)

var ErrUnknownTenant = errors.New("unknown tenant")

// Descriptor pairs a tenant organization with its database schema.
// Immutable once registered. WriteOnly tenants are resolvable for
// maintenance deletes but excluded from the federated read query.
type Descriptor struct {
	Name      string
	Schema    string
	WriteOnly bool
}

// Registry is a fixed, ordered set of tenants loaded at startup. Lookup
// is case-insensitive; enumeration preserves registration order, which
// the federated read query relies on.
type Registry struct {
	m *orderedmap.OrderedMap[string, Descriptor]
}

func NewRegistry(descs ...Descriptor) *Registry {
	m := orderedmap.NewOrderedMap[string, Descriptor]()
	for _, d := range descs {
		m.Set(strings.ToUpper(d.Name), d)
	}
	return &Registry{m: m}
}

// Default returns the registry of the production tenants.
func Default() *Registry {
	return NewRegistry(
		Descriptor{Name: "ENTRATE", Schema: "ENTR_ASP"},
		Descriptor{Name: "DEMANIO", Schema: "DEM_ASP"},
		Descriptor{Name: "AAMS", Schema: "AAMS_ASP"},
		Descriptor{Name: "SOGEI", Schema: "SOGEI_ASP"},
		Descriptor{Name: "ADER", Schema: "ADER_ASP", WriteOnly: true},
		Descriptor{Name: "ACN", Schema: "ACN_ASP"},
		Descriptor{Name: "EQUI", Schema: "EQUI_ASP"},
		Descriptor{Name: "CONSIP", Schema: "CONSIP_ASP"},
		Descriptor{Name: "DPF", Schema: "DPF_ASP", WriteOnly: true},
	)
}

// Resolve returns the descriptor for name, matching case-insensitively.
func (r *Registry) Resolve(name string) (Descriptor, error) {
	if d, ok := r.m.Get(strings.ToUpper(strings.TrimSpace(name))); ok {
		return d, nil
	}
	return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownTenant, name)
}

// All returns every descriptor in registration order.
func (r *Registry) All() []Descriptor {
	descs := make([]Descriptor, 0, r.m.Len())
	for el := r.m.Front(); el != nil; el = el.Next() {
		descs = append(descs, el.Value)
	}
	return descs
}

// Queryable returns the descriptors that take part in the federated
// read query, in registration order.
func (r *Registry) Queryable() []Descriptor {
	descs := make([]Descriptor, 0, r.m.Len())
	for el := r.m.Front(); el != nil; el = el.Next() {
		if !el.Value.WriteOnly {
			descs = append(descs, el.Value)
		}
	}
	return descs
}

func (r *Registry) Len() int {
	return r.m.Len()
}
