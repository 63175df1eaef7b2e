package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := Default()

	for _, name := range []string{"SOGEI", "sogei", "Sogei", " sogei "} {
		d, err := r.Resolve(name)
		assert.NoError(t, err)
		assert.Equal(t, "SOGEI", d.Name)
		assert.Equal(t, "SOGEI_ASP", d.Schema)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := Default()

	_, err := r.Resolve("UNKNOWN")
	assert.ErrorIs(t, err, ErrUnknownTenant)
	assert.ErrorContains(t, err, "UNKNOWN")

	_, err = r.Resolve("")
	assert.ErrorIs(t, err, ErrUnknownTenant)
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry(
		Descriptor{Name: "B", Schema: "B_ASP"},
		Descriptor{Name: "A", Schema: "A_ASP"},
		Descriptor{Name: "C", Schema: "C_ASP"},
	)

	all := r.All()
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []Descriptor{
		{Name: "B", Schema: "B_ASP"},
		{Name: "A", Schema: "A_ASP"},
		{Name: "C", Schema: "C_ASP"},
	}, all)
}

func TestDefaultTenants(t *testing.T) {
	r := Default()

	assert.Equal(t, 9, r.Len())
	d, err := r.Resolve("entrate")
	assert.NoError(t, err)
	assert.Equal(t, "ENTR_ASP", d.Schema)
}

func TestQueryableExcludesWriteOnlyTenants(t *testing.T) {
	r := Default()

	names := make([]string, 0, r.Len())
	for _, d := range r.Queryable() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"ENTRATE", "DEMANIO", "AAMS", "SOGEI", "ACN", "EQUI", "CONSIP"}, names)

	// write-only tenants are still resolvable for the delete cascades
	d, err := r.Resolve("ader")
	assert.NoError(t, err)
	assert.True(t, d.WriteOnly)
}
