package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salvavita/sospeso/tenant"
)

func TestBuildPendingProtocolsCoversQueryableTenants(t *testing.T) {
	tenants := tenant.Default()
	q := BuildPendingProtocols(tenants, nil)

	queryable := tenants.Queryable()
	for _, d := range queryable {
		assert.Contains(t, q, "'"+d.Name+"' ENTE")
		assert.Contains(t, q, d.Schema+".p2_proto_temporaneo")
	}
	assert.Equal(t, len(queryable)-1, strings.Count(q, " UNION "))
	assert.True(t, strings.HasSuffix(q, "ORDER BY 1, 2"))

	// write-only tenants stay out of the federated read
	assert.NotContains(t, q, "'ADER' ENTE")
	assert.NotContains(t, q, "'DPF' ENTE")
}

func TestBuildPendingProtocolsAppliesCutoffs(t *testing.T) {
	tenants := tenant.NewRegistry(
		tenant.Descriptor{Name: "SOGEI", Schema: "SOGEI_ASP"},
		tenant.Descriptor{Name: "ENTRATE", Schema: "ENTR_ASP"},
	)
	q := BuildPendingProtocols(tenants, map[string]string{"SOGEI": "06/05/2025"})

	assert.Contains(t, q, "TO_DATE('06/05/2025 00:00:00'")
	// tenants without a configured cutoff fall back to the default
	assert.Contains(t, q, "TO_DATE('"+DefaultCutoff+" 00:00:00'")
}

func TestBuildPendingProtocolsArmShape(t *testing.T) {
	tenants := tenant.NewRegistry(tenant.Descriptor{Name: "ACN", Schema: "ACN_ASP"})
	q := BuildPendingProtocols(tenants, nil)

	// the filters that define "pending": in transition, unacknowledged,
	// no failed document, not yet finalized
	assert.Contains(t, q, "pt.flag_tipo_protocollo=3")
	assert.Contains(t, q, "pt.presa_visione NOT IN (1)")
	assert.Contains(t, q, "doc2.esito_documento=2) = 0")
	assert.Contains(t, q, "p.numero_protocollo IS NOT NULL")
	assert.NotContains(t, q, " UNION ")
}
