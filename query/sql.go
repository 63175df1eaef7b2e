package query

import (
	"fmt"
	"strings"

	"github.com/salvavita/sospeso/tenant"
)

// DefaultCutoff filters each arm of the federated query to recently
// inserted records when no per-tenant cutoff is configured.
const DefaultCutoff = "01/01/2025"

const scheduledTasksQuery = "SELECT aa.name, TO_DATE('01-01-1970', 'DD-MM-YYYY') + (aa.nextfiretime+3600000)/(1000*60*60*24) PROSSIMO_RUN " +
	"FROM ejbsched_entr.sched_arcipelago_task aa " +
	"ORDER BY 2"

// pendingArm is one UNION arm of the federated pending-protocols query,
// parameterized by tenant name, schema and cutoff date. A pending
// protocol is a temporary record in transition (flag 3), not yet
// acknowledged, with no failed document and no finalized protocol number.
const pendingArm = "SELECT '%[1]s' ENTE, pt.sequ_long_id, NVL(pt.count_recuperi_ejb,0), pt.presa_visione, " +
	"(SELECT count(*) FROM %[2]s.p2_protocollo p WHERE p.id_transizione=to_char(pt.sequ_long_id)) IDTRANSIZIONEPRESENTE, " +
	"(SELECT dao.sequ_long_id||'-'||dao.codi_codice||'-'||dao.desc_nome||'-----'||duf.codi_ufficio||'-'||duf.desc_descrizione " +
	"FROM %[2]s.d_aree_organizzative dao, %[2]s.d_uffici duf " +
	"WHERE dao.sequ_long_id=duf.fk_aoo AND duf.codi_ufficio=pt.codice_ufficio) AOO_UFFICIO, " +
	"pt.utente_creatore, pt.data_inserimento, doc.stato_documento, doc.esito_documento, " +
	"doc.id_atmos, a2d.errore, doc.nome_documento, doc.sequ_long_id SEQU_LONG_ID_DOC " +
	"FROM %[2]s.p2_proto_temporaneo pt, %[2]s.p2_proto_tmp_documenti doc, %[2]s.p2_callback_a2d a2d " +
	"WHERE pt.sequ_long_id=doc.fk_protocollo_temporaneo(+) AND a2d.id_richiesta(+)=doc.id_richiesta_a2d " +
	"AND pt.flag_tipo_protocollo=3 AND pt.presa_visione NOT IN (1) " +
	"AND (SELECT count(*) FROM %[2]s.p2_proto_tmp_documenti doc2 " +
	"WHERE doc2.fk_protocollo_temporaneo=pt.sequ_long_id AND doc2.esito_documento=2) = 0 " +
	"AND NOT EXISTS (SELECT 1 FROM %[2]s.p2_protocollo p WHERE p.id_transizione=to_char(pt.sequ_long_id) AND p.numero_protocollo IS NOT NULL) " +
	"AND pt.data_inserimento > TO_DATE('%[3]s 00:00:00', 'dd/mm/yyyy hh24:mi:ss')"

// BuildPendingProtocols renders the federated UNION over the queryable
// tenants, in registry order. Write-only tenants keep their schemas
// reachable for the delete cascades but carry no arm here.
func BuildPendingProtocols(tenants *tenant.Registry, cutoffs map[string]string) string {
	queryable := tenants.Queryable()
	arms := make([]string, 0, len(queryable))
	for _, d := range queryable {
		cutoff := cutoffs[d.Name]
		if cutoff == "" {
			cutoff = DefaultCutoff
		}
		arms = append(arms, fmt.Sprintf(pendingArm, d.Name, d.Schema, cutoff))
	}
	return strings.Join(arms, " UNION ") + " ORDER BY 1, 2"
}
