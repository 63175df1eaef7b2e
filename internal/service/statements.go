package service

import "fmt"

// schedulerPurgeStatements empties the scheduler tables. Order matters:
// lock manager rows first, the task registry last.
func schedulerPurgeStatements() []string {
	return []string{
		"DELETE FROM ejbsched_entr.sched_arcipelago_lmgr",
		"DELETE FROM ejbsched_entr.sched_arcipelago_lmpr",
		"DELETE FROM ejbsched_entr.sched_arcipelago_task",
		"DELETE FROM ejbsched_entr.sched_arcipelago_treg",
	}
}

// temporaryProtocolStatements cascades the delete of one temporary
// protocol: child tables first, the record itself last. id has been
// parsed as an integer before it reaches the statement text.
func temporaryProtocolStatements(schema string, id int64) []string {
	return []string{
		fmt.Sprintf("DELETE FROM %s.p2_proto_tmp_classif_all a WHERE a.fk_protocollo_temporaneo IN (%d)", schema, id),
		fmt.Sprintf("DELETE FROM %s.p2_proto_tmp_classificazione a WHERE a.fk_protocollo_temporaneo IN (%d)", schema, id),
		fmt.Sprintf("DELETE FROM %s.p2_proto_tmp_collegati a WHERE a.fk_proto_tmp IN (%d)", schema, id),
		fmt.Sprintf("DELETE FROM %s.p2_proto_tmp_dettagli a WHERE a.fk_proto_tmp IN (%d)", schema, id),
		fmt.Sprintf("DELETE FROM %s.p2_proto_tmp_documenti a WHERE a.fk_protocollo_temporaneo IN (%d)", schema, id),
		fmt.Sprintf("DELETE FROM %s.p2_proto_tmp_mittdest a WHERE a.fk_proto_tmp IN (%d)", schema, id),
		fmt.Sprintf("DELETE FROM %s.p2_proto_temporaneo a WHERE a.sequ_long_id IN (%d)", schema, id),
	}
}

// transitioningProtocolStatements deletes protocols stuck in transition
// for one tenant: the per-protocol satellite tables, then the protocol
// rows. transitioningSelect identifies the stuck transitions; the delete
// scope is additionally limited to unnumbered protocols inserted in the
// last ten days.
func transitioningProtocolStatements(schema string) []string {
	sel := transitioningSelect(schema)
	scope := "(SELECT sequ_long_id FROM " + schema + ".p2_protocollo p2 " +
		"WHERE TO_NUMBER(p2.id_transizione) IN (" + sel + ") " +
		"AND p2.numero_protocollo IS NULL AND p2.data_ins>SYSDATE-10)"
	return []string{
		"DELETE FROM " + schema + ".p2_protocollo_collegati pc WHERE pc.fk_protocollo IN " + scope,
		"DELETE FROM " + schema + ".p2_protocollo_documenti WHERE fk_protocollo IN " + scope,
		"DELETE FROM " + schema + ".p2_protocollo_mitt_dest WHERE fk_protocollo IN " + scope,
		"DELETE FROM " + schema + ".p2_chiusura_attivita_risposta WHERE fk_p2_proto IN " + scope,
		"DELETE FROM " + schema + ".p2_protocollo p2 " +
			"WHERE TO_NUMBER(p2.id_transizione) IN (" + sel + ") " +
			"AND p2.numero_protocollo IS NULL AND p2.data_ins>SYSDATE-10",
	}
}

func transitioningSelect(schema string) string {
	return "SELECT pt.sequ_long_id FROM " + schema + ".p2_proto_temporaneo pt " +
		"WHERE pt.flag_tipo_protocollo=3 AND pt.presa_visione NOT IN (1) " +
		"AND NOT EXISTS (SELECT 1 FROM " + schema + ".p2_protocollo p " +
		"WHERE p.id_transizione=to_char(pt.sequ_long_id) AND p.numero_protocollo IS NOT NULL) " +
		"AND (SELECT COUNT(*) FROM " + schema + ".p2_protocollo p " +
		"WHERE p.id_transizione=to_char(pt.sequ_long_id))>0"
}
