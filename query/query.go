// Package query holds the read-only reporting side: the federated
// pending-protocols query across every tenant schema and the scheduler
// task listing. It is stateless and never touches staged transactions.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"github.com/salvavita/sospeso/tenant"
)

// PendingProtocol is one row of the federated pending-protocols query.
type PendingProtocol struct {
	Ente                  string     `json:"ente"`
	SequLongID            int64      `json:"sequLongId"`
	CountRecuperiEjb      int        `json:"countRecuperiEjb"`
	PresaVisione          int        `json:"presaVisione"`
	IDTransizionePresente int        `json:"idTransizionePresente"`
	AooUfficio            string     `json:"aooUfficio"`
	UtenteCreatore        string     `json:"utenteCreatore"`
	DataInserimento       *time.Time `json:"dataInserimento"`
	StatoDocumento        int        `json:"statoDocumento"`
	EsitoDocumento        int        `json:"esitoDocumento"`
	IDAtmos               string     `json:"idAtmos"`
	Errore                string     `json:"errore"`
	NomeDocumento         string     `json:"nomeDocumento"`
	SeqDocumento          int64      `json:"seqDocumento"`
}

// ScheduledTask is one scheduler entry with its next run time.
type ScheduledTask struct {
	Name    string     `json:"name"`
	NextRun *time.Time `json:"prossimoRun"`
}

// Service executes the reporting queries.
type Service struct {
	db      *gorm.DB
	tenants *tenant.Registry
	cutoffs map[string]string
	log     *log.Helper
}

// NewService builds the read service. cutoffs maps a tenant name to the
// inserted-after date filter of its query arm (format dd/mm/yyyy); a
// tenant without an entry falls back to DefaultCutoff.
func NewService(db *gorm.DB, tenants *tenant.Registry, cutoffs map[string]string, logger log.Logger) *Service {
	return &Service{
		db:      db,
		tenants: tenants,
		cutoffs: cutoffs,
		log:     log.NewHelper(logger),
	}
}

// Ping opens and releases a database connection.
func (s *Service) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// PendingProtocols runs the federated query across the queryable tenant
// schemas.
func (s *Service) PendingProtocols(ctx context.Context) ([]PendingProtocol, error) {
	q := BuildPendingProtocols(s.tenants, s.cutoffs)
	s.log.Infof("running pending-protocols query across %d schemas", len(s.tenants.Queryable()))
	rows, err := s.db.WithContext(ctx).Raw(q).Rows()
	if err != nil {
		return nil, fmt.Errorf("pending protocols query: %w", err)
	}
	defer rows.Close()
	return scanPendingProtocols(rows)
}

// ScheduledTasks lists the scheduler tasks with their next fire time.
func (s *Service) ScheduledTasks(ctx context.Context) ([]ScheduledTask, error) {
	rows, err := s.db.WithContext(ctx).Raw(scheduledTasksQuery).Rows()
	if err != nil {
		return nil, fmt.Errorf("scheduled tasks query: %w", err)
	}
	defer rows.Close()

	var out []ScheduledTask
	for rows.Next() {
		var (
			name    sql.NullString
			nextRun sql.NullTime
		)
		if err := rows.Scan(&name, &nextRun); err != nil {
			return nil, fmt.Errorf("scheduled tasks scan: %w", err)
		}
		t := ScheduledTask{Name: name.String}
		if nextRun.Valid {
			run := nextRun.Time
			t.NextRun = &run
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.log.Infof("scheduled tasks query: %d records", len(out))
	return out, nil
}

func scanPendingProtocols(rows *sql.Rows) ([]PendingProtocol, error) {
	var out []PendingProtocol
	for rows.Next() {
		var (
			ente           sql.NullString
			sequ           sql.NullInt64
			countRec       sql.NullInt64
			presaVisione   sql.NullInt64
			transPresente  sql.NullInt64
			aooUfficio     sql.NullString
			utenteCreatore sql.NullString
			dataIns        sql.NullTime
			statoDoc       sql.NullInt64
			esitoDoc       sql.NullInt64
			idAtmos        sql.NullString
			errore         sql.NullString
			nomeDoc        sql.NullString
			seqDoc         sql.NullInt64
		)
		if err := rows.Scan(&ente, &sequ, &countRec, &presaVisione, &transPresente,
			&aooUfficio, &utenteCreatore, &dataIns, &statoDoc, &esitoDoc,
			&idAtmos, &errore, &nomeDoc, &seqDoc); err != nil {
			return nil, fmt.Errorf("pending protocols scan: %w", err)
		}
		p := PendingProtocol{
			Ente:                  ente.String,
			SequLongID:            sequ.Int64,
			CountRecuperiEjb:      int(countRec.Int64),
			PresaVisione:          int(presaVisione.Int64),
			IDTransizionePresente: int(transPresente.Int64),
			AooUfficio:            aooUfficio.String,
			UtenteCreatore:        utenteCreatore.String,
			StatoDocumento:        int(statoDoc.Int64),
			EsitoDocumento:        int(esitoDoc.Int64),
			IDAtmos:               idAtmos.String,
			Errore:                errore.String,
			NomeDocumento:         nomeDoc.String,
			SeqDocumento:          seqDoc.Int64,
		}
		if dataIns.Valid {
			d := dataIns.Time
			p.DataInserimento = &d
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
