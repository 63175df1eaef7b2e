// Package conf holds the bootstrap configuration scanned from the
// kratos config sources (yaml file plus environment overrides).
package conf

import (
	"fmt"
	"time"
)

type Bootstrap struct {
	Server  Server  `json:"server"`
	Data    Data    `json:"data"`
	Notify  Notify  `json:"notify"`
	Pending Pending `json:"pending"`
	Query   Query   `json:"query"`
}

type Server struct {
	HTTP HTTPServer `json:"http"`
}

type HTTPServer struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database Database `json:"database"`
}

type Database struct {
	// DSN of the workflow database. The driver is pgx wrapped by the
	// statement logger; Dialect selects how sessions are scoped to a
	// tenant schema ("postgres" or "oracle").
	DSN     string `json:"dsn"`
	Dialect string `json:"dialect"`
}

type Notify struct {
	Targets []string `json:"targets"`
	Timeout string   `json:"timeout"`
}

type Pending struct {
	// MaxIdle is how long a staged transaction may sit uncommitted
	// before the reaper rolls it back. SweepEvery is the reaper period.
	MaxIdle    string `json:"maxIdle"`
	SweepEvery string `json:"sweepEvery"`
}

type Query struct {
	// Cutoffs maps tenant name to the inserted-after date filter of its
	// arm in the federated query, format dd/mm/yyyy.
	Cutoffs map[string]string `json:"cutoffs"`
}

// Duration parses s, returning def when s is empty. An unparsable value
// returns def together with the error so callers can reject the config
// instead of silently running with the default.
func Duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
