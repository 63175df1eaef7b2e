// Package notify fans out best-effort HTTP notifications after a
// successful commit. Dispatches are launched concurrently and never
// block or fail the caller; outcomes are only logged.
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Dispatcher fires a set of outbound calls after a successful commit.
type Dispatcher interface {
	DispatchAll(targets []string)
}

// HTTP dispatches one GET per target on its own goroutine with a
// bounded timeout. TLS certificate validation stays enabled.
type HTTP struct {
	client *http.Client
	log    *log.Helper
	wg     sync.WaitGroup
}

var _ Dispatcher = (*HTTP)(nil)

type Option func(*HTTP)

func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		h.client.Timeout = d
	}
}

// WithClient replaces the HTTP client, for tests.
func WithClient(c *http.Client) Option {
	return func(h *HTTP) {
		h.client = c
	}
}

func NewHTTP(logger log.Logger, opts ...Option) *HTTP {
	h := &HTTP{
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.NewHelper(logger),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// DispatchAll launches one GET per target and returns immediately.
// Failures are logged, never surfaced; there is no retry and no ordering
// across targets.
func (h *HTTP) DispatchAll(targets []string) {
	h.log.Infof("dispatching %d notification targets", len(targets))
	for _, target := range targets {
		target := target
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			resp, err := h.client.Get(target)
			if err != nil {
				h.log.Errorf("notification %s: %v", target, err)
				return
			}
			resp.Body.Close()
			h.log.Infof("notification %s: HTTP %d", target, resp.StatusCode)
		}()
	}
}

// Wait blocks until every launched dispatch has finished. Callers on the
// commit path never wait; tests do.
func (h *HTTP) Wait() {
	h.wg.Wait()
}

// DefaultTargets are the production scheduler task start URLs.
var DefaultTargets = []string{
	"https://sd20.finanze.it/arcipelago20scheduler-sched/GestioneTaskSchedulati?op=START&taskName=CALLBACK_FLUSSI_EJB",
	"https://sd20.finanze.it/arcipelago20scheduler-sched/GestioneTaskSchedulati?op=START&taskName=GESTIONE_DELEGHE_ENTRATE",
	"https://sd20.finanze.it/arcipelago20scheduler-sched/GestioneTaskSchedulati?op=START&taskName=NOTIFICHE_WKF_AAMS",
	"https://sd20.finanze.it/arcipelago20scheduler-sched/GestioneTaskSchedulati?op=START&taskName=NOTIFICHE_WKF_ENTRATE",
	"https://sd20.finanze.it/arcipelago20scheduler-sched/GestioneTaskSchedulati?op=START&taskName=NOTIFICHE_WKF_SOGEI",
	"https://sd20.finanze.it/arcipelago20scheduler-sched/GestioneTaskSchedulati?op=START&taskName=SOSPESI_ACN",
	"https://sd20.finanze.it/arcipelago20scheduler-sched/GestioneTaskSchedulati?op=START&taskName=BUCHI_PROTOCOLLO_ACN",
}
