// Package server exposes the maintenance API over kratos HTTP.
package server

import (
	"net/http"
	"strconv"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/salvavita/sospeso/internal/conf"
	"github.com/salvavita/sospeso/internal/service"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewHTTPServer(c *conf.Server, svc *service.Maintenance, logger log.Logger) *khttp.Server {
	opts := []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		khttp.Filter(SessionFilter()),
	}
	if c.HTTP.Addr != "" {
		opts = append(opts, khttp.Address(c.HTTP.Addr))
	}
	d, err := conf.Duration(c.HTTP.Timeout, 0)
	if err != nil {
		log.NewHelper(logger).Warnf("server.http.timeout: %v", err)
	}
	if d > 0 {
		opts = append(opts, khttp.Timeout(d))
	}
	srv := khttp.NewServer(opts...)
	registerRoutes(srv, svc, logger)
	return srv
}

type handlers struct {
	svc *service.Maintenance
	log *log.Helper
}

func registerRoutes(srv *khttp.Server, svc *service.Maintenance, logger log.Logger) {
	h := &handlers{svc: svc, log: log.NewHelper(logger)}
	r := srv.Route("/")
	r.GET("/health", h.health)
	r.GET("/protocolli-sospesi", h.pendingProtocols)
	r.GET("/scheduled-tasks", h.scheduledTasks)
	r.POST("/avvia-processi", h.purgeScheduler)
	r.POST("/delete-protocolli", h.deleteTransitioning)
	r.POST("/delete-proto-temporaneo", h.deleteTemporary)
	r.POST("/commit-transaction", h.commit)
	r.POST("/rollback-transaction", h.rollback)
}

func (h *handlers) health(ctx khttp.Context) error {
	if err := h.svc.Health(ctx); err != nil {
		h.log.Errorf("health check: %v", err)
		return ctx.Result(http.StatusServiceUnavailable, &ErrorBody{
			Error:   "Database non disponibile",
			Message: err.Error(),
		})
	}
	return ctx.Result(http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Connessione al database attiva",
	})
}

func (h *handlers) pendingProtocols(ctx khttp.Context) error {
	reply, err := h.svc.PendingProtocols(ctx)
	if err != nil {
		return internalError(ctx, "Errore nell'esecuzione della query", err)
	}
	return ctx.Result(http.StatusOK, reply)
}

func (h *handlers) scheduledTasks(ctx khttp.Context) error {
	reply, err := h.svc.ScheduledTasks(ctx)
	if err != nil {
		return internalError(ctx, "Errore nell'esecuzione della query", err)
	}
	return ctx.Result(http.StatusOK, reply)
}

func (h *handlers) purgeScheduler(ctx khttp.Context) error {
	reply := h.svc.PurgeScheduler(ctx, CorrelationKey(ctx))
	if !reply.Success {
		return ctx.Result(http.StatusInternalServerError, reply)
	}
	return ctx.Result(http.StatusOK, reply)
}

func (h *handlers) deleteTransitioning(ctx khttp.Context) error {
	ente := ctx.Query().Get("ente")
	reply, err := h.svc.DeleteTransitioning(ctx, ente)
	if err != nil {
		return internalError(ctx, "Errore nell'eliminazione", err)
	}
	return ctx.Result(http.StatusOK, reply)
}

func (h *handlers) deleteTemporary(ctx khttp.Context) error {
	ente := ctx.Query().Get("ente")
	id, err := strconv.ParseInt(ctx.Query().Get("sequLongId"), 10, 64)
	if err != nil {
		return internalError(ctx, "Errore nell'eliminazione", err)
	}
	reply := h.svc.DeleteTemporary(ctx, CorrelationKey(ctx), ente, id)
	return ctx.Result(http.StatusOK, reply)
}

func (h *handlers) commit(ctx khttp.Context) error {
	return ctx.Result(http.StatusOK, h.svc.Commit(ctx, CorrelationKey(ctx)))
}

func (h *handlers) rollback(ctx khttp.Context) error {
	return ctx.Result(http.StatusOK, h.svc.Rollback(ctx, CorrelationKey(ctx)))
}

func internalError(ctx khttp.Context, summary string, err error) error {
	return ctx.Result(http.StatusInternalServerError, &ErrorBody{
		Error:   summary,
		Message: err.Error(),
	})
}
