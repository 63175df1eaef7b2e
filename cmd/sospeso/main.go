package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/stdlib"
	sqldblogger "github.com/simukti/sqldb-logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/salvavita/sospeso"
	"github.com/salvavita/sospeso/internal/conf"
	"github.com/salvavita/sospeso/internal/server"
	"github.com/salvavita/sospeso/internal/service"
	"github.com/salvavita/sospeso/notify"
	"github.com/salvavita/sospeso/query"
	"github.com/salvavita/sospeso/tenant"
)

var flagconf = flag.String("conf", "configs", "config path, a file or directory")

// sqlLogger bridges sqldb-logger onto the kratos logger.
type sqlLogger struct {
	h *log.Helper
}

func (l sqlLogger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	switch level {
	case sqldblogger.LevelError:
		l.h.Errorf("%s %v", msg, data)
	case sqldblogger.LevelDebug, sqldblogger.LevelTrace:
		l.h.Debugf("%s %v", msg, data)
	default:
		l.h.Infof("%s %v", msg, data)
	}
}

func main() {
	flag.Parse()

	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service", "sospeso",
	)
	helper := log.NewHelper(logger)

	c := config.New(config.WithSource(
		file.NewSource(*flagconf),
		env.NewSource("SOSPESO_"),
	))
	defer c.Close()
	if err := c.Load(); err != nil {
		helper.Fatalf("load config: %v", err)
	}
	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		helper.Fatalf("scan config: %v", err)
	}
	mustDuration := func(name, s string, def time.Duration) time.Duration {
		d, err := conf.Duration(s, def)
		if err != nil {
			helper.Fatalf("%s: %v", name, err)
		}
		return d
	}

	db := sqldblogger.OpenDriver(bc.Data.Database.DSN, stdlib.GetDefaultDriver(), sqlLogger{h: helper})
	defer db.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		helper.Fatalf("open gorm: %v", err)
	}

	schemaStmt := sospeso.PostgresSchemaStmt
	if bc.Data.Database.Dialect == "oracle" {
		schemaStmt = sospeso.OracleSchemaStmt
	}

	targets := bc.Notify.Targets
	if len(targets) == 0 {
		targets = notify.DefaultTargets
	}

	tenants := tenant.Default()
	store := sospeso.NewStore(logger)
	exec := sospeso.NewExecutor(db, tenants, store, logger, sospeso.WithSchemaStmt(schemaStmt))
	dispatcher := notify.NewHTTP(logger, notify.WithTimeout(mustDuration("notify.timeout", bc.Notify.Timeout, 10*time.Second)))
	coord := sospeso.NewCoordinator(store, dispatcher, targets, logger)
	queries := query.NewService(gdb, tenants, bc.Query.Cutoffs, logger)
	svc := service.NewMaintenance(exec, coord, queries, tenants, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartReaper(ctx,
		mustDuration("pending.sweepEvery", bc.Pending.SweepEvery, time.Minute),
		mustDuration("pending.maxIdle", bc.Pending.MaxIdle, 30*time.Minute),
	)

	app := kratos.New(
		kratos.Name("sospeso"),
		kratos.Logger(logger),
		kratos.Server(server.NewHTTPServer(&bc.Server, svc, logger)),
	)
	if err := app.Run(); err != nil {
		helper.Fatalf("run: %v", err)
	}
}
