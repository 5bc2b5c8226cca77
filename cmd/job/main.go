// Command job runs one scheduled job in-process and exits, for schedulers that
// prefer a binary over calling the HTTP triggers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/steamwatch/internal/app"
	notificationlog "github.com/fatflowers/steamwatch/internal/app/service/notification_log"
	"github.com/fatflowers/steamwatch/internal/app/service/pricealert"
	"github.com/fatflowers/steamwatch/internal/app/service/pricesync"
	"github.com/fatflowers/steamwatch/pkg/logctx"
	"github.com/fatflowers/steamwatch/pkg/tool"
)

const (
	jobSyncPrices      = "sync-prices"
	jobCheckPriceDrops = "check-price-drops"
)

func main() {
	job := flag.String("job", "", "job to run: sync-prices | check-price-drops")
	timeout := flag.Duration("timeout", 15*time.Minute, "upper bound for the run")
	flag.Parse()

	if *job != jobSyncPrices && *job != jobCheckPriceDrops {
		fmt.Fprintf(os.Stderr, "unknown job %q\n", *job)
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(*job, *timeout))
}

func run(job string, timeout time.Duration) int {
	var (
		log     *zap.SugaredLogger
		syncer  *pricesync.Service
		checker *pricealert.Service
	)
	a := fx.New(
		app.Core,
		// delivery records must be written before the process exits
		fx.Decorate(notificationlog.NewSync),
		fx.Populate(&log, &syncer, &checker),
		fx.NopLogger,
	)
	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		zap.NewExample().Sugar().Errorf("failed to start app: %v", err)
		return 1
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
		defer cancel()
		_ = a.Stop(stopCtx)
	}()

	ctx, cancelRun := context.WithTimeout(context.Background(), timeout)
	defer cancelRun()
	ctx = logctx.WithTraceID(ctx, tool.GenerateUUIDV7())
	log = logctx.FromCtx(ctx, log)

	var (
		res any
		err error
	)
	switch job {
	case jobSyncPrices:
		res, err = syncer.SyncPrices(ctx)
	case jobCheckPriceDrops:
		res, err = checker.CheckPriceDrops(ctx)
	}
	if err != nil {
		log.Errorw("job_failed", "job", job, "error", err)
		return 1
	}
	log.Infow("job_done", "job", job, "result", res)
	return 0
}
