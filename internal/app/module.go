package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/steamwatch/internal/app/api/server"
	"github.com/fatflowers/steamwatch/internal/app/service/catalog"
	notificationlog "github.com/fatflowers/steamwatch/internal/app/service/notification_log"
	"github.com/fatflowers/steamwatch/internal/app/service/pricealert"
	"github.com/fatflowers/steamwatch/internal/app/service/pricesync"
	"github.com/fatflowers/steamwatch/internal/app/service/statistics"
	"github.com/fatflowers/steamwatch/internal/app/service/watchlist"
	"github.com/fatflowers/steamwatch/internal/platform/db"
	"github.com/fatflowers/steamwatch/internal/platform/email"
	"github.com/fatflowers/steamwatch/internal/platform/steam"
	"github.com/fatflowers/steamwatch/pkg/config"
	"github.com/fatflowers/steamwatch/pkg/logger"
	"github.com/fatflowers/steamwatch/pkg/token"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Core wires storage, the store client, mail and every service, without the HTTP server.
var Core = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	steam.Module,
	email.Module,
	token.Module,
	catalog.Module,
	watchlist.Module,
	statistics.Module,
	notificationlog.Module,
	pricealert.Module,
	pricesync.Module,
)

var Module = fx.Options(
	Core,
	server.Module,
)
