package pricealert

import (
	"go.uber.org/fx"

	"github.com/fatflowers/steamwatch/internal/app/service/notification_log"
)

var Module = fx.Options(
	fx.Provide(ConfigFrom),
	fx.Provide(NewStore),
	fx.Provide(func(s *notification_log.Service) DeliveryRecorder { return s }),
	fx.Provide(NewService),
)
