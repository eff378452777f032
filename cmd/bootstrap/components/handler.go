package components

import (
	"kyuaar/internal/handler"
	"kyuaar/internal/handler/api"
	"kyuaar/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewScanHandler,
		api.NewManageHandler,
		api.NewPacketHandler,
		api.NewActivityHandler,
		middleware.NewAdminMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
