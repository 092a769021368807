package notification

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/faktur/internal/notification/service"
)

// Module wires the notification dispatcher.
var Module = fx.Module("notification",
	fx.Provide(service.New),
)
