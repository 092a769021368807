package account

import (
	"github.com/smallbiznis/faktur/internal/account/repository"
	"github.com/smallbiznis/faktur/internal/account/service"
	"github.com/smallbiznis/faktur/internal/account/session"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
