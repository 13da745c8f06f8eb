//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/usergate/internal/bootstrap"
	"github.com/yanqian/usergate/internal/domain/auth"
	"github.com/yanqian/usergate/internal/domain/user"
	"github.com/yanqian/usergate/internal/infra/config"
	httpiface "github.com/yanqian/usergate/internal/interface/http"
	"github.com/yanqian/usergate/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideUserConfig,
		provideUserRepository,
		auth.NewService,
		user.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
