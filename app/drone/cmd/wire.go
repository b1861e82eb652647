//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lk2023060901/dronecore/app/drone/internal/metrics"
	"github.com/lk2023060901/dronecore/pkg/app"
	"github.com/lk2023060901/dronecore/pkg/logger"
)

func InitApp(cfg *Config, l logger.Logger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		app.ProviderSet,
		provideAppOptions,

		// 2. Prometheus 客户端与模拟指标
		providePrometheus,
		metrics.New,

		// 3. 故障上报
		provideFaultReporter,
		provideReporter,

		// 4. 行为参数、行为树定义、对象 ID
		provideTuningStore,
		provideTuningWatcher,
		provideBehaviors,
		provideIDGenerator,

		// 5. 模拟宿主
		provideSimulation,

		// 6. 组装
		provideAppComponents,
		app.InitApp,
	))
}
