//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/swing-coach/internal/bootstrap"
	"github.com/yanqian/swing-coach/internal/domain/coach"
	"github.com/yanqian/swing-coach/internal/domain/report"
	"github.com/yanqian/swing-coach/internal/domain/reportqa"
	"github.com/yanqian/swing-coach/internal/infra/config"
	"github.com/yanqian/swing-coach/internal/infra/llm/chatgpt"
	httpiface "github.com/yanqian/swing-coach/internal/interface/http"
	"github.com/yanqian/swing-coach/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCoachConfig,
		provideReportConfig,
		provideQAConfig,
		provideChatGPTClient,
		provideReportStore,
		provideQAStore,
		provideQuestionRepository,
		provideClipStorage,
		provideAuthService,
		coach.NewService,
		report.NewService,
		reportqa.NewService,
		wire.Bind(new(coach.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(report.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(reportqa.ChatClient), new(*chatgpt.Client)),
		provideHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
