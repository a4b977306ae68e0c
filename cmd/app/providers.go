package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/swing-coach/internal/domain/auth"
	"github.com/yanqian/swing-coach/internal/domain/coach"
	"github.com/yanqian/swing-coach/internal/domain/report"
	"github.com/yanqian/swing-coach/internal/domain/reportqa"
	"github.com/yanqian/swing-coach/internal/infra/authrepo"
	"github.com/yanqian/swing-coach/internal/infra/clipstore"
	"github.com/yanqian/swing-coach/internal/infra/config"
	"github.com/yanqian/swing-coach/internal/infra/llm/chatgpt"
	"github.com/yanqian/swing-coach/internal/infra/qarepo"
	"github.com/yanqian/swing-coach/internal/infra/qastore"
	"github.com/yanqian/swing-coach/internal/infra/reportstore"
	httpiface "github.com/yanqian/swing-coach/internal/interface/http"
)

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideCoachConfig(cfg *config.Config) coach.Config {
	return coach.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxHistory:  cfg.Coach.MaxHistory,
	}
}

func provideReportConfig(cfg *config.Config) report.Config {
	return report.Config{
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		ReportTTL:    cfg.Report.ReportTTL,
		MaxClipBytes: cfg.Report.MaxClipBytes,
	}
}

func provideQAConfig(cfg *config.Config) reportqa.Config {
	return reportqa.Config{
		Model:               cfg.LLM.Model,
		EmbeddingModel:      cfg.LLM.EmbeddingModel,
		Temperature:         cfg.LLM.Temperature,
		MaxAnswerTokens:     600,
		CacheTTL:            cfg.QA.CacheTTL,
		SimilarityThreshold: cfg.QA.SimilarityThreshold,
		TopQuestions:        cfg.QA.TopQuestions,
	}
}

func provideReportStore(cfg *config.Config, logger *slog.Logger) report.Store {
	if cfg.Cache.Enabled {
		client, ok := newValkeyClient(cfg, logger)
		if ok {
			logger.Info("report valkey store enabled", "addr", cfg.Cache.Addr)
			return reportstore.NewValkeyStore(client, "report")
		}
	}
	return reportstore.NewMemoryStore()
}

func provideQAStore(cfg *config.Config, logger *slog.Logger) reportqa.Store {
	if cfg.Cache.Enabled {
		client, ok := newValkeyClient(cfg, logger)
		if ok {
			logger.Info("qa valkey store enabled", "addr", cfg.Cache.Addr)
			return qastore.NewValkeyStore(client, "reportqa")
		}
	}
	return qastore.NewMemoryStore()
}

func newValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, bool) {
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil, false
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		return nil, false
	}
	return client, true
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideQuestionRepository(cfg *config.Config, logger *slog.Logger) reportqa.QuestionRepository {
	pool, ok := newPostgresPool(cfg, logger)
	if !ok {
		logger.Info("qa postgres dsn not usable, using memory repository")
		return qarepo.NewMemoryRepository()
	}
	logger.Info("qa postgres repository enabled")
	return qarepo.NewPostgresRepository(pool)
}

func provideAuthRepository(cfg *config.Config, logger *slog.Logger) auth.UserRepository {
	pool, ok := newPostgresPool(cfg, logger)
	if !ok {
		logger.Info("auth postgres dsn not usable, using memory repository")
		return authrepo.NewMemoryRepository()
	}
	logger.Info("auth postgres repository enabled")
	return authrepo.NewPostgresRepository(pool)
}

func newPostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, bool) {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		return nil, false
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn", "error", err)
		return nil, false
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "error", err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return nil, false
	}
	return pool, true
}

func provideClipStorage(cfg *config.Config, logger *slog.Logger) report.ClipStorage {
	if !cfg.Clips.Enabled {
		return nil
	}
	storage, err := clipstore.NewR2Storage(cfg.Clips.Endpoint, cfg.Clips.AccessKey, cfg.Clips.SecretKey, cfg.Clips.Bucket, cfg.Clips.Region, logger)
	if err != nil {
		logger.Error("failed to initialize clip storage, clips will not be archived", "error", err)
		return nil
	}
	return storage
}

func provideAuthService(cfg *config.Config, logger *slog.Logger) *auth.Service {
	if !cfg.Auth.Enabled {
		return nil
	}
	return auth.NewService(auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}, provideAuthRepository(cfg, logger), logger)
}

func provideHandler(cfg *config.Config, coachSvc coach.Service, reportSvc report.Service, qaSvc reportqa.Service, authSvc *auth.Service, client *chatgpt.Client, logger *slog.Logger) *httpiface.Handler {
	return httpiface.NewHandler(coachSvc, reportSvc, qaSvc, authSvc, client, cfg.LLM.TranscriptionModel, logger)
}
