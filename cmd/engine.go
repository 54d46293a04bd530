package cmd

import (
	"context"
	"fmt"

	"github.com/thariqabe666/finalproj-group-2/internal/agent"
	"github.com/thariqabe666/finalproj-group-2/internal/ai/gemini"
	"github.com/thariqabe666/finalproj-group-2/internal/interview"
	"github.com/thariqabe666/finalproj-group-2/internal/jobs"
	"github.com/thariqabe666/finalproj-group-2/internal/jobs/sqlitestore"
	"github.com/thariqabe666/finalproj-group-2/internal/logger"
	"github.com/thariqabe666/finalproj-group-2/internal/orchestrator"
	"github.com/thariqabe666/finalproj-group-2/internal/secrets"
	"github.com/thariqabe666/finalproj-group-2/internal/session"
	"github.com/thariqabe666/finalproj-group-2/internal/tool"
	"github.com/thariqabe666/finalproj-group-2/internal/tool/semantic"
	"github.com/thariqabe666/finalproj-group-2/internal/tool/sqltool"
	"github.com/thariqabe666/finalproj-group-2/internal/tracing"

	"go.uber.org/zap"
)

// buildEngine wires the full orchestration stack from configuration. The
// returned cleanup closes the dataset store.
func buildEngine(ctx context.Context, config *Config, log *zap.Logger) (*orchestrator.Orchestrator, func(), error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.AI.Gemini.APIKey,
		File:  config.AI.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, err
	}

	client, err := gemini.New(ctx, apiKey, config.AI.Gemini.Model, config.AI.Gemini.EmbeddingModel)
	if err != nil {
		return nil, nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger.WithFields(log, logger.StringFields(
		logger.StringField{Key: logger.FieldProvider, Value: "gemini"},
		logger.StringField{Key: logger.FieldModel, Value: client.Model()},
	)...).Info("reasoning service configured")

	store, err := sqlitestore.Open(config.Dataset.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("closing dataset store", zap.Error(err))
		}
	}

	if config.Dataset.SeedFile != "" {
		seed, err := jobs.LoadFile(config.Dataset.SeedFile)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := store.Seed(ctx, seed.Items); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("seeding dataset: %w", err)
		}
		log.Info("dataset seeded", zap.Int("postings", seed.Len()))
	}

	postings, err := store.All(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	index, err := semantic.BuildIndex(ctx, client, postings, log)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("building semantic index: %w", err)
	}

	queryTool := sqltool.New(client, store, log)
	searchTool := semantic.New(client, index, config.Dataset.TopK, log)
	tools := map[string]tool.Tool{
		queryTool.Name():  queryTool,
		searchTool.Name(): searchTool,
	}

	agents := map[agent.Kind]agent.Agent{
		agent.KindSQL:         agent.NewSQLAgent(client, queryTool.Name(), log),
		agent.KindRetrieval:   agent.NewRetrievalAgent(client, searchTool.Name(), log),
		agent.KindAdvisor:     agent.NewAdvisorAgent(client, log),
		agent.KindCoverLetter: agent.NewCoverLetterAgent(client, log),
	}

	engine := orchestrator.New(&orchestrator.Deps{
		Router:    orchestrator.NewRouter(client, agents, config.Orchestrator, log),
		Loop:      orchestrator.NewLoop(tools, config.Orchestrator, log),
		Agents:    agents,
		Machine:   interview.NewMachine(client, config.Interview, log),
		Sessions:  session.NewManager(session.NewMemoryStore(), log),
		Sink:      tracing.NewLogSink(log),
		Generator: client,
		Logger:    log,
	}, config.Orchestrator)

	return engine, cleanup, nil
}
