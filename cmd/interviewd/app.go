package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sandeep066/aceInterview/internal/agent"
	"github.com/sandeep066/aceInterview/internal/interview"
	"github.com/sandeep066/aceInterview/internal/llm"
	"github.com/sandeep066/aceInterview/internal/performance"
	"github.com/sandeep066/aceInterview/internal/pkg/config"
	"github.com/sandeep066/aceInterview/internal/room"
	"github.com/sandeep066/aceInterview/internal/server"
	"github.com/sandeep066/aceInterview/internal/session"
	"github.com/sandeep066/aceInterview/internal/voice"
)

const appName = "ace-interview"

// app holds the wired services shared by every command.
type app struct {
	cfg         *config.Config
	model       *llm.Client
	store       session.Store
	questions   *interview.Orchestrator
	performance *performance.Orchestrator
	rooms       *room.LiveKit
	voice       *voice.Service
}

// newApp builds the model, session memory and orchestrators. The memory
// store's janitor and the voice session sweeper run until ctx is cancelled.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	model, err := llm.NewRegistry().NewModel(cfg.LLM, nil, logger)
	if err != nil {
		return nil, err
	}

	store, err := session.New(cfg.Session, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	switch s := store.(type) {
	case *session.MemoryStore:
		s.Start(ctx)
	case *session.RedisStore:
		if err := s.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Session.Redis.Addr, err)
		}
	}

	agents := agent.NewSet(model, agent.WithLogger(logger))
	questions := interview.NewOrchestrator(agents.Topic, agents.Question, store,
		interview.WithLogger(logger))
	perf := performance.NewOrchestrator(agents.Response, agents.Overall, store,
		performance.WithLogger(logger),
		performance.WithConcurrency(cfg.Performance.Concurrency))

	rooms := room.NewLiveKit(cfg.LiveKit, room.WithLogger(logger))
	if !rooms.Configured() {
		logger.Warn("LiveKit credentials missing, voice interviews disabled")
	}

	voices := voice.NewService(rooms, questions, voice.WithLogger(logger))
	voices.StartSweeper(ctx)

	return &app{
		cfg:         cfg,
		model:       model,
		store:       store,
		questions:   questions,
		performance: perf,
		rooms:       rooms,
		voice:       voices,
	}, nil
}

func (a *app) serverDeps() server.Deps {
	return server.Deps{
		Questions:   a.questions,
		Performance: a.performance,
		Voice:       a.voice,
		Rooms:       a.rooms,
		Info: server.SystemInfo{
			Name:          appName,
			Version:       version,
			Environment:   a.cfg.Environment,
			LLMProvider:   a.model.Provider(),
			LLMModel:      a.model.ModelName(),
			VoiceProvider: "livekit",
		},
	}
}
