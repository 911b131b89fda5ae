package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sworddut/myclaw/internal/config"
	"github.com/sworddut/myclaw/internal/engine"
	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/interrupt"
	"github.com/sworddut/myclaw/internal/logging"
	"github.com/sworddut/myclaw/internal/persistence"
	"github.com/sworddut/myclaw/internal/provider"
	"github.com/sworddut/myclaw/internal/session"
	"github.com/sworddut/myclaw/internal/subscribers"
	"github.com/sworddut/myclaw/internal/telemetry"
	"github.com/sworddut/myclaw/internal/tool"
	"github.com/sworddut/myclaw/internal/workspace"
)

// runtime bundles every collaborator a CLI command needs to drive a turn,
// built once per process invocation from the loaded Config (SPEC_FULL
// §4.9 "the CLI is where the engine, store, registry, bus and
// subscribers built across the module are actually wired together").
type runtime struct {
	cfg        *config.Config
	log        *logging.Logger
	bus        *eventbus.Bus
	ws         *workspace.Workspace
	registry   *tool.Registry
	chat       provider.Chat
	approver   tool.Approver
	store      *session.Store
	interrupts *interrupt.Registry[session.Message]
	engine     *engine.Engine

	asyncChecks *subscribers.AsyncCheckSubscriber
	sessionLog  *subscribers.SessionLogSubscriber
	metrics     *subscribers.MetricsSubscriber
	profile     *subscribers.UserProfileSubscriber
	prom        *subscribers.PrometheusSubscriber
	events      *subscribers.EventStreamSubscriber
	promReg     *prometheus.Registry

	tracerShutdown func()
}

// buildRuntime constructs every long-lived collaborator for cfg and
// subscribes the production subscriber set to bus, in the order the
// teacher's container/DI setup wires its own ports (DESIGN.md).
func buildRuntime(cfg *config.Config, approver tool.Approver) (*runtime, error) {
	log := logging.New("myclaw", nil, logging.Info)

	ws, err := workspace.New(cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("open workspace %q: %w", cfg.Workspace, err)
	}

	bus := eventbus.New(log.With("bus"))
	registry := tool.NewRegistry()
	interrupts := interrupt.NewRegistry[session.Message]()

	var chat provider.Chat
	switch cfg.Provider {
	case "mock":
		chat = provider.NewMock()
	case "openai":
		chat = provider.NewHTTP(provider.HTTPConfig{
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			ModelTimeoutMs:  cfg.Runtime.ModelTimeoutMs,
			ModelRetryCount: cfg.Runtime.ModelRetryCount,
		}, log.With("provider.http"))
	case "anthropic":
		// The Anthropic wire format (x-api-key header, /v1/messages shape)
		// is an LLM provider implementation and stays out of scope (spec.md
		// §1); myclaw accepts the config value and talks to it through the
		// same OpenAI-compatible HTTP shape provider.HTTP already speaks.
		chat = provider.NewHTTP(provider.HTTPConfig{
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			ModelTimeoutMs:  cfg.Runtime.ModelTimeoutMs,
			ModelRetryCount: cfg.Runtime.ModelRetryCount,
		}, log.With("provider.http"))
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if approver == nil {
		approver = tool.DenyAllApprover{}
	}

	eng := engine.New(chat, registry, ws, approver, bus, interrupts, log.With("engine"))
	eng.Model = cfg.Model
	store := session.NewStore(64)

	tracerShutdown, err := telemetry.Init(cfg.Tracing.Exporter, cfg.Tracing.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	rt := &runtime{
		cfg:            cfg,
		log:            log,
		bus:            bus,
		ws:             ws,
		registry:       registry,
		chat:           chat,
		approver:       approver,
		store:          store,
		interrupts:     interrupts,
		engine:         eng,
		tracerShutdown: tracerShutdown,
	}

	rt.sessionLog = subscribers.NewSessionLogSubscriber(log.With("subscribers.sessionlog"))
	rt.metrics = subscribers.NewMetricsSubscriber(cfg.HomeDir, log.With("subscribers.metrics"))
	rt.asyncChecks = subscribers.NewAsyncCheckSubscriber(subscribers.AsyncCheckConfig{
		ESLintEnabled: cfg.Runtime.Checks.ESLintEnabled,
	}, interrupts, log.With("subscribers.asynccheck"))
	rt.profile = subscribers.NewUserProfileSubscriber(cfg.HomeDir, log.With("subscribers.userprofile"))

	rt.promReg = prometheus.NewRegistry()
	rt.prom = subscribers.NewPrometheusSubscriber(rt.promReg)
	rt.events = subscribers.NewEventStreamSubscriber(log.With("subscribers.eventstream"))

	bus.Subscribe(rt.sessionLog.Handle)
	bus.Subscribe(rt.metrics.Handle)
	bus.Subscribe(rt.asyncChecks.Handle)
	bus.Subscribe(rt.profile.Handle)
	bus.Subscribe(rt.prom.Handle)
	bus.Subscribe(rt.events.Handle)

	return rt, nil
}

// Close flushes every background subscriber and shuts tracing down,
// matching spec.md §5's "terminated process must flush() all
// subscribers before exiting".
func (rt *runtime) Close() {
	rt.asyncChecks.Flush()
	rt.sessionLog.Flush()
	rt.metrics.Flush()
	if rt.tracerShutdown != nil {
		rt.tracerShutdown()
	}
}

// newSession creates and persists a brand new session rooted at
// rt.cfg.Workspace, publishing the start event and the initial
// SessionLog record together (spec.md §4.6).
func (rt *runtime) newSession(systemPrompt string) *session.Session {
	id := newSessionID()
	logPath := persistence.PathFor(rt.cfg.HomeDir, id)
	sess := session.New(id, rt.cfg.Workspace, logPath, session.Runtime{
		MaxSteps:          rt.cfg.Runtime.MaxSteps,
		ContextWindowSize: rt.cfg.Runtime.ContextWindowSize,
	}, systemPrompt)
	rt.store.Put(sess)
	rt.bus.Publish(eventbus.NewStart(id, rt.cfg.Workspace, logPath, systemPrompt))
	return sess
}

const defaultSystemPrompt = "You are myclaw, a coding agent with read_file, write_file, apply_patch, list_files, search_workspace, and run_shell tools scoped to a single workspace."
