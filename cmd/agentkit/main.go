// Command agentkit is a terminal client for agent runtimes: send a message
// over any supported protocol, inspect agent cards and runtime
// configuration, and render A2UI/MCP-UI payloads to HTML.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/datalayer/agentkit/internal/config"
	"github.com/datalayer/agentkit/pkg/a2ui"
	"github.com/datalayer/agentkit/pkg/adapter"
	"github.com/datalayer/agentkit/pkg/adapter/a2a"
	"github.com/datalayer/agentkit/pkg/adapter/acp"
	"github.com/datalayer/agentkit/pkg/adapter/agui"
	"github.com/datalayer/agentkit/pkg/adapter/vercel"
	"github.com/datalayer/agentkit/pkg/backend"
	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/mcpui"
	"github.com/datalayer/agentkit/pkg/messages"
)

const usage = `agentkit - talk to agent runtimes from the terminal

Usage:
  agentkit run [flags] <message>     send a message and stream the reply
  agentkit card [flags]              fetch the agent card (a2a)
  agentkit configure [flags]         show runtime configuration and MCP status
  agentkit render [flags] <file>     render an a2ui/mcpui payload to HTML

Flags:
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "agentkit:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("agentkit", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "config file (.toml, .json or .jsonc)")
	baseURL := flags.String("base-url", "", "runtime base URL")
	agentID := flags.String("agent", "", "agent id")
	protocol := flags.StringP("protocol", "p", "", "protocol: ag-ui, acp, vercel-ai, a2a")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error")
	kind := flags.String("kind", "a2ui", "payload kind for render: a2ui or mcpui")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, flags.FlagUsages())
	}

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("no command given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *agentID != "" {
		cfg.AgentID = *agentID
	}
	if *protocol != "" {
		cfg.Protocol = *protocol
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd := flags.Arg(0); cmd {
	case "run":
		if flags.NArg() < 2 {
			return fmt.Errorf("run needs a message")
		}
		return runMessage(ctx, cfg, logger, flags.Arg(1))
	case "card":
		return showCard(ctx, cfg, logger)
	case "configure":
		return showConfiguration(ctx, cfg)
	case "render":
		if flags.NArg() < 2 {
			return fmt.Errorf("render needs a payload file")
		}
		return renderPayload(cfg, logger, *kind, flags.Arg(1))
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func newAdapter(cfg *config.Config, logger *logrus.Logger) (adapter.Adapter, error) {
	acfg := adapter.Config{
		AutoReconnect:        cfg.Connection.AutoReconnect,
		ReconnectDelay:       cfg.Connection.ReconnectDelay(),
		MaxReconnectAttempts: cfg.Connection.MaxReconnectAttempts,
		RequestTimeout:       cfg.Connection.RequestTimeout(),
		AuthToken:            cfg.AuthToken,
	}
	switch cfg.Protocol {
	case config.ProtocolAGUI:
		return agui.New(cfg.BaseURL, cfg.AgentID, acfg, logger)
	case config.ProtocolACP:
		return acp.New(cfg.BaseURL, acfg, logger)
	case config.ProtocolVercel:
		return vercel.New(cfg.BaseURL, acfg, logger)
	case config.ProtocolA2A:
		return a2a.New(cfg.BaseURL, acfg, logger)
	default:
		return nil, fmt.Errorf("unknown protocol %q", cfg.Protocol)
	}
}

func runMessage(ctx context.Context, cfg *config.Config, logger *logrus.Logger, text string) error {
	a, err := newAdapter(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.Connect(ctx); err != nil {
		return err
	}
	defer a.Disconnect()

	unsubscribe := a.Subscribe(func(ev adapter.Event) {
		switch ev.Type {
		case adapter.EventStream:
			if content, ok := ev.Stream.(*events.TextMessageContentEvent); ok {
				fmt.Print(content.Delta)
			}
		case adapter.EventError:
			logger.WithError(ev.Err).Error("stream error")
		}
	})
	defer unsubscribe()

	if err := a.SendMessage(ctx, messages.New(messages.RoleUser, text), &adapter.SendOptions{
		ThreadID: cfg.Session,
	}); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func showCard(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	a, err := newAdapter(cfg, logger)
	if err != nil {
		return err
	}
	card, err := a.AgentCard(ctx)
	if err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("protocol %q does not publish an agent card", cfg.Protocol)
	}
	return printJSON(card)
}

func showConfiguration(ctx context.Context, cfg *config.Config) error {
	client, err := backend.New(cfg.BaseURL, backend.WithAuthToken(cfg.AuthToken))
	if err != nil {
		return err
	}
	conf, err := client.GetConfiguration(ctx)
	if err != nil {
		return err
	}
	status, err := client.GetMCPToolsetsStatus(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"configuration": conf, "mcpToolsets": status})
}

func renderPayload(cfg *config.Config, logger *logrus.Logger, kind, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch kind {
	case "a2ui":
		engine := a2ui.NewEngine(logger)
		engine.Handle(cfg.Session, data)
		for name := range engine.Surfaces(cfg.Session) {
			html, err := engine.Render(cfg.Session, name)
			if err != nil {
				return err
			}
			fmt.Println(html)
		}
		return nil
	case "mcpui":
		engine := mcpui.NewEngine(logger)
		fmt.Println(engine.Handle(cfg.Session, data))
		return nil
	default:
		return fmt.Errorf("unknown payload kind %q", kind)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
