// Command golangserver-example is a minimal LSP server built on this
// module: it answers initialize/shutdown, logs lifecycle notifications,
// and demonstrates wiring a langserver.Description into daemon.ListenStdio
// or daemon.NewDaemon.
//
// Adapted from the teacher's main.go: the hand-rolled parseArgs flag
// loop is replaced by spf13/cobra, a direct dependency of two repos in
// this pack (yunhoi129-moai-adk, jinterlante1206-AleutianLocal).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/firi/golangserver/config"
	"github.com/firi/golangserver/daemon"
	"github.com/firi/golangserver/dispatch"
	"github.com/firi/golangserver/jsonrpc"
	"github.com/firi/golangserver/langserver"
	"github.com/firi/golangserver/lsptypes"
	"github.com/firi/golangserver/middleware"
	"github.com/firi/golangserver/serverlog"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "golangserver-example",
		Short: "An example LSP server built on the golangserver dispatch engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (optional; defaults apply otherwise)")

	root.AddCommand(newStdioCommand())
	root.AddCommand(newSocketCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func newStdioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Run over the process's stdin/stdout, for editor-spawned servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			return daemon.ListenStdio(cmd.Context(), exampleDescription(logger), daemon.StdioOptions{
				Logger:       logger,
				DispatchOpts: dispatchOptions(cfg, logger),
			})
		},
	}
}

func newSocketCommand() *cobra.Command {
	var key string
	var idleMinutes int

	cmd := &cobra.Command{
		Use:   "socket",
		Short: "Run a Unix-socket daemon shared by multiple client connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			if key == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				key = wd
			}

			d := daemon.NewDaemon(exampleDescription(logger), daemon.SocketOptions{
				Key:         key,
				IdleTimeout: time.Duration(idleMinutes) * time.Minute,
				Logger:      logger,
				DispatchOpts: func() []dispatch.Option {
					return dispatchOptions(cfg, logger)
				},
			})
			return d.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "daemon identity key (defaults to the current working directory)")
	cmd.Flags().IntVar(&idleMinutes, "idle-timeout-minutes", 30, "shut down after this many idle minutes")
	return cmd
}

func newLogger(cfg config.Config) (*serverlog.FileLogger, error) {
	level := serverlog.LevelInfo
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		level = serverlog.LevelDebug
	case config.LogLevelError:
		level = serverlog.LevelError
	}
	return serverlog.NewFileLogger(cfg.LogPath, level)
}

func dispatchOptions(cfg config.Config, logger serverlog.Logger) []dispatch.Option {
	chain := middleware.NewChain()
	if cfg.Middleware.Logging {
		chain.Use(middleware.LoggingMiddleware{Log: logger})
	}
	if cfg.Middleware.Tracing {
		chain.Use(middleware.TracingMiddleware{Log: logger})
	}

	opts := []dispatch.Option{
		dispatch.WithMiddleware(chain),
		dispatch.WithLogger(logger),
	}
	if cfg.MaxConcurrentRequests > 0 {
		opts = append(opts, dispatch.WithExecutor(dispatch.NewPoolExecutor(cfg.MaxConcurrentRequests)))
	}
	return opts
}

// exampleDescription is a minimal but functional Description: it
// completes the initialize/initialized/shutdown/exit handshake and logs
// didOpen notifications through the client's window/logMessage call.
func exampleDescription(logger serverlog.Logger) *langserver.Description {
	return &langserver.Description{
		Initialize: func(ctx context.Context, client langserver.Client, params json.RawMessage) (json.RawMessage, *jsonrpc.Error) {
			result := lsptypes.InitializeResult{
				Capabilities: lsptypes.ServerCapabilities{
					"textDocumentSync": 1,
				},
				ServerInfo: &lsptypes.ServerInfo{Name: "golangserver-example", Version: "0.1.0"},
			}
			body, err := json.Marshal(result)
			if err != nil {
				return nil, jsonrpc.NewInternalError(err.Error())
			}
			return body, nil
		},
		Initialized: func(ctx context.Context, client langserver.Client, params json.RawMessage) {
			logger.Info("client completed the initialize handshake")
		},
		Shutdown: func(ctx context.Context, client langserver.Client, params json.RawMessage) (json.RawMessage, *jsonrpc.Error) {
			return nil, nil
		},
		Exit: func(ctx context.Context, client langserver.Client, params json.RawMessage) {
			logger.Info("client sent exit")
		},
		DidOpen: func(ctx context.Context, client langserver.Client, params json.RawMessage) {
			_ = client.LogMessage(lsptypes.LogMessageParams{Type: lsptypes.MessageLog, Message: "document opened"})
		},
	}
}
