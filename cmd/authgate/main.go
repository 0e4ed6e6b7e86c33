package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dropDatabas3/authgate/internal/app"
	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/security/token"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env es opcional; las variables del sistema siguen valiendo
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	cfgPath := envOr("AUTHGATE_CONFIG", "authgate.yaml")

	root := &cobra.Command{
		Use:           "authgate",
		Short:         "Servidor de autenticación (signin, callback, session, signout)",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", cfgPath, "Archivo YAML de configuración (env AUTHGATE_CONFIG)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "authgate"})
		// auth.debug necesita el core en debug para que los mensajes salgan
		if cfg.Auth.Debug {
			logger.SetLevel("debug")
		}
		return cfg, nil
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger.L())
			if err != nil {
				logger.L().Error("wiring failed", logger.Err(err))
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.L().Warn("adapter cleanup failed", logger.Err(err))
				}
			}()
			return a.Run(ctx)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Valida la configuración y la conexión al adapter sin levantar el servidor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, logger.L())
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d provider(s), listening on %s\n", len(a.Options.Providers), a.Addr)
			return nil
		},
	}

	var secretBytes int
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Genera un AUTH_SECRET aleatorio",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := token.GenerateOpaqueToken(secretBytes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	secretCmd.Flags().IntVar(&secretBytes, "bytes", 32, "Bytes de entropía")

	root.AddCommand(serveCmd, checkCmd, secretCmd)
	return root
}
