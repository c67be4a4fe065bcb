package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/m3rciful/todobot/core/app"
	"github.com/m3rciful/todobot/core/buildinfo"
	corecmd "github.com/m3rciful/todobot/core/cmd"
	"github.com/m3rciful/todobot/core/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	Long: `Start the bot: apply pending migrations, connect storage, serve Telegram
updates and run the background jobs until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics.MustRegister()
		metrics.SetBuildInfo(buildinfo.Version)

		return corecmd.Run(corecmd.Options{
			ConfigEnvVar: configEnvVar,
			ConfigPath:   resolveConfigPath(),
			LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
				return app.Load(path)
			},
			Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
				return app.New(ctx, cfg.(*app.Config), app.Options{})
			},
		})
	},
}
