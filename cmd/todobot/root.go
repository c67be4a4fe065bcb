package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/todobot/core/buildinfo"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "configs/config.yaml"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "todobot",
	Short:         "Telegram bot for personal to-do lists",
	Version:       buildinfo.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the YAML config (default $"+configEnvVar+" or "+defaultConfigPath+")")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfigPath prefers the flag, then the environment, then the default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv(configEnvVar); p != "" {
		return p
	}
	return defaultConfigPath
}
