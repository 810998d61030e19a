package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pdf-chat/internal/config"
	"pdf-chat/internal/helper"
)

const configFilePath = "./configs/config.yaml"

var (
	configPath string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pdf-chat",
	Short: "Chat with your PDF documents",
	Long: `Ingests PDF (and office, markdown, text) documents into a vector store
and answers questions about them with a language model, citing the pages used.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configFilePath, "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadConfig(*cobra.Command, []string) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	level := loaded.Log.Level
	if verbose {
		level = "debug"
	}
	helper.SetupLogger(level, loaded.Log.Console)
	log.Debug().Str("config", configPath).Str("store", loaded.VectorStore.Type).Msg("Loaded config")
	cfg = loaded
	return nil
}

func main() {
	helper.SetupLogger("info", true)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}
