package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pdf-chat/internal/ingest"
	"pdf-chat/internal/rag"
	"pdf-chat/internal/tui"
)

var chatFiles []string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Opens a chat screen over the indexed documents. Files passed with --file
are ingested first. Type /reset to start a new conversation and /quit to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringSliceVarP(&chatFiles, "file", "f", nil, "documents to ingest before chatting")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	svc, err := openServices(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	if len(chatFiles) > 0 {
		docs, err := loadDocuments(chatFiles)
		if err != nil {
			return err
		}
		result, err := newPipeline(cfg).Run(ctx, docs)
		if err != nil {
			return err
		}
		printSkipped(cmd.ErrOrStderr(), result)
		if _, err := ingest.NewIndexer(svc.embedder, svc.index).Index(ctx, result.Chunks); err != nil {
			return err
		}
	}

	count, err := svc.index.Count(ctx)
	if err != nil {
		return err
	}
	session, err := rag.NewSession()
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%d chunks indexed in %s store", count, cfg.VectorStore.Type)
	model := tui.New(ctx, svc.chat(cfg), session, summary)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
