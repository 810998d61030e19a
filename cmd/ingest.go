package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pdf-chat/internal/helper"
	"pdf-chat/internal/ingest"
)

var ingestDryRun bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index documents into the vector store",
	Long: `Extracts the text of every page, normalizes and chunks it, embeds the chunks
and stores them. Re-ingesting a file replaces its previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "print chunks as JSON instead of storing them")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	docs, err := loadDocuments(args)
	if err != nil {
		return err
	}
	result, err := newPipeline(cfg).Run(ctx, docs)
	if err != nil {
		return err
	}
	printSkipped(out, result)

	if ingestDryRun {
		helper.PrettyPrint(out, result.Chunks)
		return nil
	}

	svc, err := openServices(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := ingest.NewIndexer(svc.embedder, svc.index).Index(ctx, result.Chunks)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Indexed %d chunks from %d documents\n", n, len(docs)-len(result.Skipped))
	return nil
}

func printSkipped(w io.Writer, result ingest.Result) {
	for _, skipped := range result.Skipped {
		fmt.Fprintf(w, "Skipped %s: %v\n", skipped.Filename, skipped.Err)
	}
}
