package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pdf-chat/internal/rag"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	svc, err := openServices(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	session, err := rag.NewSession()
	if err != nil {
		return err
	}
	defer session.End()

	answer, err := svc.chat(cfg).Ask(ctx, session, question)
	if err != nil {
		return err
	}
	printAnswer(cmd.OutOrStdout(), answer)
	return nil
}

func printAnswer(w io.Writer, answer rag.Answer) {
	fmt.Fprintln(w, answer.Text)
	if len(answer.Citations) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for _, c := range answer.Citations {
		fmt.Fprintf(w, "  - %s, page %d\n", c.Filename, c.Page)
	}
}
