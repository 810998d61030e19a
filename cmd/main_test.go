package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-chat/internal/models"
	"pdf-chat/internal/rag"
)

// execute runs the root command with args against a config path that does
// not exist, so defaults apply.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	defer func() {
		rootCmd.SetArgs(nil)
		ingestDryRun = false
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, configFilePath, flag.DefValue)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["ingest"])
	assert.True(t, names["ask"])
	assert.True(t, names["chat"])
}

func TestIngestCmd_RequiresFiles(t *testing.T) {
	_, err := execute(t, "ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestChatCmd_HasFileFlag(t *testing.T) {
	flag := chatCmd.Flags().Lookup("file")
	require.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
}

func TestIngestCmd_DryRun(t *testing.T) {
	dir := t.TempDir()
	notes := writeFile(t, dir, "notes.txt", "First para-\ngraph line.\n\n\n\nSecond paragraph.")
	image := writeFile(t, dir, "photo.png", "not a document")

	out, err := execute(t, "ingest", "--dry-run", notes, image)

	require.NoError(t, err)
	assert.Contains(t, out, "Skipped photo.png")

	start := strings.Index(out, "[")
	require.GreaterOrEqual(t, start, 0)
	var chunks []models.Chunk
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &chunks))
	require.Len(t, chunks, 1)
	assert.Equal(t, "notes.txt", chunks[0].Filename)
	assert.Equal(t, "1-0", chunks[0].Source)
	assert.Equal(t, "First paragraph line.\n\nSecond paragraph.", chunks[0].Content)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "ingest", "--dry-run", filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.pdf")
}

func TestIngestCmd_InvalidConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "vector_store:\n  type: pinecone\n")
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "--dry-run", "--config", path, "x.txt"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, models.ErrConfig)
}

func TestPrintAnswer(t *testing.T) {
	buf := new(bytes.Buffer)

	printAnswer(buf, rag.Answer{
		Text:      "Paris.",
		Citations: []rag.Citation{{Filename: "a.pdf", Page: 2}},
	})

	assert.Equal(t, "Paris.\n\nSources:\n  - a.pdf, page 2\n", buf.String())
}

func TestPrintAnswer_NoSources(t *testing.T) {
	buf := new(bytes.Buffer)

	printAnswer(buf, rag.Answer{Text: models.NeedDocumentMessage})

	assert.Equal(t, models.NeedDocumentMessage+"\n", buf.String())
}

func TestIngestCmd_DryRunWithShippedConfig(t *testing.T) {
	notes := writeFile(t, t.TempDir(), "notes.txt", "Shipped config.")
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "--dry-run", "--config", filepath.Join("..", "configs", "config.yaml"), notes})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestDryRun = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"content": "Shipped config."`)
}
