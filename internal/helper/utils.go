package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-chat/internal/models"
)

// recordNamespace scopes the name-based UUIDs of stored chunks.
var recordNamespace = uuid.MustParse("4f0c9c2e-7d5b-4b8e-9a61-2f3c1d7e8a90")

// GenerateUUID creates a random unique UUID string
func GenerateUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %v", err)
	}
	return id.String(), nil
}

// RecordID derives a stable id from a chunk's provenance, so re-ingesting a
// document overwrites its previous vectors.
func RecordID(c models.Chunk) string {
	name := strings.Join([]string{c.Filename, strconv.Itoa(c.Page), strconv.Itoa(c.Index)}, "|")
	return uuid.NewSHA1(recordNamespace, []byte(name)).String()
}

// pretty print
func PrettyPrint(w io.Writer, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return
	}
	fmt.Fprintln(w, string(b))
}

// CreateFolder makes sure path exists as a directory.
func CreateFolder(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %v", path, err)
	}
	return nil
}

// SetupLogger configures the global zerolog logger. Console mode writes
// human readable lines to stderr, otherwise JSON.
func SetupLogger(level string, console bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(lvl)

	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
}
