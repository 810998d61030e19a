package vectorstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-chat/internal/chromemdb"
	"pdf-chat/internal/config"
	"pdf-chat/internal/models"
	"pdf-chat/internal/qdrant"
)

func TestOpen_Chromem(t *testing.T) {
	cfg := config.Default()
	cfg.VectorStore.Path = t.TempDir()

	index, err := Open(context.Background(), cfg)

	require.NoError(t, err)
	defer index.Close()
	assert.IsType(t, &chromemdb.VectorDBManager{}, index)
	n, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_Qdrant(t *testing.T) {
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.NotFound(w, r)
			return
		}
		created = r.Method == http.MethodPut
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.VectorStore.Type = config.StoreQdrant
	cfg.VectorStore.URL = srv.URL

	index, err := Open(context.Background(), cfg)

	require.NoError(t, err)
	assert.IsType(t, &qdrant.Storage{}, index)
	assert.True(t, created)
}

func TestOpen_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.VectorStore.Type = "pinecone"

	_, err := Open(context.Background(), cfg)

	assert.ErrorIs(t, err, models.ErrConfig)
}
