package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("invalid header")
	err := fmt.Errorf("ingest: %w", &ParseError{Filename: "a.pdf", Err: cause})

	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConfig)

	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "a.pdf", pe.Filename)
	assert.Equal(t, "parse a.pdf: invalid header", pe.Error())
}

func TestChunk_Metadata(t *testing.T) {
	c := Chunk{Filename: "a.pdf", Page: 2, Index: 1, Source: SourceID(2, 1), Content: "x"}

	assert.Equal(t, map[string]string{
		"filename": "a.pdf",
		"page":     "2",
		"chunk":    "1",
		"source":   "2-1",
	}, c.Metadata())
}

func TestMatch_Accessors(t *testing.T) {
	m := Match{Metadata: Chunk{Filename: "b.pdf", Page: 7}.Metadata()}
	assert.Equal(t, "b.pdf", m.Filename())
	assert.Equal(t, 7, m.Page())

	assert.Equal(t, 0, Match{}.Page())
}
