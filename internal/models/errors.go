package models

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig indicates a required setting is missing or invalid. Fatal at startup.
	ErrConfig = errors.New("invalid configuration")

	// ErrParse indicates a document could not be text-extracted.
	ErrParse = errors.New("document parse failed")

	// ErrUnsupportedFormat indicates no extractor handles the file extension.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrDuplicateDocument indicates two documents in one batch share a filename.
	ErrDuplicateDocument = errors.New("duplicate document name")

	// ErrEmbeddingService indicates the embedding call failed.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrGenerationService indicates the text generation call failed.
	ErrGenerationService = errors.New("generation service error")

	// ErrVectorStore indicates the vector store rejected a read or write.
	ErrVectorStore = errors.New("vector store error")

	// ErrEmptyContext indicates a question was asked with nothing ingested.
	ErrEmptyContext = errors.New("no document context available")

	// ErrSessionClosed indicates the chat session has already ended.
	ErrSessionClosed = errors.New("session closed")
)

// ParseError reports which document failed extraction.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
