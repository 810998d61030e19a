package rag

import (
	"slices"

	"pdf-chat/internal/helper"
	"pdf-chat/internal/models"
)

// Session is one conversation: its id and the user/assistant turns so far.
// The system prompt is rebuilt for every question and never stored.
type Session struct {
	ID      string
	history []models.Message
	closed  bool
}

func NewSession() (*Session, error) {
	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id}, nil
}

// History returns a copy of the turns recorded so far.
func (s *Session) History() []models.Message {
	return slices.Clone(s.history)
}

// End clears the history. Asking on an ended session fails with
// models.ErrSessionClosed.
func (s *Session) End() {
	s.history = nil
	s.closed = true
}

func (s *Session) Closed() bool {
	return s.closed
}

func (s *Session) record(question, reply string) {
	s.history = append(s.history,
		models.Message{Role: models.RoleUser, Content: question},
		models.Message{Role: models.RoleAssistant, Content: reply},
	)
}
