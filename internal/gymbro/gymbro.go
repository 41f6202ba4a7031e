// Package gymbro answers free text with an LLM speaking as a gym buddy.
package gymbro

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/yeabuddy/core/logger"
)

// Persona text wrapped around every user turn sent to the model.
const (
	Preprompt  = "Act as a gymbro buddy. Only answer gym related prompts, if you are asked about something else, say 'I am a gymbro, I only talk about gym stuff'. "
	Postprompt = " Keep you answer short, never exceed 512 characters. Use emojis to make it more fun. If you don't know the answer, say 'Bro I don't know, I am just a gymbro'."
)

// Fixed replies.
const (
	EmptyReply   = "Sorry, I could not generate a response."
	ErrorReply   = "Sorry, I encountered an error while processing your message."
	OfflineReply = "Mistral is offline. I am dumb now, I can only record workouts..."
)

// Service keeps per-user history and relays text to the Completer.
type Service struct {
	completer Completer
	history   HistoryStore
}

// NewService wires a completer and history store. A nil completer makes every
// reply the offline notice.
func NewService(completer Completer, history HistoryStore) *Service {
	if history == nil {
		history = NewMemoryHistory(DefaultHistorySize)
	}
	return &Service{completer: completer, history: history}
}

// Enabled reports whether an LLM is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.completer != nil
}

// Reply sends text with the owner's recent turns and returns the answer.
// Errors are logged and turned into an apology; history is only updated on success.
func (s *Service) Reply(ctx context.Context, owner int64, text string) string {
	if !s.Enabled() {
		return OfflineReply
	}
	past, err := s.history.Load(ctx, owner)
	if err != nil {
		logger.Warn(ctx, logger.ComponentLLM, "history.load_failed",
			slog.Int64("user_id", owner), slog.String("error", err.Error()))
		past = nil
	}
	turns := append(past, Message{Role: RoleUser, Content: text})

	answer, err := s.completer.Complete(ctx, wrapPersona(turns))
	if err != nil {
		logger.Error(ctx, logger.ComponentLLM, "completion.failed",
			slog.Int64("user_id", owner), slog.Int("turns", len(turns)), slog.String("error", err.Error()))
		return ErrorReply
	}
	if strings.TrimSpace(answer) == "" {
		answer = EmptyReply
	}
	if err := s.history.Append(ctx, owner,
		Message{Role: RoleUser, Content: text},
		Message{Role: RoleAssistant, Content: answer},
	); err != nil {
		logger.Warn(ctx, logger.ComponentLLM, "history.append_failed",
			slog.Int64("user_id", owner), slog.String("error", err.Error()))
	}
	logger.Debug(ctx, logger.ComponentLLM, "completion.ok",
		slog.Int64("user_id", owner), slog.Int("turns", len(turns)))
	return answer
}

// wrapPersona returns a copy of turns with the persona around user turns only.
func wrapPersona(turns []Message) []Message {
	out := make([]Message, len(turns))
	for i, m := range turns {
		out[i] = m
		if m.Role == RoleUser {
			out[i].Content = Preprompt + m.Content + Postprompt
		}
	}
	return out
}

func formatOwner(owner int64) string {
	return strconv.FormatInt(owner, 10)
}
