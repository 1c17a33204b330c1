package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"classroom/internal/repository"

	"github.com/rs/zerolog"
)

const MaxChatMessageChars = 4000

var specialTokens = []string{
	"<s>", "</s>", "[INST]", "[/INST]",
	"<|endoftext|>", "<|im_start|>", "<|im_end|>", "<|assistant|>", "<|user|>",
}

type ChatService interface {
	// Reply forwards the message and returns the cleaned up text response.
	Reply(ctx context.Context, userID, message string) (string, error)
}

type chatService struct {
	client        InferenceClient
	limiter       repository.RateLimitRepository // nil disables limiting
	limit         int
	maxReplyChars int
	logger        zerolog.Logger
}

func NewChatService(client InferenceClient, limiter repository.RateLimitRepository, limitPerMinute, maxReplyChars int, logger zerolog.Logger) ChatService {
	return &chatService{
		client:        client,
		limiter:       limiter,
		limit:         limitPerMinute,
		maxReplyChars: maxReplyChars,
		logger:        logger.With().Str("service", "ChatService").Logger(),
	}
}

func (s *chatService) Reply(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", validation("message is required")
	}
	if utf8.RuneCountInString(message) > MaxChatMessageChars {
		return "", validation("message must be at most 4000 characters")
	}

	if s.limiter != nil && s.limit > 0 {
		ok, err := s.limiter.Allow(ctx, "chat:"+userID, s.limit, time.Minute)
		if err != nil {
			// Limiter outages do not block chatting.
			s.logger.Warn().Err(err).Msg("Rate limiter unavailable")
		} else if !ok {
			return "", ErrRateLimited
		}
	}

	raw, err := s.client.Generate(ctx, message)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Inference request failed")
		return "", err
	}
	return CleanReply(raw, message, s.maxReplyChars), nil
}

// CleanReply strips an echoed prompt and model control tokens, then trims
// and truncates to maxChars runes.
func CleanReply(raw, prompt string, maxChars int) string {
	text := strings.TrimSpace(raw)
	if prompt != "" && strings.HasPrefix(text, prompt) {
		text = strings.TrimPrefix(text, prompt)
	}
	for _, tok := range specialTokens {
		text = strings.ReplaceAll(text, tok, "")
	}
	text = strings.TrimSpace(text)

	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:maxChars])) + "..."
	}
	return text
}
