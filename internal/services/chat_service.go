package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"mentorbot/internal/models"
)

// GenerationErrorMessage is the single fixed unit surfaced to the user when
// the generation source fails. No partial buffer is ever emitted with it.
const GenerationErrorMessage = "⚠️ LLM error, please try again later."

// ChatService orchestrates the serving path: history load, streamed
// generation, segmentation into outbound units, history save and event
// publication.
type ChatService struct {
	history *HistoryService
	prompts *PromptService
	bus     EventBus
	client  *http.Client

	ollamaURL string
	model     string
	maxLen    int
}

// NewChatService creates a new chat service.
func NewChatService(history *HistoryService, prompts *PromptService, bus EventBus, ollamaURL, model string, maxLen int) *ChatService {
	return &ChatService{
		history:   history,
		prompts:   prompts,
		bus:       bus,
		client:    &http.Client{Timeout: 120 * time.Second},
		ollamaURL: ollamaURL,
		model:     model,
		maxLen:    maxLen,
	}
}

// HandleMessage runs one inbound user message through generation and
// returns the outbound units in emission order.
//
// On generation-source failure (connection error or non-success status,
// before or during streaming) it returns exactly one fixed error unit;
// nothing is saved and no event is published. Persistence failures
// propagate to the caller.
func (s *ChatService) HandleMessage(ctx context.Context, userID, userMessage string) ([]string, error) {
	history, err := s.history.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history = append(history, models.ConversationTurn{
		Role:      models.RoleUser,
		Content:   userMessage,
		Timestamp: time.Now().UTC(),
	})

	messages := make([]models.ChatMessage, 0, len(history)+1)
	if prompt := s.prompts.SystemPrompt(); prompt != "" {
		messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: prompt})
	}
	for _, turn := range history {
		messages = append(messages, models.ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	reqBody, err := json.Marshal(models.ChatRequest{
		Model:    s.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ollamaURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("⚠️  [STREAM] Generation request failed for %s: %v", userID, err)
		generationFailures.Inc()
		return []string{GenerationErrorMessage}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("⚠️  [STREAM] Generation source error (status %d): %s", resp.StatusCode, string(body))
		generationFailures.Inc()
		return []string{GenerationErrorMessage}, nil
	}

	units, reply, err := s.consumeStream(resp.Body)
	if err != nil {
		log.Printf("⚠️  [STREAM] Stream aborted for %s: %v", userID, err)
		generationFailures.Inc()
		return []string{GenerationErrorMessage}, nil
	}

	history = append(history, models.ConversationTurn{
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	})
	if err := s.history.Save(ctx, userID, history); err != nil {
		return nil, fmt.Errorf("failed to save history: %w", err)
	}

	// Fire-and-forget: a publish failure loses one progress update but must
	// not fail a reply the user has already received.
	if err := s.bus.Publish(ctx, models.Event{
		Type:    models.EventHistorySaved,
		UserID:  userID,
		Message: reply,
	}); err != nil {
		log.Printf("⚠️  [PUBSUB] Failed to publish %s event for %s: %v", models.EventHistorySaved, userID, err)
	}

	return units, nil
}

// consumeStream reads the generation source's NDJSON stream, feeding
// content fragments through the segmenter. Malformed lines are logged and
// skipped; done is the authoritative end of stream regardless of any
// remaining network buffer.
func (s *ChatService) consumeStream(r io.Reader) ([]string, string, error) {
	scanner := bufio.NewScanner(r)

	// 1MB line buffer; the default 64KB can truncate large chunks
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	segmenter := NewSegmenter(s.maxLen)
	var fullReply strings.Builder
	var units []string
	done := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var chunk models.ChatStreamChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			log.Printf("⚠️  [STREAM] Skipping malformed stream line: %v", err)
			continue
		}

		if chunk.Message.Content != "" {
			fullReply.WriteString(chunk.Message.Content)
			units = append(units, segmenter.Push(chunk.Message.Content)...)
		}

		if chunk.Done {
			done = true
			break
		}
	}

	if err := scanner.Err(); err != nil && !done {
		return nil, "", fmt.Errorf("stream read failed: %w", err)
	}

	units = append(units, segmenter.Flush()...)
	segmentsEmitted.Add(float64(len(units)))

	return units, fullReply.String(), nil
}
