package advisor

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/insureassist/backend/internal/config"
	"github.com/insureassist/backend/internal/model/conversation"
)

const systemPrompt = "You are InsureAssist, a friendly insurance advisor chatbot. " +
	"The guided questionnaire is complete and the customer already sees their policy offers. " +
	"Answer follow-up questions about coverage, premiums and benefits in plain language, " +
	"stay brief, and never invent policy terms that were not presented."

// Service phrases terminal-step replies with the configured Ark chat model.
// It is optional: when credentials are absent the conversation service runs
// on scripted replies alone.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the advisor chain against the configured model.
func NewService(ctx context.Context, cfg config.AdvisorConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile advisor chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Reply generates a free-form advisor answer over the transcript.
func (s *Service) Reply(ctx context.Context, turns []conversation.Turn, userMessage string) (string, error) {
	input := map[string]any{
		"system":  systemPrompt,
		"history": historyMessages(turns, userMessage),
		"query":   userMessage,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run advisor chain: %w", err)
	}

	log.Printf("[advisor] generated reply, length=%d", len(response.Content))
	return response.Content, nil
}

// historyMessages maps recent turns onto model messages. The final user
// turn is excluded when it duplicates the query being asked.
func historyMessages(turns []conversation.Turn, userMessage string) []*schema.Message {
	const historyLimit = 10

	if n := len(turns); n > 0 && turns[n-1].Sender == conversation.SenderUser && turns[n-1].Text == userMessage {
		turns = turns[:n-1]
	}
	if len(turns) > historyLimit {
		turns = turns[len(turns)-historyLimit:]
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Sender {
		case conversation.SenderUser:
			history = append(history, schema.UserMessage(turn.Text))
		case conversation.SenderBot:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return history
}
