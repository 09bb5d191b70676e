package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a minimal chat message.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Client sends a message history to a chat model and returns its reply.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Config selects the model and credentials for OpenAIClient.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient calls the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs an OpenAI-backed client.  An empty model falls
// back to a small chat model.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(oc), model: model}
}

// Chat sends the message history to the chat completion API and returns the
// assistant's response.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: 0.4,
		MaxTokens:   160,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// EmpathyPrompt keeps the model to short, supportive replies.  It never asks
// the model to diagnose or to decide which screening to run.
const EmpathyPrompt = "You are a warm, supportive listener on a wellness platform. " +
	"Reply in two or three short sentences. Acknowledge the feeling the user describes and invite them to share a little more. " +
	"Do not diagnose, do not give medical advice, and do not mention medication."

// ErrEmptyReply is returned when the model answers with nothing usable.
var ErrEmptyReply = errors.New("llm returned an empty reply")

// Empathizer turns a free-form user message into a short supportive reply.
type Empathizer struct {
	client  Client
	timeout time.Duration
}

// NewEmpathizer wraps client.  A non-positive timeout defaults to 8 seconds.
func NewEmpathizer(client Client, timeout time.Duration) *Empathizer {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Empathizer{client: client, timeout: timeout}
}

// Empathize asks the model for a supportive reply to message.
func (e *Empathizer) Empathize(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	reply, err := e.client.Chat(ctx, []Message{
		{Role: openai.ChatMessageRoleSystem, Content: EmpathyPrompt},
		{Role: openai.ChatMessageRoleUser, Content: message},
	})
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
