/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/storyteller/dixit"
	"github.com/caarlos0/env/v11"
)

const (
	describePrompt = `Invent an original, abstract phrase that captures the mood or idea of this picture.
Do not describe the objects in it directly. For a rabbit in a spacesuit, "adventures of alien life" is good and "animal astronaut" is not.
The phrase must be at most 30 characters long. Reply with the phrase only.`

	choosePrompt = `Pick the picture that best fits this description: %s
Reply with the picture's number only, counting from 1.`

	describeTokens = 75
	chooseTokens   = 300
)

// OpenAIConfig selects the chat completion endpoint. It is read from the
// environment.
type OpenAIConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY,required,notEmpty"`
	Model   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Timeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"60s"`
}

// LoadOpenAIConfig parses OpenAIConfig from environment variables.
func LoadOpenAIConfig() (OpenAIConfig, error) {
	var cfg OpenAIConfig
	if err := env.Parse(&cfg); err != nil {
		return OpenAIConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ImageSource returns the base64 encoded picture of a card.
type ImageSource interface {
	Encoded(key int) (string, error)
}

// OpenAI asks a chat completion model to play. Nature is the persona the
// model plays and Temperature its sampling temperature.
type OpenAI struct {
	Nature      string
	Temperature float64

	cfg    OpenAIConfig
	images ImageSource
	client *http.Client
}

var _ dixit.Agent = (*OpenAI)(nil)

// NewOpenAI returns a model-backed agent. A nil client uses a client with
// cfg.Timeout.
func NewOpenAI(cfg OpenAIConfig, images ImageSource, nature string, temperature float64, client *http.Client) *OpenAI {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	return &OpenAI{
		Nature:      nature,
		Temperature: temperature,
		cfg:         cfg,
		images:      images,
		client:      client,
	}
}

type chatPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
	N                   int           `json:"n"`
	Temperature         float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) persona(task string) chatMessage {
	return chatMessage{
		Role:    "system",
		Content: fmt.Sprintf("You are a player of a storytelling card game, answering in the role of %s. Let that role show in how you %s.", o.Nature, task),
	}
}

func (o *OpenAI) picture(card dixit.Card) (chatPart, error) {
	data, err := o.images.Encoded(card.Key)
	if err != nil {
		return chatPart{}, err
	}
	return chatPart{
		Type:     "image_url",
		ImageURL: &imageURL{URL: "data:image/png;base64," + data, Detail: "low"},
	}, nil
}

func (o *OpenAI) Describe(ctx context.Context, card dixit.Card) (string, error) {
	pic, err := o.picture(card)
	if err != nil {
		return "", err
	}

	answer, err := o.complete(ctx, chatRequest{
		Messages: []chatMessage{
			o.persona("answer"),
			{Role: "user", Content: []chatPart{{Type: "text", Text: describePrompt}, pic}},
		},
		MaxCompletionTokens: describeTokens,
	})
	if err != nil {
		return "", err
	}

	return strings.Trim(answer, " \n\t'\""), nil
}

func (o *OpenAI) Choose(ctx context.Context, clue string, candidates []dixit.Card) (dixit.Card, error) {
	parts := []chatPart{{Type: "text", Text: fmt.Sprintf(choosePrompt, clue)}}
	for _, c := range candidates {
		pic, err := o.picture(c)
		if err != nil {
			return dixit.Card{}, err
		}
		parts = append(parts, pic)
	}

	answer, err := o.complete(ctx, chatRequest{
		Messages: []chatMessage{
			o.persona("decide"),
			{Role: "user", Content: parts},
		},
		MaxCompletionTokens: chooseTokens,
	})
	if err != nil {
		return dixit.Card{}, err
	}

	n, err := strconv.Atoi(strings.Trim(answer, " \n\t'\"."))
	if err != nil {
		return dixit.Card{}, fmt.Errorf("model answered %q, want a number", answer)
	}
	if n < 1 || n > len(candidates) {
		return dixit.Card{}, fmt.Errorf("model answered %d, want 1-%d", n, len(candidates))
	}

	return candidates[n-1], nil
}

func (o *OpenAI) complete(ctx context.Context, body chatRequest) (string, error) {
	body.Model = o.cfg.Model
	body.N = 1
	body.Temperature = o.Temperature

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	res, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("completion request status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return out.Choices[0].Message.Content, nil
}
