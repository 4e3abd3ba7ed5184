// Package openai asks a chat completion model for song recommendations.
package openai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/igolaizola/moodtunes/pkg/service"
	"github.com/igolaizola/moodtunes/pkg/visitor"
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You will be provided with a city name, local time, and weather details ('description' and 'feels like') of a user. " +
	"Based on this information, please recommend at least 10 songs that relate to the time, place, and weather. " +
	"The output should be in JSON format, containing an array named 'songs', where each entry is an object with 'title' and 'artist' keys. " +
	"For example: `{\"songs\": [{\"title\": \"Song Name\", \"artist\": \"Artist Name\"}, ...]}`."

const (
	DefaultModel = goopenai.GPT4oMini
	maxTokens    = 1024
)

type Config struct {
	Token   string
	Model   string
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Debug   bool
}

type Client struct {
	client  *goopenai.Client
	model   string
	timeout time.Duration
	debug   bool
}

func New(cfg *Config) *Client {
	oaiCfg := goopenai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		oaiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Client != nil {
		oaiCfg.HTTPClient = cfg.Client
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client:  goopenai.NewClientWithConfig(oaiCfg),
		model:   model,
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

// Prompt returns the user message describing the visitor context. The
// feels-like temperature is rounded to whole degrees.
func Prompt(vc visitor.Context) string {
	return fmt.Sprintf("%s, %s, %s, feels like %d degrees", vc.City, vc.Time(), vc.Description, int(math.Round(vc.FeelsLike)))
}

func (c *Client) request(vc visitor.Context) goopenai.ChatCompletionRequest {
	return goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: Prompt(vc)},
		},
		Temperature: 1,
		TopP:        1,
		MaxTokens:   maxTokens,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}

// RequestSongs returns the raw text of the model's recommendation. The text
// is empty if the model returned no choices; the number of songs is not
// checked here.
func (c *Client) RequestSongs(ctx context.Context, vc visitor.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.request(vc)
	if c.debug {
		zerolog.Ctx(ctx).Debug().Str("model", req.Model).Str("prompt", req.Messages[1].Content).Msg("openai: chat completion request")
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", service.Wrap(service.Recommendation, fmt.Errorf("openai: couldn't create chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		zerolog.Ctx(ctx).Warn().Str("id", resp.ID).Msg("openai: no choices returned")
		return "", nil
	}
	choice := resp.Choices[0]
	if c.debug {
		zerolog.Ctx(ctx).Debug().Str("finish_reason", string(choice.FinishReason)).Str("content", choice.Message.Content).Msg("openai: chat completion response")
	}
	return choice.Message.Content, nil
}
