// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Один Client обслуживает три роли photoarch: vision caption, перевод
// caption на немецкий и эмбеддинги для контент-сигнала сегментации.
// Работает только через интерфейсы pkg/llm.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ilkoid/photoarch/pkg/config"
	"github.com/ilkoid/photoarch/pkg/llm"
	"github.com/ilkoid/photoarch/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// captionPrompt — инструкция vision модели.
//
// Короткое предложение в духе BLIP («a man and a woman posing for a photo
// on a city street») — из него потом извлекаются keywords, длинные
// художественные описания только мешают.
const captionPrompt = "Describe this photo in one short factual English sentence, " +
	"like an image caption dataset. No preamble, no quotes, lowercase."

// Client реализует llm.Captioner, llm.Translator и llm.Embedder
// поверх OpenAI-совместимых API.
//
// Каждая роль держит собственный API клиент со своим ключом и BaseURL:
// vision и chat часто живут у разных провайдеров (Zai, DeepSeek и т.д.),
// а embedding модель может быть вообще единственной сконфигурированной.
type Client struct {
	vision roleClient
	chat   roleClient
	embed  roleClient
}

// roleClient — API клиент одной роли вместе с её определением модели.
type roleClient struct {
	api *openai.Client
	def config.ModelDef
}

func newRoleClient(def config.ModelDef) roleClient {
	cfg := openai.DefaultConfig(def.APIKey)
	if def.BaseURL != "" {
		cfg.BaseURL = def.BaseURL
	}
	return roleClient{api: openai.NewClientWithConfig(cfg), def: def}
}

// Проверяем что Client реализует интерфейсы провайдера
var (
	_ llm.Captioner  = (*Client)(nil)
	_ llm.Translator = (*Client)(nil)
	_ llm.Embedder   = (*Client)(nil)
)

// NewClient создает клиент на основе конфигурации моделей.
func NewClient(vision, chat, embed config.ModelDef) *Client {
	return &Client{
		vision: newRoleClient(vision),
		chat:   newRoleClient(chat),
		embed:  newRoleClient(embed),
	}
}

// CaptionImage выполняет vision запрос и возвращает caption изображения.
//
// Алгоритм:
//  1. Кодируем JPEG в base64 data URL
//  2. Один user message: текстовый промпт + image part
//  3. Ответ очищаем от кавычек/markdown (utils.CleanCaption)
func (c *Client) CaptionImage(ctx context.Context, jpegData []byte) (string, error) {
	startTime := time.Now()

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)

	req := openai.ChatCompletionRequest{
		Model: c.vision.def.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: captionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}
	if c.vision.def.MaxTokens > 0 {
		req.MaxTokens = c.vision.def.MaxTokens
	}
	if c.vision.def.Temperature > 0 {
		req.Temperature = float32(c.vision.def.Temperature)
	}

	resp, err := createChatCompletion(ctx, c.vision, req)
	if err != nil {
		utils.Error("Vision request failed",
			"error", err,
			"model", c.vision.def.ModelName,
			"duration_ms", time.Since(startTime).Milliseconds())
		return "", fmt.Errorf("vision api error: %w", err)
	}

	caption := utils.CleanCaption(resp)
	utils.Debug("Vision request completed",
		"model", c.vision.def.ModelName,
		"caption", caption,
		"duration_ms", time.Since(startTime).Milliseconds())

	return caption, nil
}

// Translate переводит text с языка source на язык target через chat модель.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if text == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: c.chat.def.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You are a translator. Translate the user's text from %s to %s. "+
						"Answer with the translation only.", source, target),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	}
	if c.chat.def.MaxTokens > 0 {
		req.MaxTokens = c.chat.def.MaxTokens
	}

	resp, err := createChatCompletion(ctx, c.chat, req)
	if err != nil {
		return "", fmt.Errorf("translate api error: %w", err)
	}

	return utils.CleanCaption(resp), nil
}

// Embed вычисляет эмбеддинг текста.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := withTimeout(ctx, c.embed.def.Timeout.Std())
	defer cancel()

	resp, err := c.embed.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Model: openai.EmbeddingModel(c.embed.def.ModelName),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings api error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings api returned no data")
	}

	return resp.Data[0].Embedding, nil
}

// createChatCompletion — общий путь для vision и chat запросов.
// Возвращает текст первого choice.
func createChatCompletion(ctx context.Context, rc roleClient, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := withTimeout(ctx, rc.def.Timeout.Std())
	defer cancel()

	resp, err := rc.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("api returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// withTimeout оборачивает контекст таймаутом модели, если он задан.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
