package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/qs3c/repoeval_go_server/config"
)

var ErrAiUnavailable = errors.New("AI 评分服务不可用")

// AiGateway 把特征记录提交给大模型评分，返回原始文本
type AiGateway interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

const systemPrompt = "You are a senior software engineer reviewing GitHub repositories. " +
	"You always respond with a single valid JSON object and nothing else."

// OpenAIGateway 走 OpenAI Chat Completions
type OpenAIGateway struct {
	client *openai.Client
	model  string
}

func NewOpenAIGateway(cfg *config.OpenAIConfig) *OpenAIGateway {
	return &OpenAIGateway{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

func (g *OpenAIGateway) Chat(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		log.Printf("OpenAI 调用失败: %v", err)
		return "", fmt.Errorf("%w: %v", ErrAiUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: 没有返回结果", ErrAiUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// NoopGateway 没有配置 API Key 时使用，返回固定的占位评分
// 开发环境可以不依赖外部服务走通整个分析流程
type NoopGateway struct{}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{}
}

func (g *NoopGateway) Chat(ctx context.Context, prompt string) (string, error) {
	return `{"summary":"AI 评分未启用，以下为占位结果。","strengths":["仓库数据采集完整"],"improvements":["配置 openai.api_key 后可获得真实评分"],"scores":{"readme":0,"test":0,"commit":0,"cicd":0}}`, nil
}
