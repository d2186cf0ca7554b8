package main

import (
	"context"
	"fmt"

	"github.com/VirajsNexus/HireVoid/internal/analysis"
	"github.com/VirajsNexus/HireVoid/internal/llm"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// agentRunner sends one prompt to the queued-analysis agent and returns its
// final text.
type agentRunner interface {
	Run(ctx context.Context, userID, sessionID, prompt string) (string, error)
}

func GetAgent(ctx context.Context, apiKey, modelName, agentName string) (agent.Agent, error) {
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}

	customAgent, err := llmagent.New(llmagent.Config{
		Name:                  agentName,
		Model:                 model,
		Description:           "Analyze uploaded resumes",
		Instruction:           analysis.Instruction(),
		GenerateContentConfig: generationConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}

	return customAgent, nil
}

// generationConfig matches the settings of the synchronous Gemini path.
func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](llm.DefaultTemperature),
		MaxOutputTokens: llm.DefaultMaxOutputTokens,
	}
}

type adkAgent struct {
	name     string
	runner   *runner.Runner
	sessions session.Service
}

func newADKAgent(ctx context.Context, apiKey, modelName, agentName string) (*adkAgent, error) {
	analyzer, err := GetAgent(ctx, apiKey, modelName, agentName)
	if err != nil {
		return nil, err
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        analyzer.Name(),
		Agent:          analyzer,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &adkAgent{name: agentName, runner: r, sessions: sessions}, nil
}

// Run uses a fresh agent session per call and deletes it afterwards.
func (a *adkAgent) Run(ctx context.Context, userID, sessionID, prompt string) (string, error) {
	created, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   a.name,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create agent session: %w", err)
	}
	defer func() {
		_ = a.sessions.Delete(ctx, &session.DeleteRequest{
			AppName:   created.Session.AppName(),
			UserID:    created.Session.UserID(),
			SessionID: created.Session.ID(),
		})
	}()

	stream := a.runner.Run(ctx, created.Session.UserID(), created.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}

	if output == "" {
		return "", fmt.Errorf("empty agent response")
	}
	return output, nil
}
