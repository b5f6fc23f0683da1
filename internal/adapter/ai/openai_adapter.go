package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/domain"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
)

const systemPrompt = "You are an expert incident analyst. Provide clear, actionable insights from incident data."

// OpenAIProvider generates narrative summaries via the OpenAI chat API
type OpenAIProvider struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	maxAttempts int
	client      *http.Client
}

// NewOpenAIProvider creates a new OpenAI narrative provider
func NewOpenAIProvider(config ports.SummaryConfig) *OpenAIProvider {
	if config.Model == "" {
		config.Model = "gpt-4"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1000
	}
	if config.Temperature <= 0 {
		config.Temperature = 0.7
	}
	if config.TimeoutMs <= 0 {
		config.TimeoutMs = 30000
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}

	return &OpenAIProvider{
		apiKey:      config.APIKey,
		baseURL:     "https://api.openai.com/v1",
		model:       config.Model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		maxAttempts: config.MaxAttempts,
		client: &http.Client{
			Timeout: time.Duration(config.TimeoutMs) * time.Millisecond,
		},
	}
}

// Summarize builds a structured prompt from the computed metrics and asks the
// model for a narrative. Transport errors and 5xx responses are retried up to
// maxAttempts; auth failures are not.
func (p *OpenAIProvider) Summarize(ctx context.Context, input ports.SummaryInput) (string, error) {
	prompt := buildPrompt(input)

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		summary, retryable, err := p.complete(ctx, prompt)
		if err == nil {
			return summary, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("summary generation failed after %d attempts: %w", p.maxAttempts, lastErr)
}

func (p *OpenAIProvider) complete(ctx context.Context, prompt string) (string, bool, error) {
	requestBody := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  p.maxTokens,
		"temperature": p.temperature,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("OpenAI API error: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", true, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", false, fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), false, nil
}

// Validate checks that the OpenAI API is reachable with the configured key
func (p *OpenAIProvider) Validate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("OpenAI API health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAI API returned status: %d", resp.StatusCode)
	}
	return nil
}

// buildPrompt renders the metrics into a structured prompt. Breakdown rows
// are already deterministically ordered, so the prompt is stable for a given
// batch.
func buildPrompt(input ports.SummaryInput) string {
	var b strings.Builder

	b.WriteString("Analyze the following incident report data and provide a clear, concise summary:\n\n")
	b.WriteString("Incident Analysis:\n")
	fmt.Fprintf(&b, "- Total Incidents: %d\n", input.Metrics.Total)
	fmt.Fprintf(&b, "- Resolved: %d\n", input.Metrics.ResolvedCount)
	fmt.Fprintf(&b, "- Unresolved: %d\n", input.Metrics.UnresolvedCount)
	fmt.Fprintf(&b, "- Resolution Rate: %.1f%%\n", input.Metrics.ResolutionRate)
	fmt.Fprintf(&b, "- Average Resolution Time: %.1f hours\n", input.Metrics.AvgResolutionTimeHours)
	fmt.Fprintf(&b, "- SLA Compliance Rate: %.1f%%\n\n", input.Metrics.SLAComplianceRate)

	writeDistribution(&b, "Priority Distribution", input.ByPriority)
	writeDistribution(&b, "Department Distribution", input.ByDepartment)
	writeDistribution(&b, "Category Distribution", input.ByCategory)

	b.WriteString("Please provide:\n")
	b.WriteString("1. A brief overview of the incident landscape\n")
	b.WriteString("2. Key observations about priorities and categories\n")
	b.WriteString("3. Notable trends in resolution and SLA compliance\n")
	b.WriteString("4. Any significant patterns or concerns\n")
	b.WriteString("5. Recommendations for improvement\n\n")
	b.WriteString("Format the response in clear paragraphs with proper line breaks.")

	return b.String()
}

func writeDistribution(b *strings.Builder, heading string, rows []domain.DimensionBreakdown) {
	fmt.Fprintf(b, "%s:\n", heading)
	for _, row := range rows {
		fmt.Fprintf(b, "- %s: %d total, %d breached SLA (%.1f%% compliant)\n",
			row.Key, row.Total, row.SLABreached, row.ComplianceRate)
	}
	b.WriteString("\n")
}
