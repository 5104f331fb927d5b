package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/goccy/go-json"
)

const chatSystemPrompt = "You are ScamRadar's safety assistant. Answer questions about scams, " +
	"phishing, online fraud and account safety in plain language, in at most 120 words. " +
	"Never ask the user for passwords, codes or payment details."

// knowledgeBase holds canned answers keyed by topic keywords. Matching any
// keyword wins over the remote assistant, so the common questions work with
// no API key configured.
var knowledgeBase = []struct {
	keywords []string
	answer   string
}{
	{
		keywords: []string{"phishing", "phish"},
		answer: "Phishing messages pretend to be from a company you trust to steal logins or card details. " +
			"Check the sender address carefully, never tap links in unexpected messages, and go to the " +
			"official website or app directly instead.",
	},
	{
		keywords: []string{"parcel", "package", "delivery", "post"},
		answer: "Fake delivery texts are one of the most common scams. Couriers never ask for payment or " +
			"personal details by text link. Track parcels only through the courier's official app or website.",
	},
	{
		keywords: []string{"password", "2fa", "two-factor", "verification code"},
		answer: "Never share passwords or one-time codes with anyone, including people claiming to be support " +
			"staff. Turn on two-factor authentication and use a unique password per site.",
	},
	{
		keywords: []string{"romance", "dating"},
		answer: "Romance scammers build trust for weeks before asking for money, gift cards or crypto. " +
			"Never send money to someone you have not met in person, and be wary of anyone who avoids " +
			"video calls.",
	},
	{
		keywords: []string{"report", "scammed", "victim"},
		answer: "If you have been scammed, contact your bank immediately to freeze payments, change affected " +
			"passwords, and file a report in the Community tab so others are warned too.",
	},
	{
		keywords: []string{"gift card", "crypto", "bitcoin", "wire transfer"},
		answer: "Legitimate businesses and government agencies never demand payment in gift cards, crypto or " +
			"wire transfers. That request alone is proof of a scam.",
	},
}

// ChatService answers safety questions, first from the built-in knowledge
// base, then from a remote model when configured.
type ChatService struct {
	cfg    *config.Config
	client *http.Client
}

func NewChatService(cfg *config.Config) *ChatService {
	return &ChatService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.AITimeout},
	}
}

func (s *ChatService) Answer(ctx context.Context, message string) (*dto.ChatResponse, error) {
	lower := strings.ToLower(message)
	for _, entry := range knowledgeBase {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return &dto.ChatResponse{Reply: entry.answer, Source: "knowledge_base"}, nil
			}
		}
	}

	if s.cfg.OpenAIAPIKey == "" {
		return &dto.ChatResponse{
			Reply: "I can help with questions about phishing, fake deliveries, romance scams, passwords " +
				"and what to do if you've been scammed. Try asking about one of those, or run a suspicious " +
				"message through the analyzer.",
			Source: "knowledge_base",
		}, nil
	}

	reply, err := s.askModel(ctx, message)
	if err != nil {
		return nil, err
	}
	return &dto.ChatResponse{Reply: reply, Source: "assistant"}, nil
}

func (s *ChatService) askModel(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"model": s.cfg.OpenAIModel,
		"messages": []map[string]string{
			{"role": "system", "content": chatSystemPrompt},
			{"role": "user", "content": message},
		},
		"max_tokens": 300,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIAPIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode assistant response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
