package dto

import (
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/classifier"
)

type AnalyzeTextRequest struct {
	Text string `json:"text" validate:"required,max=50000"`
}

type AnalyzeTextResponse struct {
	ScanID int               `json:"scan_id,omitempty"`
	Result classifier.Result `json:"result"`
}

type AnalyzeLinksRequest struct {
	Text string   `json:"text" validate:"required_without=URLs"`
	URLs []string `json:"urls" validate:"required_without=Text,max=20,dive,max=2048"`
}

type InboundEmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"` // base64
}

type InboundEmailRequest struct {
	Token       string                   `json:"token" validate:"required"`
	Subject     string                   `json:"subject"`
	Text        string                   `json:"text"`
	HTML        string                   `json:"html"`
	Attachments []InboundEmailAttachment `json:"attachments"`
}

type InboundEmailResponse struct {
	ScanID    uint   `json:"scan_id"`
	RiskLevel string `json:"risk_level"`
	RiskScore int    `json:"risk_score"`
}

type ScanResponse struct {
	ID         uint      `json:"id"`
	Message    string    `json:"message"`
	RiskLevel  string    `json:"risk_level"`
	RiskScore  int       `json:"risk_score"`
	ThreatType string    `json:"threat_type"`
	CreatedAt  time.Time `json:"created_at"`
}

type ForwardingAddressResponse struct {
	Address string `json:"address"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type ChatResponse struct {
	Reply  string `json:"reply"`
	Source string `json:"source"` // knowledge_base | assistant
}
