package service

import (
	"bytes"
	"casepilot/internal/config"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Attachment is a file to attach to an outgoing email
type Attachment struct {
	Filename string
	Content  []byte
}

// MailerService sends email through a Resend-style HTTP API
type MailerService struct {
	config *config.MailConfig
	client *http.Client
}

// NewMailerService creates a new mailer service
func NewMailerService(cfg *config.MailConfig) *MailerService {
	return &MailerService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Send delivers one HTML email and returns the provider's message id. With no
// API key configured it logs and returns a mock id so local flows still work.
func (s *MailerService) Send(ctx context.Context, to, subject, htmlBody string, attachments []Attachment) (string, error) {
	if !s.config.IsEnabled() {
		id := "mock-" + uuid.New().String()[:8]
		log.Printf("mail API not configured, pretending to send %q to %s (id %s)", subject, to, id)
		return id, nil
	}

	type attachmentBody struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	reqBody := map[string]interface{}{
		"from":    s.config.From,
		"to":      []string{to},
		"subject": subject,
		"html":    htmlBody,
	}
	if len(attachments) > 0 {
		encoded := make([]attachmentBody, 0, len(attachments))
		for _, a := range attachments {
			encoded = append(encoded, attachmentBody{
				Filename: a.Filename,
				Content:  base64.StdEncoding.EncodeToString(a.Content),
			})
		}
		reqBody["attachments"] = encoded
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/emails", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	var sent struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &sent); err != nil {
		return "", err
	}
	return sent.ID, nil
}
