package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/school-diary/backend/internal/config"
)

// NotifyService delivers generated student credentials to the parent-facing
// webhook. Delivery is best effort; admission never blocks on it.
type NotifyService struct {
	cfg    config.NotifyConfig
	client *http.Client
}

// CredentialNotice is the webhook payload.
type CredentialNotice struct {
	ToEmail     string `json:"toEmail"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	StudentName string `json:"studentName"`
	FatherName  string `json:"fatherName"`
}

func NewNotifyService(cfg config.NotifyConfig) *NotifyService {
	return &NotifyService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// SendCredentials posts the notice to the configured webhook. A missing URL
// disables delivery silently; any other failure is logged and dropped.
func (s *NotifyService) SendCredentials(notice CredentialNotice) {
	if s.cfg.WebhookURL == "" {
		return
	}

	body, err := json.Marshal(notice)
	if err != nil {
		log.Printf("credential notice marshal failed: %v", err)
		return
	}

	resp, err := s.client.Post(s.cfg.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("credential notice delivery failed for %s: %v", notice.ToEmail, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("credential notice delivery for %s returned %s", notice.ToEmail, resp.Status)
	}
}
