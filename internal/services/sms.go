package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// SMSDispatcher — collaborateur de messagerie : fait parvenir un code OTP au
// téléphone donné. L'implémentation HTTP poste un formulaire multipart à l'API
// de vérification externe.
type SMSDispatcher interface {
	DispatchCode(ctx context.Context, phone, code string) error
}

type HTTPSMSDispatcher struct {
	apiURL  string
	apiKey  string
	apiSalt string
	client  *http.Client
}

func NewHTTPSMSDispatcher() *HTTPSMSDispatcher {
	apiURL := os.Getenv("SMS_API_URL")
	if apiURL == "" {
		apiURL = "https://api.codemindstudio.in/api/start_verification"
	}
	return &HTTPSMSDispatcher{
		apiURL:  apiURL,
		apiKey:  os.Getenv("SMS_API_KEY"),
		apiSalt: os.Getenv("SMS_API_SALT"),
		client: &http.Client{
			Timeout: 15 * time.Second, // un SMS lent ne doit pas bloquer la requête indéfiniment
		},
	}
}

func (d *HTTPSMSDispatcher) DispatchCode(ctx context.Context, phone, code string) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("otp", code)
	_ = form.WriteField("type", "SMS")
	_ = form.WriteField("numberOrMail", phone)
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Api-Key", d.apiKey)
	req.Header.Set("Api-Salt", d.apiSalt)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("envoi SMS: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Message string `json:"message"`
		Status  bool   `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("réponse SMS illisible: %w", err)
	}
	if !body.Status {
		return fmt.Errorf("envoi SMS refusé: %s", body.Message)
	}

	log.Printf("📱 OTP envoyé au %s", phone)
	return nil
}
