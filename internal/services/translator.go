package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/utils"
)

// Translator traduz mensagens de erro via serviço externo opcional.
// A tradução nunca bloqueia: em qualquer falha a mensagem original vence.
type Translator struct {
	APIKey string
	URL    string
	Client *http.Client
}

func NewTranslator(apiKey, url string) *Translator {
	return &Translator{
		APIKey: apiKey,
		URL:    url,
		Client: &http.Client{Timeout: 3 * time.Second},
	}
}

type translateRequest struct {
	Text   string `json:"q"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate devolve a mensagem traduzida quando o serviço responde,
// ou a mensagem original em qualquer outro caso.
func (t *Translator) Translate(ctx context.Context, msg string) string {
	if t == nil || strings.TrimSpace(t.APIKey) == "" || strings.TrimSpace(t.URL) == "" {
		return msg
	}
	body, err := json.Marshal(translateRequest{Text: msg, Target: "pt-BR"})
	if err != nil {
		return msg
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return msg
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.client().Do(req)
	if err != nil {
		utils.LogEvent("", "translator", "translate", "falha na chamada: "+err.Error())
		return msg
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		utils.LogEvent("", "translator", "translate", "status inesperado: "+resp.Status)
		return msg
	}
	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return msg
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return msg
	}
	return out.TranslatedText
}

func (t *Translator) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}
