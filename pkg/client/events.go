package client

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
)

// Subscriber consome o stream SSE de /api/events e entrega cada mudança no
// canal. A conexão é refeita com backoff simples enquanto o contexto viver.
type Subscriber struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewSubscriber(baseURL, token string) *Subscriber {
	return &Subscriber{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		// sem timeout: a conexão SSE fica aberta indefinidamente
		HTTP: &http.Client{},
	}
}

func (s *Subscriber) Subscribe(ctx context.Context, collection string) (<-chan listing.Change, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan listing.Change, 8)

	var once sync.Once
	stop := func() { once.Do(cancel) }

	go func() {
		defer close(ch)
		for ctx.Err() == nil {
			if err := s.streamOnce(ctx, collection, ch); err != nil && ctx.Err() == nil {
				select {
				case <-time.After(2 * time.Second):
				case <-ctx.Done():
				}
			}
		}
	}()

	return ch, stop, nil
}

func (s *Subscriber) streamOnce(ctx context.Context, collection string, ch chan<- listing.Change) error {
	vals := url.Values{}
	if collection != "" {
		vals.Set("collection", collection)
	}
	if s.Token != "" {
		vals.Set("token", s.Token)
	}
	endpoint := s.BaseURL + "/api/events"
	if q := vals.Encode(); q != "" {
		endpoint += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		var change listing.Change
		if err := json.Unmarshal([]byte(payload), &change); err != nil {
			continue
		}
		select {
		case ch <- change:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func (s *Subscriber) httpClient() *http.Client {
	if s.HTTP != nil {
		return s.HTTP
	}
	return http.DefaultClient
}
