// Package client implementa listing.Gateway sobre a API HTTP, para que os
// controladores de listagem rodem fora do processo do servidor.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
)

// Gateway fala com uma coleção da API. O token é o JWT retornado pelo login.
type Gateway[T listing.Record] struct {
	BaseURL    string
	Collection string
	Token      string
	HTTP       *http.Client
}

func New[T listing.Record](baseURL, collection, token string) *Gateway[T] {
	return &Gateway[T]{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Collection: collection,
		Token:      token,
		HTTP:       &http.Client{Timeout: 15 * time.Second},
	}
}

type listResponse[T any] struct {
	Rows       []T `json:"rows"`
	TotalCount int `json:"totalCount"`
}

func (g *Gateway[T]) List(ctx context.Context, q listing.Query) (listing.Page[T], error) {
	vals := url.Values{}
	vals.Set("page", strconv.Itoa(q.Page))
	vals.Set("page_size", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		vals.Set("search", q.Search)
	}

	var out listResponse[T]
	if err := g.do(ctx, http.MethodGet, g.path("")+"?"+vals.Encode(), nil, &out); err != nil {
		return listing.Page[T]{}, err
	}
	return listing.Page[T]{Rows: out.Rows, TotalCount: out.TotalCount}, nil
}

func (g *Gateway[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := g.do(ctx, http.MethodGet, g.path(id), nil, &out)
	return out, err
}

func (g *Gateway[T]) Insert(ctx context.Context, row T) (T, error) {
	var out T
	err := g.do(ctx, http.MethodPost, g.path(""), row, &out)
	return out, err
}

func (g *Gateway[T]) Update(ctx context.Context, id string, row T) (T, error) {
	var out T
	err := g.do(ctx, http.MethodPut, g.path(id), row, &out)
	return out, err
}

func (g *Gateway[T]) Delete(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, g.path(id), nil, nil)
}

func (g *Gateway[T]) SetActive(ctx context.Context, id string, active bool) (T, error) {
	var out T
	err := g.do(ctx, http.MethodPatch, g.path(id)+"/active", map[string]bool{"active": active}, &out)
	return out, err
}

func (g *Gateway[T]) Settle(ctx context.Context, id string, at time.Time) (T, error) {
	var out T
	err := g.do(ctx, http.MethodPost, g.path(id)+"/settle", map[string]time.Time{"at": at}, &out)
	return out, err
}

func (g *Gateway[T]) path(id string) string {
	p := g.BaseURL + "/api/" + g.Collection
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (g *Gateway[T]) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.InternalError{Msg: "falha ao serializar requisição", Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return domain.InternalError{Msg: "falha ao montar requisição", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return domain.InternalError{Msg: "falha de comunicação com o servidor", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.InternalError{Msg: "falha ao decodificar resposta", Err: err}
	}
	return nil
}

func (g *Gateway[T]) httpClient() *http.Client {
	if g.HTTP != nil {
		return g.HTTP
	}
	return http.DefaultClient
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// decodeError reconstrói o erro de domínio a partir do payload padronizado,
// para que quem chama trate negações e validações igual ao caso em processo.
func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = fmt.Sprintf("erro HTTP %d", resp.StatusCode)
	}

	switch body.Code {
	case "permission_denied":
		return domain.PermissionDeniedError{}
	case "not_found":
		return domain.NotFoundError{Resource: body.Error}
	case "validation_error":
		return domain.ValidationError{Msg: body.Error}
	case "conflict":
		return domain.ConflictError{Msg: body.Error}
	case "not_settleable":
		return listing.ErrNotSettleable
	}

	switch resp.StatusCode {
	case http.StatusForbidden:
		return domain.PermissionDeniedError{}
	case http.StatusNotFound:
		return domain.NotFoundError{Resource: body.Error}
	case http.StatusBadRequest:
		return domain.ValidationError{Msg: body.Error}
	}
	return domain.InternalError{Msg: body.Error}
}
