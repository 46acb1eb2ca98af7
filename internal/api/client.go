// Package api предоставляет клиент HTTP-шлюза платформы розыгрышей.
//
// Клиент возвращает единый конверт Response и никогда не отдаёт ошибку Go
// при транспортных или прикладных сбоях HTTP: транспортный сбой кодируется
// статусом 0, прикладной — конвертом ошибки бэкенда. Политика повторов и
// таймаутов этому слою не принадлежит.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Error описывает конверт ошибки бэкенда.
type Error struct {
	Message        string `json:"message"`
	Detail         string `json:"error,omitempty"`
	CurrentLength  int    `json:"current_length,omitempty"`
	ParticipatedAt string `json:"participated_at,omitempty"`
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	if e == nil || e.Message == "" {
		return "unknown api error"
	}
	return e.Message
}

// Response — единый конверт ответа шлюза: данные либо ошибка, статус HTTP
// и флаг успеха. Статус 0 означает, что запрос не был выполнен.
type Response[T any] struct {
	Data   *T
	Err    *Error
	Status int
	OK     bool
}

// RequestError возникает только при явной распаковке неуспешного конверта.
type RequestError struct {
	Status int
	Err    *Error
}

// Error реализует интерфейс error.
func (e *RequestError) Error() string {
	if e.Err != nil && e.Err.Message != "" {
		return e.Err.Message
	}
	return "Unknown error"
}

// Unwrap распаковывает конверт: возвращает данные успешного ответа либо
// RequestError для вызывающих, предпочитающих обработку через ошибки.
func (r Response[T]) Unwrap() (*T, error) {
	if !r.OK || r.Data == nil {
		return nil, &RequestError{Status: r.Status, Err: r.Err}
	}
	return r.Data, nil
}

// Client инкапсулирует HTTP-взаимодействие со шлюзом платформы.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewClient создаёт клиент шлюза для указанного базового адреса.
// Таймауты клиент не навязывает: сроки задаёт вызывающий через контекст.
func NewClient(baseURL string, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        log,
	}
}

// Request описывает параметры одного обращения к шлюзу. Токен передаётся
// вызывающим как есть; клиент сам токены не получает.
type Request struct {
	Method string
	Path   string
	Token  string
	Body   any
}

// Public выполняет запрос без учётных данных.
func Public[T any](ctx context.Context, c *Client, method, path string, body any) Response[T] {
	return Do[T](ctx, c, Request{Method: method, Path: path, Body: body})
}

// Authed выполняет запрос с токеном идентификации в заголовке Authorization.
func Authed[T any](ctx context.Context, c *Client, method, path, token string, body any) Response[T] {
	return Do[T](ctx, c, Request{Method: method, Path: path, Token: token, Body: body})
}

// Do выполняет запрос к шлюзу и возвращает конверт ответа. Тело
// сериализуется в JSON и не отправляется для GET; тело ответа декодируется
// независимо от статуса, сбой декодирования оставляет данные пустыми.
func Do[T any](ctx context.Context, c *Client, req Request) Response[T] {
	var reader io.Reader
	if req.Body != nil && req.Method != http.MethodGet {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return transportFailure[T](err)
		}
		reader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, reader)
	if err != nil {
		return transportFailure[T](err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if req.Token != "" {
		httpReq.Header.Set("Authorization", req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debugw("api request failed", "method", req.Method, "path", req.Path, "error", err)
		return transportFailure[T](err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure[T](err)
	}

	c.log.Debugw("api request", "method", req.Method, "path", req.Path, "status", resp.StatusCode)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if !ok {
		apiErr := &Error{}
		if err := json.Unmarshal(body, apiErr); err != nil {
			apiErr = nil
		}
		return Response[T]{Err: apiErr, Status: resp.StatusCode, OK: false}
	}

	data := new(T)
	if err := json.Unmarshal(body, data); err != nil {
		data = nil
	}
	return Response[T]{Data: data, Status: resp.StatusCode, OK: true}
}

// transportFailure кодирует сбой до получения ответа: статус 0, текст
// причины в конверте ошибки.
func transportFailure[T any](err error) Response[T] {
	return Response[T]{
		Err:    &Error{Message: err.Error()},
		Status: 0,
		OK:     false,
	}
}
