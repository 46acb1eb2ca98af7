// Package raffles содержит типизированные привязки к операциям удалённого
// API розыгрышей.
package raffles

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmeshcher/raffle-client/internal/api"
	"github.com/mmeshcher/raffle-client/internal/model"
)

// Client выполняет вызовы удалённого API розыгрышей поверх клиента шлюза.
type Client struct {
	api      *api.Client
	uploader *http.Client
}

// NewClient создаёт клиент операций розыгрышей.
func NewClient(apiClient *api.Client) *Client {
	return &Client{
		api:      apiClient,
		uploader: &http.Client{Timeout: 60 * time.Second},
	}
}

// ListParams описывает параметры постраничного списка розыгрышей.
type ListParams struct {
	Status model.Status
	Limit  int
	Cursor string
}

// List возвращает страницу списка розыгрышей. Курсор непрозрачен и
// передаётся обратно для получения следующей страницы.
func (c *Client) List(ctx context.Context, p ListParams) api.Response[model.ListResult] {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Cursor != "" {
		q.Set("cursor", p.Cursor)
	}

	path := "/api/v1/public/raffles"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	return api.Public[model.ListResult](ctx, c.api, http.MethodGet, path, nil)
}

// GetByID возвращает детальную карточку розыгрыша. Токен необязателен:
// с ним бэкенд дополняет ответ полями участия текущего пользователя.
func (c *Client) GetByID(ctx context.Context, id, token string) api.Response[model.Detail] {
	return api.Do[model.Detail](ctx, c.api, api.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/public/raffles/" + id,
		Token:  token,
	})
}

// Participate подаёт заявку на участие в розыгрыше. Ответ 200 означает
// немедленное подтверждение, 202 — отложенную обработку на бэкенде.
func (c *Client) Participate(ctx context.Context, token, id string) api.Response[model.ParticipateResult] {
	path := fmt.Sprintf("/api/v1/raffles/%s/participate", id)
	return api.Authed[model.ParticipateResult](ctx, c.api, http.MethodPost, path, token, nil)
}

// Create создаёт розыгрыш. Операция доступна только администраторам.
func (c *Client) Create(ctx context.Context, token string, in model.CreateInput) api.Response[model.CreateResult] {
	return api.Authed[model.CreateResult](ctx, c.api, http.MethodPost, "/api/v1/raffles", token, in)
}

// CloseRaffle закрывает розыгрыш. Операция доступна только администраторам.
func (c *Client) CloseRaffle(ctx context.Context, token, id string) api.Response[model.CloseResult] {
	path := fmt.Sprintf("/api/v1/raffles/%s/close", id)
	return api.Authed[model.CloseResult](ctx, c.api, http.MethodPost, path, token, nil)
}

// RequestUpload запрашивает presigned-дескриптор для прямой загрузки файла
// в хранилище.
func (c *Client) RequestUpload(ctx context.Context, token string, in model.UploadRequest) api.Response[model.UploadDescriptor] {
	return api.Authed[model.UploadDescriptor](ctx, c.api, http.MethodPost, "/api/v1/assets/upload", token, in)
}

// PutAsset загружает содержимое файла по presigned-ссылке напрямую,
// минуя шлюз. Content-Type должен совпадать с заявленным при выдаче ссылки.
func (c *Client) PutAsset(ctx context.Context, uploadURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.uploader.Do(req)
	if err != nil {
		return fmt.Errorf("upload asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload asset: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// UploadImage выполняет полный цикл загрузки изображения: запрос
// presigned-ссылки и прямой PUT файла. Возвращает CDN-адрес изображения.
func (c *Client) UploadImage(ctx context.Context, token, fileName, contentType string, data []byte) (string, error) {
	descriptor, err := c.RequestUpload(ctx, token, model.UploadRequest{
		FileName: fileName,
		FileType: contentType,
		FileSize: int64(len(data)),
	}).Unwrap()
	if err != nil {
		return "", fmt.Errorf("request upload url: %w", err)
	}

	if err := c.PutAsset(ctx, descriptor.Upload.URL, contentType, data); err != nil {
		return "", err
	}

	return descriptor.File.CloudFrontURL, nil
}
