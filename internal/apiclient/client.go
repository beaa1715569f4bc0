// Package apiclient safezone-data 的 HTTP 客户端，实现 zonestore.ZonesAPI。
package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"safezone/internal/domain"
	"safezone/internal/geocode"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const resultSuccess = 2000

// envelope 服务端统一响应 {code, type, message, result}
type envelope[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

// APIError 服务端返回的失败响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("safezone-data: %s (status: %d)", e.Message, e.StatusCode)
}

// Is 使 errors.Is(err, domain.ErrZoneNotFound) 等判断在客户端同样成立
func (e *APIError) Is(target error) bool {
	if e.StatusCode != http.StatusNotFound {
		return false
	}
	switch target {
	case domain.ErrZoneNotFound, domain.ErrDeviceNotFound, domain.ErrUserNotFound:
		return e.Message == target.Error()
	}
	return false
}

// Client safezone-data 客户端
// 不做自动重试：失败直接返回给 zonestore 回滚
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

// New 创建客户端
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{httpClient: client, logger: logger}
}

// SetToken 登录后设置 Bearer token；空字符串表示未登录
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.httpClient.R().SetContext(ctx)
	c.mu.RLock()
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	c.mu.RUnlock()
	return req
}

func call[T any](c *Client, req *resty.Request, method, path string) (T, error) {
	var env envelope[T]
	resp, err := req.SetResult(&env).SetError(&env).Execute(method, path)
	if err != nil {
		var zero T
		c.logger.Error("safezone-data call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return zero, fmt.Errorf("failed to call safezone-data: %w", err)
	}
	if resp.IsError() || env.Code != resultSuccess {
		var zero T
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return zero, &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return env.Result, nil
}

func zonePath(id string) string {
	return "/api/zones/" + url.PathEscape(id)
}

// ListZones GET /api/zones
func (c *Client) ListZones(ctx context.Context) ([]domain.Zone, error) {
	return call[[]domain.Zone](c, c.request(ctx), http.MethodGet, "/api/zones")
}

// GetZone GET /api/zones/:id
func (c *Client) GetZone(ctx context.Context, id string) (domain.Zone, error) {
	return call[domain.Zone](c, c.request(ctx), http.MethodGet, zonePath(id))
}

func (c *Client) CreateZone(ctx context.Context, in domain.ZoneInput) (domain.Zone, error) {
	return call[domain.Zone](c, c.request(ctx).SetBody(in), http.MethodPost, "/api/zones")
}

func (c *Client) UpdateZone(ctx context.Context, id string, in domain.ZoneInput) (domain.Zone, error) {
	return call[domain.Zone](c, c.request(ctx).SetBody(in), http.MethodPut, zonePath(id))
}

// ToggleZone POST /api/zones/:id/toggle
func (c *Client) ToggleZone(ctx context.Context, id string) (domain.Zone, error) {
	return call[domain.Zone](c, c.request(ctx), http.MethodPost, zonePath(id)+"/toggle")
}

func (c *Client) DeleteZone(ctx context.Context, id string) error {
	_, err := call[any](c, c.request(ctx), http.MethodDelete, zonePath(id))
	return err
}

// ExportZones GET /api/zones/export，返回 xlsx 内容
func (c *Client) ExportZones(ctx context.Context) ([]byte, error) {
	resp, err := c.request(ctx).
		SetHeader("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		Get("/api/zones/export")
	if err != nil {
		return nil, fmt.Errorf("failed to call safezone-data: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	}
	return resp.Body(), nil
}

func (c *Client) ListDevices(ctx context.Context) ([]domain.Device, error) {
	return call[[]domain.Device](c, c.request(ctx), http.MethodGet, "/api/devices")
}

// LocationResult POST /api/devices/:id/location 的结果
type LocationResult struct {
	Device *domain.Device          `json:"device"`
	Events []domain.GeofenceEvent `json:"events"`
}

func (c *Client) UpdateLocation(ctx context.Context, deviceID string, update domain.LocationUpdate) (LocationResult, error) {
	path := "/api/devices/" + url.PathEscape(deviceID) + "/location"
	return call[LocationResult](c, c.request(ctx).SetBody(update), http.MethodPost, path)
}

func (c *Client) Permissions(ctx context.Context) (domain.Permissions, error) {
	return call[domain.Permissions](c, c.request(ctx), http.MethodGet, "/api/user/permissions")
}

// Me 当前会话用户
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	return call[domain.User](c, c.request(ctx), http.MethodGet, "/api/user/me")
}

// SendCodeResult 发送验证码结果
type SendCodeResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ExpiresIn int    `json:"expiresIn"`
}

func (c *Client) SendCode(ctx context.Context, phone string) (SendCodeResult, error) {
	body := map[string]string{"phoneNumber": phone}
	return call[SendCodeResult](c, c.request(ctx).SetBody(body), http.MethodPost, "/api/auth/send-code")
}

// LoginResult 登录结果
type LoginResult struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

// VerifyCode 成功后自动保存 token
func (c *Client) VerifyCode(ctx context.Context, phone, code string) (LoginResult, error) {
	body := map[string]string{"phoneNumber": phone, "code": code}
	res, err := call[LoginResult](c, c.request(ctx).SetBody(body), http.MethodPost, "/api/auth/verify-code")
	if err != nil {
		return res, err
	}
	c.SetToken(res.Token)
	return res, nil
}

func (c *Client) Autocomplete(ctx context.Context, q string) ([]geocode.Result, error) {
	req := c.request(ctx).SetQueryParam("q", q)
	return call[[]geocode.Result](c, req, http.MethodGet, "/api/geocode/autocomplete")
}

func (c *Client) Geocode(ctx context.Context, address string) (geocode.Result, error) {
	req := c.request(ctx).SetQueryParam("address", address)
	return call[geocode.Result](c, req, http.MethodGet, "/api/geocode/search")
}

func (c *Client) Reverse(ctx context.Context, lat, lng float64) (geocode.Result, error) {
	req := c.request(ctx).SetQueryParams(map[string]string{
		"lat": strconv.FormatFloat(lat, 'f', -1, 64),
		"lng": strconv.FormatFloat(lng, 'f', -1, 64),
	})
	return call[geocode.Result](c, req, http.MethodGet, "/api/geocode/reverse")
}

func (c *Client) MockLocations(ctx context.Context) ([]geocode.MockLocation, error) {
	return call[[]geocode.MockLocation](c, c.request(ctx), http.MethodGet, "/api/geolocation/mock-locations")
}
