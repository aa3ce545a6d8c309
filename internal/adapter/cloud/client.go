package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/berfenger/dyson2mqtt/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultApiHost = "https://appapi.cp.dyson.com"
	manifestPath   = "/v2/provisioningservice/manifest"
	requestTimeout = 15 * time.Second
)

// manifestDevice is one entry of the account manifest.
type manifestDevice struct {
	Serial           string `json:"Serial"`
	ProductType      string `json:"ProductType"`
	Name             string `json:"Name"`
	LocalCredentials string `json:"LocalCredentials"`
}

// Client lists the devices of an account. The account token is obtained
// out of band and passed with every call.
type Client struct {
	apiHost    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(apiHost string, logger *zap.Logger) *Client {
	return NewClientWithHTTP(apiHost, &http.Client{Timeout: requestTimeout}, logger)
}

func NewClientWithHTTP(apiHost string, httpClient *http.Client, logger *zap.Logger) *Client {
	if apiHost == "" {
		apiHost = DefaultApiHost
	}
	return &Client{
		apiHost:    strings.TrimSuffix(apiHost, "/"),
		httpClient: httpClient,
		logger:     logger.With(zap.String("component", "cloud")),
	}
}

func (c *Client) ListDevices(ctx context.Context, credentials domain.CloudCredentials) ([]domain.CloudDevice, error) {
	if credentials.Token == "" {
		return nil, domain.NewAuthError(domain.ErrInvalidCredentials, errors.New("no account token"))
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credentials.Token, TokenType: "Bearer"})
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), tokenSource)

	query := url.Values{}
	if credentials.Country != "" {
		query.Set("country", credentials.Country)
	}
	endpoint := c.apiHost + manifestPath
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dyson2mqtt/"+versioninfo.Short())

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		c.logger.Warn("manifest request rejected", zap.Int("status", resp.StatusCode), zap.String("email", credentials.Email))
		return nil, err
	}

	var manifest []manifestDevice
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, domain.NewAuthError(domain.ErrNetwork, fmt.Errorf("failed to decode manifest: %w", err))
	}

	devices := make([]domain.CloudDevice, 0, len(manifest))
	for _, d := range manifest {
		if d.Serial == "" || d.ProductType == "" {
			c.logger.Debug("manifest entry skipped", zap.String("serial", d.Serial))
			continue
		}
		devices = append(devices, domain.CloudDevice{
			Serial:      strings.ToUpper(d.Serial),
			ProductType: d.ProductType,
			Name:        d.Name,
			Credential:  d.LocalCredentials,
		})
	}
	c.logger.Info("manifest loaded", zap.Int("devices", len(devices)))
	return devices, nil
}

func statusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return domain.NewAuthError(domain.ErrInvalidCredentials, nil)
	case status == http.StatusForbidden:
		return domain.NewAuthError(domain.ErrSessionExpired, nil)
	case status == http.StatusNotFound:
		return domain.NewAuthError(domain.ErrAccountNotFound, nil)
	case status == http.StatusPreconditionRequired:
		return domain.NewAuthError(domain.ErrTwoFactorRequired, nil)
	case status == http.StatusTooManyRequests:
		return domain.NewAuthError(domain.ErrRateLimited, nil)
	default:
		return domain.NewAuthError(domain.ErrNetwork, fmt.Errorf("unexpected status %d", status))
	}
}
