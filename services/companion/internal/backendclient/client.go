package backendclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"irisguide/pkg/domain"
)

// Client calls the IRIS backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a backend error response. Unwrap exposes the domain
// error the status maps to, if any.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// NewClient constructs a backend client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Register creates an account. A 400 for an existing email maps to
// domain.ErrDuplicateAccount.
func (c *Client) Register(ctx context.Context, acct domain.Account) (domain.Account, error) {
	payload := map[string]string{
		"fullName": acct.FullName,
		"email":    acct.Email,
		"password": acct.Password,
		"userType": string(acct.Role),
		"deviceId": acct.DeviceID,
	}
	var resp accountResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", payload, &resp); err != nil {
		return domain.Account{}, classify(err, map[int]error{http.StatusBadRequest: domain.ErrDuplicateAccount}, "User already exists")
	}
	return resp.User, nil
}

// Login signs in. 404 maps to domain.ErrNotFound and 400 to
// domain.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Account, string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp accountResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", payload, &resp); err != nil {
		return domain.Account{}, "", classify(err, map[int]error{
			http.StatusNotFound:   domain.ErrNotFound,
			http.StatusBadRequest: domain.ErrInvalidCredentials,
		}, "")
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, token, accountID, current, next string) error {
	payload := map[string]string{"currentPassword": current, "newPassword": next}
	err := c.doJSON(ctx, http.MethodPost, "/api/user/"+url.PathEscape(accountID)+"/password", token, payload, nil)
	if err != nil {
		return classify(err, map[int]error{http.StatusBadRequest: domain.ErrInvalidCredentials}, "Invalid credentials")
	}
	return nil
}

func (c *Client) GetUser(ctx context.Context, token, id string) (domain.Account, error) {
	var acct domain.Account
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/"+url.PathEscape(id), token, nil, &acct); err != nil {
		return domain.Account{}, classify(err, map[int]error{http.StatusNotFound: domain.ErrNotFound}, "")
	}
	return acct, nil
}

func (c *Client) UpdateSettings(ctx context.Context, token, id string, settings domain.Settings) (domain.Account, error) {
	payload := map[string]any{"settings": settings}
	var resp accountResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/user/"+url.PathEscape(id)+"/settings", token, payload, &resp); err != nil {
		return domain.Account{}, classify(err, map[int]error{http.StatusNotFound: domain.ErrNotFound}, "")
	}
	return resp.User, nil
}

// FaceInput is the add-face request body.
type FaceInput struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	ImageURL     string `json:"imageUrl"`
	Relationship string `json:"relationship,omitempty"`
}

func (c *Client) AddFace(ctx context.Context, token string, in FaceInput) (domain.Face, error) {
	var resp faceResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/faces/add", token, in, &resp); err != nil {
		return domain.Face{}, err
	}
	return resp.Face, nil
}

func (c *Client) ListFaces(ctx context.Context, token, userID string) ([]domain.Face, error) {
	var faces []domain.Face
	if err := c.doJSON(ctx, http.MethodGet, "/api/faces/"+url.PathEscape(userID), token, nil, &faces); err != nil {
		return nil, err
	}
	return faces, nil
}

func (c *Client) RaiseSOS(ctx context.Context, token, message string) (domain.Alert, error) {
	var alert domain.Alert
	if err := c.doJSON(ctx, http.MethodPost, "/api/alerts/sos", token, map[string]string{"message": message}, &alert); err != nil {
		return domain.Alert{}, err
	}
	return alert, nil
}

func (c *Client) Alerts(ctx context.Context, token string) ([]domain.Alert, error) {
	var list []domain.Alert
	if err := c.doJSON(ctx, http.MethodGet, "/api/alerts", token, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// classify attaches a domain error to an APIError by status. When match is
// set, the message must equal it too; other 400s become validation errors.
func classify(err error, byStatus map[int]error, match string) error {
	apiErr, ok := err.(*APIError)
	if !ok {
		return err
	}
	kind, ok := byStatus[apiErr.Status]
	switch {
	case ok && (match == "" || apiErr.Message == match):
		apiErr.kind = kind
	case apiErr.Status == http.StatusBadRequest:
		apiErr.kind = domain.Invalid("form", apiErr.Message)
	}
	return apiErr
}

type accountResponse struct {
	Message string         `json:"message"`
	User    domain.Account `json:"user"`
	Token   string         `json:"token"`
}

type faceResponse struct {
	Message string      `json:"message"`
	Face    domain.Face `json:"face"`
}
