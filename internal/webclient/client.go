package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// APIError 表示服务端返回 success=false 或非 2xx 状态。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Status)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError carrying status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client 是带 Cookie Jar 的 API 客户端，会话 Cookie 由 jar 自动携带。
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL, for example "http://localhost:8080/api/v1".
// A nil httpClient gets a default one; its Jar is replaced when unset.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base url missing")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	return &Client{baseURL: baseURL, http: httpClient}, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// do 发送 JSON 请求并解析信封；out 为 nil 时只检查 success。
func (c *Client) do(ctx context.Context, method, path string, body, out any) (string, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		}
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return env.Message, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return env.Message, fmt.Errorf("decode payload: %w", err)
		}
	}
	return env.Message, nil
}

// ---- user ----

func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	_, err := c.do(ctx, http.MethodPost, "/user/register", in, nil)
	return err
}

func (c *Client) Login(ctx context.Context, in LoginInput) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	_, err := c.do(ctx, http.MethodPost, "/user/login", in, &out)
	return out.User, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/user/logout", nil, nil)
	return err
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	_, err := c.do(ctx, http.MethodPost, "/user/profile/update", in, &out)
	return out.User, err
}

// ---- company ----

func (c *Client) RegisterCompany(ctx context.Context, name string) (Company, error) {
	var out struct {
		Company Company `json:"company"`
	}
	_, err := c.do(ctx, http.MethodPost, "/company/register", map[string]string{"companyName": name}, &out)
	return out.Company, err
}

func (c *Client) Companies(ctx context.Context) ([]Company, error) {
	var out struct {
		Companies []Company `json:"companies"`
	}
	_, err := c.do(ctx, http.MethodGet, "/company/get", nil, &out)
	return out.Companies, err
}

func (c *Client) Company(ctx context.Context, id uint) (CompanyDetail, error) {
	var out CompanyDetail
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/company/get/%d", id), nil, &out)
	return out, err
}

func (c *Client) UpdateCompany(ctx context.Context, id uint, in CompanyUpdate) (Company, error) {
	var out struct {
		Company Company `json:"company"`
	}
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/company/update/%d", id), in, &out)
	return out.Company, err
}

func (c *Client) DeleteCompany(ctx context.Context, id uint) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/company/%d", id), nil, nil)
	return err
}

// ---- job ----

func (c *Client) PostJob(ctx context.Context, in JobInput) (Job, error) {
	var out struct {
		Job Job `json:"job"`
	}
	_, err := c.do(ctx, http.MethodPost, "/job/post", in, &out)
	return out.Job, err
}

// Jobs lists public jobs; an empty keyword matches everything.
func (c *Client) Jobs(ctx context.Context, keyword string) ([]Job, error) {
	path := "/job/get"
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		path += "?keyword=" + url.QueryEscape(keyword)
	}
	var out struct {
		Jobs []Job `json:"jobs"`
	}
	_, err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Jobs, err
}

func (c *Client) Job(ctx context.Context, id uint) (Job, error) {
	var out struct {
		Job Job `json:"job"`
	}
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/job/get/%d", id), nil, &out)
	return out.Job, err
}

func (c *Client) AdminJobs(ctx context.Context) ([]Job, error) {
	var out struct {
		Jobs []Job `json:"jobs"`
	}
	_, err := c.do(ctx, http.MethodGet, "/job/getadminjobs", nil, &out)
	return out.Jobs, err
}

func (c *Client) UpdateJob(ctx context.Context, id uint, in JobUpdate) (Job, error) {
	var out struct {
		Job Job `json:"job"`
	}
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/job/update/%d", id), in, &out)
	return out.Job, err
}

func (c *Client) DeleteJob(ctx context.Context, id uint) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/job/%d", id), nil, nil)
	return err
}

// ---- application ----

func (c *Client) Apply(ctx context.Context, jobID uint) error {
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/application/apply/%d", jobID), nil, nil)
	return err
}

func (c *Client) AppliedJobs(ctx context.Context) ([]Application, error) {
	var out struct {
		Applications []Application `json:"application"`
	}
	_, err := c.do(ctx, http.MethodGet, "/application/get", nil, &out)
	return out.Applications, err
}

// Applicants returns the job with its applications and applicants populated.
func (c *Client) Applicants(ctx context.Context, jobID uint) (Job, error) {
	var out struct {
		Job Job `json:"job"`
	}
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/application/%d/applicants", jobID), nil, &out)
	return out.Job, err
}

func (c *Client) UpdateStatus(ctx context.Context, applicationID uint, status string) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/application/status/%d/update", applicationID),
		map[string]string{"status": status}, nil)
	return err
}

// ---- saved jobs ----

func (c *Client) SaveJob(ctx context.Context, jobID uint) (SavedJob, error) {
	var out struct {
		SavedJob SavedJob `json:"savedJob"`
	}
	_, err := c.do(ctx, http.MethodPost, "/savedjobs/save", map[string]uint{"jobId": jobID}, &out)
	return out.SavedJob, err
}

func (c *Client) UnsaveJob(ctx context.Context, jobID uint) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/savedjobs/unsave/%d", jobID), nil, nil)
	return err
}

func (c *Client) SavedJobs(ctx context.Context) ([]SavedJob, error) {
	var out struct {
		Jobs []SavedJob `json:"jobs"`
	}
	_, err := c.do(ctx, http.MethodGet, "/savedjobs/get", nil, &out)
	return out.Jobs, err
}
