// Package client is a typed HTTP client for the marketplace API, used by the explore
// command. Error responses are decoded into *APIError, which unwraps to the matching
// apperror sentinel so callers can keep using errors.Is across the wire.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
)

// DefaultTimeout bounds each request when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client calls the marketplace API. It is safe for concurrent use.
type Client struct {
	http *resty.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		rc.SetAuthToken(cfg.Token)
	}

	return &Client{http: rc}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap maps the response status to the apperror category it was produced from.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return apperror.ErrValidation
	case http.StatusUnauthorized:
		return apperror.ErrUnauthorized
	case http.StatusForbidden:
		return apperror.ErrForbidden
	case http.StatusNotFound:
		return apperror.ErrNotFound
	case http.StatusConflict:
		return apperror.ErrConflict
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return apperror.ErrUnavailable
	default:
		return nil
	}
}

type coursesResponse struct {
	Courses []model.Course `json:"courses"`
}

type savedCoursesResponse struct {
	SavedCourses []model.SavedCourse `json:"savedCourses"`
}

type statisticsResponse struct {
	Statistics []model.CourseStatistic `json:"statistics"`
}

type saveRequest struct {
	CourseID string `json:"courseId"`
}

// SearchCourses returns every course matching query, newest first.
// It satisfies search.Fetcher.
func (c *Client) SearchCourses(ctx context.Context, query string) ([]model.Course, error) {
	var out coursesResponse
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if query != "" {
		req.SetQueryParam("q", query)
	}
	if err := c.do(req, http.MethodGet, "/api/courses"); err != nil {
		return nil, err
	}
	return nonNil(out.Courses), nil
}

// SaveCourse bookmarks courseID for the token's user.
func (c *Client) SaveCourse(ctx context.Context, courseID string) error {
	req := c.http.R().SetContext(ctx).SetBody(saveRequest{CourseID: courseID})
	return c.do(req, http.MethodPost, "/api/courses/saved")
}

// UnsaveCourse removes the bookmark.
func (c *Client) UnsaveCourse(ctx context.Context, courseID string) error {
	req := c.http.R().SetContext(ctx).SetPathParam("courseId", courseID)
	return c.do(req, http.MethodDelete, "/api/courses/saved/{courseId}")
}

func (c *Client) SavedCourses(ctx context.Context) ([]model.SavedCourse, error) {
	var out savedCoursesResponse
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if err := c.do(req, http.MethodGet, "/api/courses/saved"); err != nil {
		return nil, err
	}
	if out.SavedCourses == nil {
		out.SavedCourses = []model.SavedCourse{}
	}
	return out.SavedCourses, nil
}

// Statistics fetches the admin dashboard report. Non-admin tokens get ErrForbidden.
func (c *Client) Statistics(ctx context.Context) ([]model.CourseStatistic, error) {
	var out statisticsResponse
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if err := c.do(req, http.MethodGet, "/api/dashboard/statistics"); err != nil {
		return nil, err
	}
	if out.Statistics == nil {
		out.Statistics = []model.CourseStatistic{}
	}
	return out.Statistics, nil
}

// Me returns the account the token belongs to.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if err := c.do(req, http.MethodGet, "/api/me"); err != nil {
		return nil, err
	}
	return &out, nil
}

// do executes req and converts transport failures and error statuses into errors.
func (c *Client) do(req *resty.Request, method, path string) error {
	var apiErr APIError
	req.SetError(&apiErr)

	resp, err := req.Execute(method, path)
	if err != nil {
		return apperror.Unavailable(method+" "+path, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return &apiErr
	}
	return nil
}

func nonNil(courses []model.Course) []model.Course {
	if courses == nil {
		return []model.Course{}
	}
	return courses
}
