package spam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultEndpoint is the Akismet REST root.
const DefaultEndpoint = "https://rest.akismet.com"

const userAgent = "lambda-comments/1.0 | akismet-go"

// maxBody caps how much of a response is read; valid answers are a single word.
const maxBody = 4 << 10

// ErrInvalidResponse is returned when Akismet answers with anything but "true" or "false".
var ErrInvalidResponse = errors.New("akismet: invalid response")

// Akismet calls the comment-check endpoint.
type Akismet struct {
	key      string
	blog     string
	endpoint string
	client   *http.Client
}

// NewAkismet builds a client. An empty endpoint selects DefaultEndpoint; a nil client
// selects http.DefaultClient. Timeouts come from the caller's context.
func NewAkismet(key, blog, endpoint string, client *http.Client) *Akismet {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Akismet{
		key:      key,
		blog:     blog,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
	}
}

// Classify implements Classifier.
func (a *Akismet) Classify(ctx context.Context, req Request) (Verdict, error) {
	form := a.form(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/1.1/comment-check", strings.NewReader(form.Encode()))
	if err != nil {
		return Verdict{}, fmt.Errorf("akismet: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return Verdict{}, fmt.Errorf("akismet: comment-check: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Verdict{}, fmt.Errorf("akismet: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Verdict{}, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	switch strings.TrimSpace(string(body)) {
	case "true":
		return Verdict{IsSpam: true, Reason: resp.Header.Get("X-akismet-pro-tip")}, nil
	case "false":
		return Verdict{}, nil
	default:
		help := resp.Header.Get("X-akismet-debug-help")
		if help == "" {
			help = strings.TrimSpace(string(body))
		}
		return Verdict{}, fmt.Errorf("%w: %s", ErrInvalidResponse, help)
	}
}

func (a *Akismet) form(req Request) url.Values {
	c := req.Comment
	form := url.Values{}
	form.Set("api_key", a.key)
	form.Set("blog", a.blog)
	form.Set("user_ip", req.SourceIP)
	form.Set("user_agent", c.UserAgent)
	form.Set("permalink", c.Permalink)
	form.Set("comment_type", "comment")
	form.Set("comment_author", c.AuthorName)
	form.Set("comment_author_email", c.AuthorEmail)
	form.Set("comment_content", c.CommentContent)
	form.Set("blog_charset", "UTF-8")
	if c.Referrer != "" {
		form.Set("referrer", c.Referrer)
	}
	if c.AuthorURL != "" {
		form.Set("comment_author_url", c.AuthorURL)
	}
	if req.IsTest {
		form.Set("is_test", "1")
	}
	return form
}
