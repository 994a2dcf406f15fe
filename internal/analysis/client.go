// Package analysis calls the external application analyzer that scores a resume and
// cover letter against a job description.
package analysis

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecodeclub/ekit/retry"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by NewFromEnv when ANALYSIS_ENDPOINT is unset.
var ErrNotConfigured = errors.New("analysis endpoint is not configured")

// Request carries the two documents and the job description to analyze.
type Request struct {
	Resume         []byte
	CoverLetter    []byte
	JobDescription string
}

// Result is the analyzer's verdict.
type Result struct {
	CandidateSummary          string
	RelevantExperienceSummary string
	CompetencyScore           float64
	CompetencyReasoning       string
	CompatibilityScore        float64
	CompatibilityReasoning    string
}

// Analyzer is implemented by Client and by test doubles.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// Client posts multipart requests to the analyzer endpoint.
type Client struct {
	endpoint string
	http     *resty.Client
	retries  int32

	// RetryInterval is the first wait between attempts; it doubles up to ten times its value.
	RetryInterval time.Duration
}

// NewClient creates a client for endpoint with the given timeout and retry count.
func NewClient(endpoint string, timeout time.Duration, retries int) *Client {
	return &Client{
		endpoint:      endpoint,
		http:          resty.New().SetTimeout(timeout),
		retries:       int32(retries),
		RetryInterval: 500 * time.Millisecond,
	}
}

// NewFromEnv reads ANALYSIS_ENDPOINT, ANALYSIS_TIMEOUT_SECONDS (default 60) and ANALYSIS_RETRIES (default 2).
func NewFromEnv() (*Client, error) {
	endpoint := strings.TrimSpace(os.Getenv("ANALYSIS_ENDPOINT"))
	if endpoint == "" {
		return nil, ErrNotConfigured
	}

	timeout := 60 * time.Second
	if v, err := strconv.Atoi(os.Getenv("ANALYSIS_TIMEOUT_SECONDS")); err == nil && v > 0 {
		timeout = time.Duration(v) * time.Second
	}
	retries := 2
	if v, err := strconv.Atoi(os.Getenv("ANALYSIS_RETRIES")); err == nil && v >= 0 {
		retries = v
	}
	return NewClient(endpoint, timeout, retries), nil
}

// Analyze uploads the documents as form files "resume" and "cover_letter" with the
// "job_description" form field and parses the JSON answer. Transport failures and 5xx
// answers are retried; any other non-2xx answer fails at once.
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	var strategy *retry.ExponentialBackoffRetryStrategy
	if c.retries > 0 {
		s, err := retry.NewExponentialBackoffRetryStrategy(c.RetryInterval, 10*c.RetryInterval, c.retries)
		if err != nil {
			return nil, errors.Wrap(err, "build retry strategy")
		}
		strategy = s
	}

	for {
		res, retryable, err := c.post(ctx, req)
		if err == nil {
			return res, nil
		}
		if !retryable || strategy == nil {
			return nil, err
		}
		next, ok := strategy.Next()
		if !ok {
			return nil, err
		}
		zap.L().Warn("retrying analysis request", zap.Error(err), zap.Duration("wait", next))
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "analysis cancelled")
		case <-time.After(next):
		}
	}
}

func (c *Client) post(ctx context.Context, req Request) (*Result, bool, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("resume", "resume.pdf", bytes.NewReader(req.Resume)).
		SetFileReader("cover_letter", "cover_letter.pdf", bytes.NewReader(req.CoverLetter)).
		SetFormData(map[string]string{"job_description": req.JobDescription}).
		Post(c.endpoint)
	if err != nil {
		return nil, ctx.Err() == nil, errors.Wrap(err, "call analysis endpoint")
	}

	body := resp.String()
	if resp.IsError() {
		zap.L().Warn("analysis endpoint rejected request",
			zap.Int("status", resp.StatusCode()), zap.String("body", body))
		return nil, resp.StatusCode() >= http.StatusInternalServerError,
			errors.Errorf("analysis endpoint returned %d", resp.StatusCode())
	}

	res, err := parseResult(body)
	return res, false, err
}

func parseResult(body string) (*Result, error) {
	if !gjson.Valid(body) {
		return nil, errors.New("analysis endpoint returned invalid JSON")
	}
	res := gjson.GetMany(body,
		"candidate_summary",
		"relevant_experience_summary",
		"competency_score",
		"Reasoning_competency_score",
		"compatibility_score",
		"Reasoning-compatibility_score",
	)
	if !res[2].Exists() || !res[4].Exists() {
		return nil, errors.New("analysis response is missing scores")
	}
	return &Result{
		CandidateSummary:          res[0].String(),
		RelevantExperienceSummary: res[1].String(),
		CompetencyScore:           res[2].Float(),
		CompetencyReasoning:       res[3].String(),
		CompatibilityScore:        res[4].Float(),
		CompatibilityReasoning:    res[5].String(),
	}, nil
}
