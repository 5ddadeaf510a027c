// Package transport implements the HTTP side of a LIMS session:
// authenticated requests carrying XML documents, batch retrieval, and
// error decoding.
package transport // import "github.com/CognitoIQ/go-clarity/transport"

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/CognitoIQ/go-clarity/nsmap"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

// HTTP moves documents between a lims.Session and a server over
// HTTP with basic authentication.
type HTTP struct {
	base     string
	client   *http.Client
	username string
	password string
	logger   *slog.Logger
	metrics  *Metrics

	requestHook  func(*http.Request) *http.Request
	responseHook func(*http.Response) *http.Response
}

// An Option is used to customize an HTTP transport. Applying an
// Option returns another Option that restores the previous setting.
type Option func(*HTTP) Option

// Client sets the http.Client used for requests.
func Client(c *http.Client) Option {
	return func(t *HTTP) Option {
		prev := t.client
		t.client = c
		return Client(prev)
	}
}

// BasicAuth sets the credentials sent with every request.
func BasicAuth(username, password string) Option {
	return func(t *HTTP) Option {
		prevUser, prevPass := t.username, t.password
		t.username, t.password = username, password
		return BasicAuth(prevUser, prevPass)
	}
}

// LogOutput sets the logger for request traces.
func LogOutput(l *slog.Logger) Option {
	return func(t *HTTP) Option {
		prev := t.logger
		t.logger = l
		return LogOutput(prev)
	}
}

// WithMetrics records request counts and latencies in m.
func WithMetrics(m *Metrics) Option {
	return func(t *HTTP) Option {
		prev := t.metrics
		t.metrics = m
		return WithMetrics(prev)
	}
}

// RequestHook lets fn inspect or replace each request before it is
// sent.
func RequestHook(fn func(*http.Request) *http.Request) Option {
	return func(t *HTTP) Option {
		prev := t.requestHook
		t.requestHook = fn
		return RequestHook(prev)
	}
}

// ResponseHook lets fn inspect or replace each response before it is
// decoded.
func ResponseHook(fn func(*http.Response) *http.Response) Option {
	return func(t *HTTP) Option {
		prev := t.responseHook
		t.responseHook = fn
		return ResponseHook(prev)
	}
}

// New returns a transport for the API rooted at base, such as
// "https://lims.example.com/api/v2".
func New(base string, opts ...Option) *HTTP {
	t := &HTTP{
		base:   strings.TrimSuffix(base, "/"),
		client: http.DefaultClient,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	t.Option(opts...)
	return t
}

// The Option method is used to configure an existing transport. The
// return value can be used to revert the final option.
func (t *HTTP) Option(opts ...Option) (previous Option) {
	for _, opt := range opts {
		previous = opt(t)
	}
	return previous
}

// BaseURI returns the API root.
func (t *HTTP) BaseURI() string { return t.base }

// Fetch GETs the document at uri.
func (t *HTTP) Fetch(ctx context.Context, uri string) (*xmltree.Element, error) {
	return t.do(ctx, http.MethodGet, uri, nil)
}

// Create POSTs doc to the collection at uri and returns the created
// resource.
func (t *HTTP) Create(ctx context.Context, uri string, doc *xmltree.Element) (*xmltree.Element, error) {
	return t.do(ctx, http.MethodPost, uri, doc)
}

// Replace PUTs doc at uri.
func (t *HTTP) Replace(ctx context.Context, uri string, doc *xmltree.Element) error {
	_, err := t.do(ctx, http.MethodPut, uri, doc)
	return err
}

// Append POSTs doc, which may be nil, to the resource at uri and
// returns the response.
func (t *HTTP) Append(ctx context.Context, uri string, doc *xmltree.Element) (*xmltree.Element, error) {
	return t.do(ctx, http.MethodPost, uri, doc)
}

// Encode serializes doc with an XML declaration, using the
// conventional LIMS prefixes for its namespaces.
func Encode(doc *xmltree.Element) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(xmltree.MarshalPrefixed(doc, nsmap.Prefix))
	return buf.Bytes()
}

func (t *HTTP) do(ctx context.Context, method, uri string, doc *xmltree.Element) (*xmltree.Element, error) {
	var body io.Reader
	if doc != nil {
		body = bytes.NewReader(Encode(doc))
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request for %s", method, uri)
	}
	req.Header.Set("Accept", "application/xml")
	if doc != nil {
		req.Header.Set("Content-Type", "application/xml")
	}
	if t.username != "" || t.password != "" {
		req.SetBasicAuth(t.username, t.password)
	}
	if t.requestHook != nil {
		req = t.requestHook(req)
	}

	start := time.Now()
	rsp, err := t.client.Do(req)
	if err != nil {
		t.metrics.observe(method, 0, time.Since(start))
		return nil, errors.Wrapf(err, "%s %s", method, uri)
	}
	defer rsp.Body.Close()
	t.metrics.observe(method, rsp.StatusCode, time.Since(start))
	if t.responseHook != nil {
		rsp = t.responseHook(rsp)
	}
	t.logger.Debug("lims request", "method", method, "uri", uri, "status", rsp.StatusCode,
		"elapsed", time.Since(start))

	data, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read response to %s %s", method, uri)
	}
	if rsp.StatusCode >= 400 {
		return nil, newError(method, uri, rsp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode response to %s %s", method, uri)
	}
	return root, nil
}
