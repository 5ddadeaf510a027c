package lims

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/CognitoIQ/go-clarity/xmltree"
)

// A Transport moves documents to and from the LIMS server. Errors are
// returned to callers of this package unchanged.
type Transport interface {
	// Fetch GETs the document at uri.
	Fetch(ctx context.Context, uri string) (*xmltree.Element, error)
	// Create POSTs doc to a collection and returns the created
	// resource.
	Create(ctx context.Context, uri string, doc *xmltree.Element) (*xmltree.Element, error)
	// Replace PUTs doc at uri.
	Replace(ctx context.Context, uri string, doc *xmltree.Element) error
	// Append POSTs doc to a resource and returns the response.
	Append(ctx context.Context, uri string, doc *xmltree.Element) (*xmltree.Element, error)
	// FetchMany retrieves several documents at once. The result
	// has one document per uri, in the same order.
	FetchMany(ctx context.Context, uris []string) ([]*xmltree.Element, error)
}

// A Session is a connection to one LIMS server. It owns the identity
// cache shared by all entities created through it.
type Session struct {
	base      string
	transport Transport
	cache     *Cache
	logger    *slog.Logger
}

// An Option is used to customize a Session. Applying an Option
// returns another Option that restores the previous setting.
type Option func(*Session) Option

// LogOutput sets the logger used for debug and error messages.
func LogOutput(l *slog.Logger) Option {
	return func(s *Session) Option {
		prev := s.logger
		s.logger = l
		return LogOutput(prev)
	}
}

// WithCache makes the Session share an existing Cache.
func WithCache(c *Cache) Option {
	return func(s *Session) Option {
		prev := s.cache
		s.cache = c
		return WithCache(prev)
	}
}

// NewSession creates a Session for the API rooted at baseURI, such as
// "https://lims.example.com/api/v2".
func NewSession(baseURI string, t Transport, opts ...Option) *Session {
	s := &Session{
		base:      strings.TrimSuffix(baseURI, "/"),
		transport: t,
		cache:     NewCache(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.Option(opts...)
	return s
}

// The Option method is used to configure an existing Session. The
// return value can be used to revert the final option.
func (s *Session) Option(opts ...Option) (previous Option) {
	for _, opt := range opts {
		previous = opt(s)
	}
	return previous
}

// BaseURI returns the API root.
func (s *Session) BaseURI() string { return s.base }

// Cache returns the identity cache of s.
func (s *Session) Cache() *Cache { return s.cache }

// Logger returns the logger of s.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Transport returns the transport of s.
func (s *Session) Transport() Transport { return s.transport }

// URI joins path segments to the API root. Segments are escaped.
func (s *Session) URI(segments ...string) string {
	var b strings.Builder
	b.WriteString(s.base)
	for _, seg := range segments {
		for _, part := range strings.Split(seg, "/") {
			if part == "" {
				continue
			}
			b.WriteByte('/')
			b.WriteString(url.PathEscape(part))
		}
	}
	return b.String()
}

func (s *Session) debugf(msg string, args ...interface{}) {
	s.logger.Debug(msg, args...)
}

func (s *Session) infof(msg string, args ...interface{}) {
	s.logger.Info(msg, args...)
}

func (s *Session) errorf(msg string, args ...interface{}) {
	s.logger.Error(msg, args...)
}

// GetBatch loads the documents of every unfetched resource with one
// batch request. Resources already fetched are left alone, and so are
// resources whose documents the server did not return; they are
// fetched on first access.
func (s *Session) GetBatch(ctx context.Context, resources ...Resource) error {
	var (
		uris    []string
		pending = make(map[string][]*Entity)
	)
	for _, r := range resources {
		e := r.Base()
		if e.State() != Unfetched {
			continue
		}
		if _, ok := pending[e.uri]; !ok {
			uris = append(uris, e.uri)
		}
		pending[e.uri] = append(pending[e.uri], e)
	}
	if len(uris) == 0 {
		return nil
	}
	docs, err := s.transport.FetchMany(ctx, uris)
	if err != nil {
		return err
	}
	var missing int
	for i, uri := range uris {
		if i >= len(docs) || docs[i] == nil {
			missing++
			continue
		}
		for j, e := range pending[uri] {
			if j == 0 {
				e.root = docs[i]
			} else {
				e.root = docs[i].Copy()
			}
		}
	}
	s.debugf("fetched batch", "count", len(uris)-missing, "missing", missing)
	return nil
}
