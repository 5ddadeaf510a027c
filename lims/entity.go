package lims

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/CognitoIQ/go-clarity/nsmap"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

// A Resource is any value wrapping an Entity. The concrete catalog
// types embed *Entity and satisfy Resource through it.
type Resource interface {
	Base() *Entity
}

// State describes where an Entity is in its lifecycle.
type State int

const (
	// Unbound entities have no URI yet. They exist to build the
	// payload of a create request.
	Unbound State = iota
	// Unfetched entities have a URI but no document.
	Unfetched
	// Fetched entities hold a document.
	Fetched
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Unfetched:
		return "unfetched"
	case Fetched:
		return "fetched"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// A Kind describes how one resource type is addressed and what its
// document root is called.
type Kind struct {
	// Name of the kind, used in messages and cache keys. It is also
	// the root tag when Tag is empty.
	Name string
	// Collection path below the API base, e.g. "artifacts".
	Endpoint string
	// Namespace prefix of the root element.
	Prefix string
	Tag    string
	// Root prefix and tag of the document POSTed to create an
	// instance, when they differ from Prefix and Tag.
	CreationPrefix string
	CreationTag    string
}

func (k *Kind) rootName(creation bool) xml.Name {
	prefix, tag := k.Prefix, k.Tag
	if tag == "" {
		tag = k.Name
	}
	if creation {
		if k.CreationPrefix != "" {
			prefix = k.CreationPrefix
		}
		if k.CreationTag != "" {
			tag = k.CreationTag
		}
	}
	if prefix == "" {
		return xml.Name{Local: tag}
	}
	return nsmap.MustResolve(prefix + ":" + tag)
}

// An Entity is one LIMS resource: a URI and, once fetched, the
// document describing it. The document is owned by the Entity and is
// edited in place by field descriptors.
type Entity struct {
	session *Session
	kind    *Kind
	uri     string
	root    *xmltree.Element
}

// Base returns e. It lets *Entity and every type embedding it satisfy
// Resource.
func (e *Entity) Base() *Entity { return e }

// Session returns the session e belongs to.
func (e *Entity) Session() *Session { return e.session }

// Kind returns the resource kind of e.
func (e *Entity) Kind() *Kind { return e.kind }

// URI returns the canonical address of e, or "" for unbound entities.
func (e *Entity) URI() string { return e.uri }

// ID returns the LIMS id, the final path segment of the URI.
func (e *Entity) ID() string {
	return idFromURI(e.uri)
}

func idFromURI(uri string) string {
	path := uri
	if u, err := url.Parse(uri); err == nil {
		path = u.Path
	}
	path = strings.TrimSuffix(path, "/")
	return path[strings.LastIndex(path, "/")+1:]
}

// State reports the lifecycle state of e.
func (e *Entity) State() State {
	switch {
	case e.uri == "":
		return Unbound
	case e.root == nil:
		return Unfetched
	}
	return Fetched
}

// Root returns the current document, or nil before the first fetch.
// Callers must not hold on to elements below the root across a
// forced refresh, which replaces the whole tree.
func (e *Entity) Root() *xmltree.Element { return e.root }

// SetRoot replaces the document of e.
func (e *Entity) SetRoot(root *xmltree.Element) { e.root = root }

func (e *Entity) String() string {
	return fmt.Sprintf("%s(%s)", e.kind.Name, e.uri)
}

// Get fetches the document of e unless it is already loaded. With
// force set, the document is fetched again and replaces the current
// one, discarding unsaved edits.
func (e *Entity) Get(ctx context.Context, force bool) error {
	if !force && e.root != nil {
		return nil
	}
	if e.uri == "" {
		return &MissingValueError{Kind: e.kind.Name, Field: "uri"}
	}
	root, err := e.session.transport.Fetch(ctx, e.uri)
	if err != nil {
		return err
	}
	e.session.debugf("fetched document", "kind", e.kind.Name, "uri", e.uri)
	e.root = root
	return nil
}

// EnsureLoaded fetches the document of e if it has not been fetched.
// Every field accessor calls it before touching the tree.
func (e *Entity) EnsureLoaded(ctx context.Context) error {
	return e.Get(ctx, false)
}

// Put saves e by replacing the server copy with the current document.
func (e *Entity) Put(ctx context.Context) error {
	if err := e.requireBound("put"); err != nil {
		return err
	}
	return e.session.transport.Replace(ctx, e.uri, e.root)
}

// Post sends the current document to the URI of e and returns the
// server's response. The document of e is left unchanged.
func (e *Entity) Post(ctx context.Context) (*xmltree.Element, error) {
	if err := e.requireBound("post"); err != nil {
		return nil, err
	}
	return e.session.transport.Append(ctx, e.uri, e.root)
}

func (e *Entity) requireBound(op string) error {
	if e.uri == "" {
		return &MissingValueError{Kind: e.kind.Name, Field: "uri"}
	}
	if e.root == nil {
		return &UnsupportedOperationError{Op: op, Reason: fmt.Sprintf("%s has not been fetched", e)}
	}
	return nil
}

// A Type binds a Kind to the Go type wrapping its entities.
type Type[T Resource] struct {
	Kind
	wrap func(*Entity) T
}

// NewType creates a Type for kind. The wrap function builds the
// concrete value around a fresh Entity.
func NewType[T Resource](kind Kind, wrap func(*Entity) T) *Type[T] {
	return &Type[T]{Kind: kind, wrap: wrap}
}

// ByURI returns the entity at uri. If the session cache already holds
// an entity of this type for uri, that instance is returned.
func (t *Type[T]) ByURI(s *Session, uri string) T {
	r := s.cache.lookupOrInsert(&t.Kind, uri, func() Resource {
		return t.wrap(&Entity{session: s, kind: &t.Kind, uri: uri})
	})
	return r.(T)
}

// ByID returns the entity with the given LIMS id. It fails for kinds
// without a collection endpoint.
func (t *Type[T]) ByID(s *Session, id string) (T, error) {
	if t.Endpoint == "" {
		var zero T
		return zero, &UnsupportedOperationError{Op: "by id", Reason: t.Name + " has no endpoint"}
	}
	return t.ByURI(s, s.URI(t.Endpoint, id)), nil
}

// New returns an unbound, uncached entity with an empty creation
// document.
func (t *Type[T]) New(s *Session) T {
	root := xmltree.New(t.rootName(true))
	return t.wrap(&Entity{session: s, kind: &t.Kind, root: root})
}

// Create builds a new entity, lets build populate its fields, and
// POSTs it to the collection. The entity is bound to the URI in the
// server's response, which also becomes its document.
func (t *Type[T]) Create(ctx context.Context, s *Session, build func(T) error) (T, error) {
	var zero T
	inst := t.New(s)
	if build != nil {
		if err := build(inst); err != nil {
			return zero, err
		}
	}
	if t.Endpoint == "" {
		return zero, &UnsupportedOperationError{Op: "create", Reason: t.Name + " has no endpoint"}
	}
	doc, err := s.transport.Create(ctx, s.URI(t.Endpoint), inst.Base().root)
	if err != nil {
		return zero, err
	}
	if doc == nil {
		return zero, &MissingValueError{Kind: t.Name, Field: "uri"}
	}
	uri, ok := doc.LookupAttr("", "uri")
	if !ok {
		return zero, &MissingValueError{Kind: t.Name, Field: "uri"}
	}
	e := inst.Base()
	e.uri = uri
	e.root = doc
	got := s.cache.lookupOrInsert(&t.Kind, uri, func() Resource { return inst }).(T)
	got.Base().root = doc
	s.infof("created entity", "kind", t.Name, "uri", uri)
	return got, nil
}
