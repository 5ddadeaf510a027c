package lims

import (
	"context"

	"github.com/CognitoIQ/go-clarity/xmltree"
)

// An EntityField references another entity through the uri attribute
// of a child element.
type EntityField[T Resource] struct {
	node
	typ *Type[T]
}

// NewEntityField returns an EntityField for the element tag whose
// uri points at an entity of type typ.
func NewEntityField[T Resource](tag string, typ *Type[T], nesting ...string) EntityField[T] {
	return EntityField[T]{node: newNode(tag, nesting), typ: typ}
}

// Lookup returns the referenced entity, and false if the element is
// absent. The entity comes from the session cache and is not fetched.
func (f EntityField[T]) Lookup(ctx context.Context, r Resource) (T, bool, error) {
	var zero T
	e, err := load(ctx, r)
	if err != nil {
		return zero, false, err
	}
	el := f.element(e, false)
	if el == nil {
		return zero, false, nil
	}
	uri, ok := el.LookupAttr("", "uri")
	if !ok {
		return zero, false, &MissingValueError{Kind: e.kind.Name, Field: f.field() + "/@uri"}
	}
	return f.typ.ByURI(e.session, uri), true, nil
}

// Get is like Lookup, but returns a *MissingValueError if the element
// does not exist.
func (f EntityField[T]) Get(ctx context.Context, r Resource) (T, error) {
	v, ok, err := f.Lookup(ctx, r)
	if err == nil && !ok {
		err = &MissingValueError{Kind: r.Base().kind.Name, Field: f.field()}
	}
	return v, err
}

// Set points the element at v, creating the element if needed.
func (f EntityField[T]) Set(ctx context.Context, r Resource, v T) error {
	e, err := load(ctx, r)
	if err != nil {
		return err
	}
	ref := v.Base()
	if ref.uri == "" {
		return &MissingValueError{Kind: ref.kind.Name, Field: "uri"}
	}
	f.element(e, true).SetAttr("", "uri", ref.uri)
	return nil
}

// entityListSource maps elements carrying a uri attribute to
// entities.
type entityListSource[T Resource] struct {
	tagScan
	typ *Type[T]
}

func (s entityListSource[T]) parse(e *Entity, el *xmltree.Element) (T, error) {
	uri, ok := el.LookupAttr("", "uri")
	if !ok {
		var zero T
		return zero, &MissingValueError{Kind: e.kind.Name, Field: s.field() + "/@uri"}
	}
	return s.typ.ByURI(e.session, uri), nil
}

func (s entityListSource[T]) build(e *Entity, v T) (*xmltree.Element, error) {
	ref := v.Base()
	if ref.uri == "" {
		return nil, &MissingValueError{Kind: ref.kind.Name, Field: "uri"}
	}
	el := xmltree.New(s.tag)
	el.SetAttr("", "uri", ref.uri)
	return el, nil
}

// An EntityListField is a sequence of references to entities of one
// type.
type EntityListField[T Resource] struct {
	src entityListSource[T]
}

// NewEntityListField returns an EntityListField for the elements
// named tag below the nesting.
func NewEntityListField[T Resource](tag string, typ *Type[T], nesting ...string) EntityListField[T] {
	return EntityListField[T]{entityListSource[T]{tagScan{newNode(tag, nesting)}, typ}}
}

// Get returns a live list of the referenced entities.
func (f EntityListField[T]) Get(ctx context.Context, r Resource) (*List[T], error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	return newList[T](e, f.src)
}

// Replace makes the list hold exactly vs.
func (f EntityListField[T]) Replace(ctx context.Context, r Resource, vs []T) error {
	l, err := f.Get(ctx, r)
	if err != nil {
		return err
	}
	return l.Replace(vs)
}
