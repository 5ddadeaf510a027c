package lims

import (
	"context"
	"strconv"
	"strings"
)

// A StringField is a string held in the text of an element.
type StringField struct{ node }

// NewStringField returns a StringField for the element tag below the
// given nesting. An empty tag means the nesting target itself, or
// the document root.
func NewStringField(tag string, nesting ...string) StringField {
	return StringField{newNode(tag, nesting)}
}

func newNode(tag string, nesting []string) node {
	n := node{nesting: Nest(nesting...)}
	if tag != "" {
		n.tag = Tag(tag)
	}
	return n
}

// Lookup returns the text of the backing element, and false if the
// element does not exist.
func (f StringField) Lookup(ctx context.Context, r Resource) (string, bool, error) {
	e, err := load(ctx, r)
	if err != nil {
		return "", false, err
	}
	el := f.element(e, false)
	if el == nil {
		return "", false, nil
	}
	return el.Text, true, nil
}

// Get is like Lookup, but returns a *MissingValueError if the element
// does not exist.
func (f StringField) Get(ctx context.Context, r Resource) (string, error) {
	v, ok, err := f.Lookup(ctx, r)
	if err == nil && !ok {
		err = &MissingValueError{Kind: r.Base().kind.Name, Field: f.field()}
	}
	return v, err
}

// Set writes the text of the backing element, creating the element
// and its nesting if needed.
func (f StringField) Set(ctx context.Context, r Resource, v string) error {
	e, err := load(ctx, r)
	if err != nil {
		return err
	}
	f.element(e, true).Text = v
	return nil
}

// An IntField is a decimal integer held in the text of an element.
type IntField struct{ node }

// NewIntField returns an IntField for the element tag.
func NewIntField(tag string, nesting ...string) IntField {
	return IntField{newNode(tag, nesting)}
}

// Lookup returns the parsed value, and false if the element is absent.
func (f IntField) Lookup(ctx context.Context, r Resource) (int, bool, error) {
	text, ok, err := StringField(f).Lookup(ctx, r)
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, true, &MalformedValueError{Field: f.field(), Text: text, Err: err}
	}
	return n, true, nil
}

// Get is like Lookup, but returns a *MissingValueError if the element
// does not exist.
func (f IntField) Get(ctx context.Context, r Resource) (int, error) {
	v, ok, err := f.Lookup(ctx, r)
	if err == nil && !ok {
		err = &MissingValueError{Kind: r.Base().kind.Name, Field: f.field()}
	}
	return v, err
}

// Set writes v in decimal.
func (f IntField) Set(ctx context.Context, r Resource, v int) error {
	return StringField(f).Set(ctx, r, strconv.Itoa(v))
}

// SetString writes a decimal string after checking that it parses.
func (f IntField) SetString(ctx context.Context, r Resource, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return &TypeMismatchError{Field: f.field(), Type: "integer", Value: v}
	}
	return f.Set(ctx, r, n)
}

// A BoolField is a boolean held in the text of an element as "true"
// or "false".
type BoolField struct{ node }

// NewBoolField returns a BoolField for the element tag.
func NewBoolField(tag string, nesting ...string) BoolField {
	return BoolField{newNode(tag, nesting)}
}

// Lookup returns true if the element text is "true" in any case.
func (f BoolField) Lookup(ctx context.Context, r Resource) (bool, bool, error) {
	text, ok, err := StringField(f).Lookup(ctx, r)
	if err != nil || !ok {
		return false, ok, err
	}
	return strings.ToLower(strings.TrimSpace(text)) == "true", true, nil
}

// Get is like Lookup, but returns a *MissingValueError if the element
// does not exist.
func (f BoolField) Get(ctx context.Context, r Resource) (bool, error) {
	v, ok, err := f.Lookup(ctx, r)
	if err == nil && !ok {
		err = &MissingValueError{Kind: r.Base().kind.Name, Field: f.field()}
	}
	return v, err
}

// Set writes "true" or "false".
func (f BoolField) Set(ctx context.Context, r Resource, v bool) error {
	return StringField(f).Set(ctx, r, strconv.FormatBool(v))
}

// A StringAttrField is a string held in an attribute of the element
// addressed by the nesting, usually the document root.
type StringAttrField struct {
	attr    string
	nesting Nesting
}

// NewStringAttrField returns a StringAttrField for the attribute name.
func NewStringAttrField(attr string, nesting ...string) StringAttrField {
	return StringAttrField{attr: attr, nesting: Nest(nesting...)}
}

// Lookup returns the attribute value, and false if it is absent.
func (f StringAttrField) Lookup(ctx context.Context, r Resource) (string, bool, error) {
	e, err := load(ctx, r)
	if err != nil {
		return "", false, err
	}
	el := f.nesting.find(e.root)
	if el == nil {
		return "", false, nil
	}
	v, ok := el.LookupAttr("", f.attr)
	return v, ok, nil
}

// Get returns the attribute value, or a *MissingValueError if the
// attribute is absent.
func (f StringAttrField) Get(ctx context.Context, r Resource) (string, error) {
	v, ok, err := f.Lookup(ctx, r)
	if err == nil && !ok {
		err = &MissingValueError{Kind: r.Base().kind.Name, Field: "@" + f.attr}
	}
	return v, err
}

// Set writes the attribute.
func (f StringAttrField) Set(ctx context.Context, r Resource, v string) error {
	e, err := load(ctx, r)
	if err != nil {
		return err
	}
	f.nesting.ensure(e.root).SetAttr("", f.attr, v)
	return nil
}

// An IntAttrField is a decimal integer held in an attribute.
type IntAttrField struct{ StringAttrField }

// NewIntAttrField returns an IntAttrField for the attribute name.
func NewIntAttrField(attr string, nesting ...string) IntAttrField {
	return IntAttrField{NewStringAttrField(attr, nesting...)}
}

// Get returns the parsed attribute, or a *MissingValueError if it is
// absent.
func (f IntAttrField) Get(ctx context.Context, r Resource) (int, error) {
	text, err := f.StringAttrField.Get(ctx, r)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, &MalformedValueError{Field: "@" + f.attr, Text: text, Err: err}
	}
	return n, nil
}

// Set writes v in decimal.
func (f IntAttrField) Set(ctx context.Context, r Resource, v int) error {
	return f.StringAttrField.Set(ctx, r, strconv.Itoa(v))
}

// A StringListField is the text of every element named tag below the
// nesting, in document order.
type StringListField struct{ node }

// NewStringListField returns a StringListField for elements named tag.
func NewStringListField(tag string, nesting ...string) StringListField {
	return StringListField{newNode(tag, nesting)}
}

// Get returns the texts of the matching elements.
func (f StringListField) Get(ctx context.Context, r Resource) ([]string, error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	p := f.parent(e, false)
	if p == nil {
		return nil, nil
	}
	var result []string
	for _, el := range children(p, f.tag) {
		result = append(result, el.Text)
	}
	return result, nil
}

// A StringDictField maps the tag of each child of one element to its
// text.
type StringDictField struct{ node }

// NewStringDictField returns a StringDictField for the element tag.
func NewStringDictField(tag string, nesting ...string) StringDictField {
	return StringDictField{newNode(tag, nesting)}
}

// Get returns the children of the backing element as a map. A missing
// element yields an empty map.
func (f StringDictField) Get(ctx context.Context, r Resource) (map[string]string, error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string)
	el := f.element(e, false)
	if el == nil {
		return result, nil
	}
	for _, c := range el.Children {
		result[c.Name.Local] = c.Text
	}
	return result, nil
}
