package lims

import (
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/CognitoIQ/go-clarity/nsmap"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

// UDF field types as written in the type attribute.
const (
	UDFString  = "String"
	UDFText    = "Text"
	UDFNumeric = "Numeric"
	UDFBoolean = "Boolean"
	UDFDate    = "Date"
	UDFURI     = "URI"
)

// DateLayout is the text encoding of Date fields.
const DateLayout = "2006-01-02"

var (
	udfField = nsmap.MustResolve("udf:field")
	udfType  = nsmap.MustResolve("udf:type")
)

// decodeUDF converts the text of a field of type typ. Empty text
// decodes to nil.
func decodeUDF(name, typ, text string) (interface{}, error) {
	if text == "" {
		return nil, nil
	}
	switch strings.ToLower(typ) {
	case "numeric":
		if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, &MalformedValueError{Field: name, Text: text, Err: err}
		}
		return f, nil
	case "boolean":
		return strings.ToLower(strings.TrimSpace(text)) == "true", nil
	case "date":
		d, err := time.Parse(DateLayout, strings.TrimSpace(text))
		if err != nil {
			return nil, &MalformedValueError{Field: name, Text: text, Err: err}
		}
		return d, nil
	}
	return text, nil
}

func formatNumber(v interface{}) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return formatFloat(float64(n), 32), true
	case float64:
		return formatFloat(n, 64), true
	}
	return "", false
}

func formatFloat(f float64, bits int) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// encodeUDF checks v against the recorded type of an existing field
// and returns its text.
func encodeUDF(name, typ string, v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	mismatch := &TypeMismatchError{Field: name, Type: typ, Value: v}
	switch strings.ToLower(typ) {
	case "string", "str", "text", "uri":
		s, ok := v.(string)
		if !ok {
			return "", mismatch
		}
		return s, nil
	case "numeric":
		s, ok := formatNumber(v)
		if !ok {
			return "", mismatch
		}
		return s, nil
	case "boolean":
		b, ok := v.(bool)
		if !ok {
			return "", mismatch
		}
		return strconv.FormatBool(b), nil
	case "date":
		d, ok := v.(time.Time)
		if !ok {
			return "", mismatch
		}
		return d.Format(DateLayout), nil
	}
	return "", &UnsupportedOperationError{Op: "set " + name, Reason: fmt.Sprintf("unknown UDF type %q", typ)}
}

// inferUDF picks the type of a new field from the shape of v.
func inferUDF(name string, v interface{}) (typ, text string, err error) {
	switch x := v.(type) {
	case string:
		if strings.Contains(x, "\n") {
			return UDFText, x, nil
		}
		return UDFString, x, nil
	case bool:
		return UDFBoolean, strconv.FormatBool(x), nil
	case time.Time:
		return UDFDate, x.Format(DateLayout), nil
	}
	if s, ok := formatNumber(v); ok {
		return UDFNumeric, s, nil
	}
	return "", "", &UnsupportedTypeError{Field: name, Value: v}
}

// udfSource reads udf:field elements, either directly below the
// nesting or inside a udf:type wrapper.
type udfSource struct {
	nesting Nesting
	udt     bool
}

func (s udfSource) holder(e *Entity, create bool) *xmltree.Element {
	p := node{nesting: s.nesting}.parent(e, create)
	if p == nil || !s.udt {
		return p
	}
	w := child(p, udfType)
	if w == nil && create {
		w = p.NewChild(udfType)
	}
	return w
}

func (s udfSource) scan(e *Entity, create bool) (*xmltree.Element, []*xmltree.Element) {
	h := s.holder(e, create)
	if h == nil {
		return nil, nil
	}
	return h, children(h, udfField)
}

func (udfSource) key(el *xmltree.Element) string {
	return el.Attr("", "name")
}

func (udfSource) parse(e *Entity, el *xmltree.Element) (interface{}, error) {
	return decodeUDF(el.Attr("", "name"), el.Attr("", "type"), el.Text)
}

func (udfSource) update(e *Entity, el *xmltree.Element, key string, v interface{}) error {
	text, err := encodeUDF(key, el.Attr("", "type"), v)
	if err != nil {
		return err
	}
	el.Text = text
	return nil
}

func (udfSource) create(e *Entity, key string, v interface{}) (*xmltree.Element, error) {
	typ, text, err := inferUDF(key, v)
	if err != nil {
		return nil, err
	}
	el := xmltree.New(udfField,
		xml.Attr{Name: xml.Name{Local: "type"}, Value: typ},
		xml.Attr{Name: xml.Name{Local: "name"}, Value: key})
	el.Text = text
	return el, nil
}

// A UDFDict is a live view of the user-defined fields of an entity.
// Values are string, int, float64, bool, time.Time, or nil for empty
// fields.
type UDFDict struct {
	*Dict[interface{}]
	udf udfSource
}

// Type returns the recorded type of field key.
func (d *UDFDict) Type(key string) (string, bool) {
	_, elems := d.udf.scan(d.owner, false)
	if el := d.find(elems, key); el != nil {
		return el.Attr("", "type"), true
	}
	return "", false
}

// TypeName returns the name of the user-defined type wrapping the
// fields. It returns false if the dictionary was not declared as a
// UDT, or the wrapper is absent or unnamed.
func (d *UDFDict) TypeName() (string, bool) {
	if !d.udf.udt {
		return "", false
	}
	w := d.udf.holder(d.owner, false)
	if w == nil {
		return "", false
	}
	name := w.Attr("", "name")
	return name, name != ""
}

// SetTypeName names the user-defined type wrapping the fields,
// creating the wrapper if needed.
func (d *UDFDict) SetTypeName(name string) error {
	if !d.udf.udt {
		return &UnsupportedOperationError{Op: "set UDT name", Reason: "dictionary holds plain UDFs"}
	}
	d.udf.holder(d.owner, true).SetAttr("", "name", name)
	return nil
}

// A UDFField gives access to the user-defined fields below a nesting.
type UDFField struct {
	src udfSource
}

// NewUDFField returns a UDFField for udf:field elements below the
// nesting.
func NewUDFField(nesting ...string) UDFField {
	return UDFField{udfSource{nesting: Nest(nesting...)}}
}

// NewUDTField returns a UDFField for udf:field elements grouped in a
// udf:type wrapper below the nesting.
func NewUDTField(nesting ...string) UDFField {
	return UDFField{udfSource{nesting: Nest(nesting...), udt: true}}
}

// Get returns a live view of the fields.
func (f UDFField) Get(ctx context.Context, r Resource) (*UDFDict, error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	d, err := newDict[interface{}](e, f.src)
	if err != nil {
		return nil, err
	}
	return &UDFDict{Dict: d, udf: f.src}, nil
}

// Replace removes every field and stores the entries of m in key
// order.
func (f UDFField) Replace(ctx context.Context, r Resource, m map[string]interface{}) error {
	d, err := f.Get(ctx, r)
	if err != nil {
		return err
	}
	if err := d.Clear(); err != nil {
		return err
	}
	return d.Update(m)
}
