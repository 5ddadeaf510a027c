package lims

import (
	"context"
	"encoding/xml"
	"sort"
	"strconv"
	"strings"

	"github.com/CognitoIQ/go-clarity/internal/ordered"
	"github.com/CognitoIQ/go-clarity/nsmap"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

var (
	placementTag  = xml.Name{Local: "placement"}
	valueTag      = xml.Name{Local: "value"}
	containerTag  = xml.Name{Local: "container"}
	locationTag   = xml.Name{Local: "location"}
	externalIDTag = nsmap.MustResolve("ri:externalid")
)

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// placementSource maps <placement uri><value>well</value></placement>
// elements to well -> artifact entries.
type placementSource struct{}

func (placementSource) scan(e *Entity, create bool) (*xmltree.Element, []*xmltree.Element) {
	return e.root, children(e.root, placementTag)
}

func (placementSource) key(el *xmltree.Element) string {
	well, _ := el.ChildText("", "value")
	return well
}

func (placementSource) parse(e *Entity, el *xmltree.Element) (*Artifact, error) {
	uri, ok := el.LookupAttr("", "uri")
	if !ok {
		return nil, &MissingValueError{Kind: e.kind.Name, Field: "placement/@uri"}
	}
	return Artifacts.ByURI(e.session, uri), nil
}

func (placementSource) update(e *Entity, el *xmltree.Element, key string, a *Artifact) error {
	if a.uri == "" {
		return &MissingValueError{Kind: a.kind.Name, Field: "uri"}
	}
	el.SetAttr("", "uri", a.uri)
	el.SetAttr("", "limsid", a.ID())
	return nil
}

func (placementSource) create(e *Entity, key string, a *Artifact) (*xmltree.Element, error) {
	if strings.TrimSpace(key) == "" {
		return nil, &InvalidKeyError{Key: key, Reason: "placement wells must be non-empty"}
	}
	if a.uri == "" {
		return nil, &MissingValueError{Kind: a.kind.Name, Field: "uri"}
	}
	el := xmltree.New(placementTag, attr("uri", a.uri), attr("limsid", a.ID()))
	el.NewChild(valueTag).Text = key
	return el, nil
}

// A PlacementField maps container wells to the artifacts placed in
// them.
type PlacementField struct{}

// Get returns a live view of the placements.
func (PlacementField) Get(ctx context.Context, r Resource) (*Dict[*Artifact], error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	return newDict[*Artifact](e, placementSource{})
}

// Update adds or moves the placements in m.
func (f PlacementField) Update(ctx context.Context, r Resource, m map[string]*Artifact) error {
	d, err := f.Get(ctx, r)
	if err != nil {
		return err
	}
	return d.Update(m)
}

// An ExternalID links an entity to a record in another system.
type ExternalID struct {
	ID  string
	URI string
}

// An ExternalIDField lists the ri:externalid elements of a document.
type ExternalIDField struct{}

// Get returns the external ids in document order.
func (ExternalIDField) Get(ctx context.Context, r Resource) ([]ExternalID, error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	var result []ExternalID
	for _, el := range children(e.root, externalIDTag) {
		result = append(result, ExternalID{ID: el.Attr("", "id"), URI: el.Attr("", "uri")})
	}
	return result, nil
}

// ioAttrs are the attributes of an input or output element copied
// into an IOEndpoint.
var ioAttrs = []string{"limsid", "output-type", "output-generation-type"}

// An IOEndpoint is one side of an input-output-map.
type IOEndpoint struct {
	// Attrs holds the limsid, output-type and output-generation-type
	// attributes that are present.
	Attrs         map[string]string
	Artifact      *Artifact
	PostProcess   *Artifact
	ParentProcess *Process
}

// LimsID returns the limsid attribute.
func (p *IOEndpoint) LimsID() string { return p.Attrs["limsid"] }

// OutputType returns the output-type attribute.
func (p *IOEndpoint) OutputType() string { return p.Attrs["output-type"] }

// Keys lists the names of the attributes and references present, in
// sorted order, using the document's names.
func (p *IOEndpoint) Keys() []string {
	keys := make([]string, 0, len(p.Attrs)+3)
	for k := range p.Attrs {
		keys = append(keys, k)
	}
	if p.Artifact != nil {
		keys = append(keys, "uri")
	}
	if p.PostProcess != nil {
		keys = append(keys, "post-process-uri")
	}
	if p.ParentProcess != nil {
		keys = append(keys, "parent-process")
	}
	sort.Strings(keys)
	return keys
}

// An IOMap pairs an input with an output of a process. Either side
// may be nil.
type IOMap struct {
	Input  *IOEndpoint
	Output *IOEndpoint
}

// An IOMapField reads the input-output-map elements below a nesting.
type IOMapField struct{ node }

// NewIOMapField returns an IOMapField for input-output-map elements
// below the nesting.
func NewIOMapField(nesting ...string) IOMapField {
	return IOMapField{newNode("input-output-map", nesting)}
}

// Get returns the maps in document order.
func (f IOMapField) Get(ctx context.Context, r Resource) ([]IOMap, error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	p := f.parent(e, false)
	if p == nil {
		return nil, nil
	}
	var result []IOMap
	for _, el := range children(p, f.tag) {
		in, err := ioEndpoint(e, child(el, xml.Name{Local: "input"}))
		if err != nil {
			return nil, err
		}
		out, err := ioEndpoint(e, child(el, xml.Name{Local: "output"}))
		if err != nil {
			return nil, err
		}
		result = append(result, IOMap{Input: in, Output: out})
	}
	return result, nil
}

func ioEndpoint(e *Entity, el *xmltree.Element) (*IOEndpoint, error) {
	if el == nil {
		return nil, nil
	}
	p := &IOEndpoint{Attrs: make(map[string]string)}
	for _, k := range ioAttrs {
		if v, ok := el.LookupAttr("", k); ok {
			p.Attrs[k] = v
		}
	}
	if uri, ok := el.LookupAttr("", "uri"); ok {
		p.Artifact = Artifacts.ByURI(e.session, uri)
	}
	if uri, ok := el.LookupAttr("", "post-process-uri"); ok {
		p.PostProcess = Artifacts.ByURI(e.session, uri)
	}
	if pp := child(el, xml.Name{Local: "parent-process"}); pp != nil {
		uri, ok := pp.LookupAttr("", "uri")
		if !ok {
			return nil, &MissingValueError{Kind: e.kind.Name, Field: "parent-process/@uri"}
		}
		p.ParentProcess = Processes.ByURI(e.session, uri)
	}
	return p, nil
}

// attributeListSource maps elements to their attribute sets.
type attributeListSource struct{ tagScan }

func (attributeListSource) parse(e *Entity, el *xmltree.Element) (map[string]string, error) {
	m := make(map[string]string, len(el.StartElement.Attr))
	for _, a := range el.StartElement.Attr {
		m[a.Name.Local] = a.Value
	}
	return m, nil
}

func (s attributeListSource) build(e *Entity, m map[string]string) (*xmltree.Element, error) {
	el := xmltree.New(s.tag)
	for _, k := range ordered.Keys(m) {
		el.SetAttr("", k, m[k])
	}
	return el, nil
}

// An AttributeListField is a sequence of elements read as maps of
// their attributes, such as the fields of a protocol step.
type AttributeListField struct {
	src attributeListSource
}

// NewAttributeListField returns an AttributeListField for elements
// named tag below the nesting.
func NewAttributeListField(tag string, nesting ...string) AttributeListField {
	return AttributeListField{attributeListSource{tagScan{newNode(tag, nesting)}}}
}

// Get returns a live list of attribute maps.
func (f AttributeListField) Get(ctx context.Context, r Resource) (*List[map[string]string], error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	return newList[map[string]string](e, f.src)
}

// Replace makes the list hold exactly vs.
func (f AttributeListField) Replace(ctx context.Context, r Resource, vs []map[string]string) error {
	l, err := f.Get(ctx, r)
	if err != nil {
		return err
	}
	return l.Replace(vs)
}

// A Dimension describes one axis of a container type.
type Dimension struct {
	IsAlpha bool
	Offset  int
	Size    int
}

// A DimensionField reads a dimension element of a container type.
type DimensionField struct{ node }

// NewDimensionField returns a DimensionField for the element tag.
func NewDimensionField(tag string) DimensionField {
	return DimensionField{newNode(tag, nil)}
}

// Get decodes the dimension.
func (f DimensionField) Get(ctx context.Context, r Resource) (Dimension, error) {
	var d Dimension
	e, err := load(ctx, r)
	if err != nil {
		return d, err
	}
	el := f.element(e, false)
	if el == nil {
		return d, &MissingValueError{Kind: e.kind.Name, Field: f.field()}
	}
	alpha, ok := el.ChildText("", "is-alpha")
	if !ok {
		return d, &MissingValueError{Kind: e.kind.Name, Field: f.field() + "/is-alpha"}
	}
	d.IsAlpha = strings.ToLower(strings.TrimSpace(alpha)) == "true"
	for _, n := range []struct {
		tag string
		dst *int
	}{{"offset", &d.Offset}, {"size", &d.Size}} {
		text, ok := el.ChildText("", n.tag)
		if !ok {
			return d, &MissingValueError{Kind: e.kind.Name, Field: f.field() + "/" + n.tag}
		}
		v, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return d, &MalformedValueError{Field: f.field() + "/" + n.tag, Text: text, Err: err}
		}
		*n.dst = v
	}
	return d, nil
}

// A Location is a well in a container.
type Location struct {
	Container *Container
	Well      string
}

func readLocation(e *Entity, el *xmltree.Element, field string) (Location, error) {
	var loc Location
	c := child(el, containerTag)
	if c == nil {
		return loc, &MissingValueError{Kind: e.kind.Name, Field: field + "/container"}
	}
	uri, ok := c.LookupAttr("", "uri")
	if !ok {
		return loc, &MissingValueError{Kind: e.kind.Name, Field: field + "/container/@uri"}
	}
	loc.Container = Containers.ByURI(e.session, uri)
	loc.Well, _ = el.ChildText("", "value")
	return loc, nil
}

func writeLocation(el *xmltree.Element, loc Location) error {
	if loc.Container == nil || loc.Container.uri == "" {
		return &MissingValueError{Kind: "location", Field: "container/@uri"}
	}
	el.Children = nil
	el.NewChild(containerTag, attr("uri", loc.Container.uri), attr("limsid", loc.Container.ID()))
	el.NewChild(valueTag).Text = loc.Well
	return nil
}

// A LocationField reads and writes a <location> element holding a
// container reference and a well.
type LocationField struct{ node }

// NewLocationField returns a LocationField for the element tag.
func NewLocationField(tag string) LocationField {
	return LocationField{newNode(tag, nil)}
}

// Lookup returns the location, and false if the element is absent.
func (f LocationField) Lookup(ctx context.Context, r Resource) (Location, bool, error) {
	e, err := load(ctx, r)
	if err != nil {
		return Location{}, false, err
	}
	el := f.element(e, false)
	if el == nil {
		return Location{}, false, nil
	}
	loc, err := readLocation(e, el, f.field())
	return loc, err == nil, err
}

// Get is like Lookup, but returns a *MissingValueError if the element
// does not exist.
func (f LocationField) Get(ctx context.Context, r Resource) (Location, error) {
	loc, ok, err := f.Lookup(ctx, r)
	if err == nil && !ok {
		err = &MissingValueError{Kind: r.Base().kind.Name, Field: f.field()}
	}
	return loc, err
}

// Set replaces the content of the location element.
func (f LocationField) Set(ctx context.Context, r Resource, loc Location) error {
	e, err := load(ctx, r)
	if err != nil {
		return err
	}
	if loc.Container == nil || loc.Container.uri == "" {
		return &MissingValueError{Kind: "location", Field: "container/@uri"}
	}
	return writeLocation(f.element(e, true), loc)
}

// A ReagentLabelField lists the names of reagent-label elements.
type ReagentLabelField struct{ node }

// NewReagentLabelField returns a ReagentLabelField.
func NewReagentLabelField() ReagentLabelField {
	return ReagentLabelField{newNode("reagent-label", nil)}
}

// Get returns the label names in document order, skipping labels
// without a name.
func (f ReagentLabelField) Get(ctx context.Context, r Resource) ([]string, error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, el := range children(e.root, f.tag) {
		if name, ok := el.LookupAttr("", "name"); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Add appends a reagent label.
func (f ReagentLabelField) Add(ctx context.Context, r Resource, name string) error {
	e, err := load(ctx, r)
	if err != nil {
		return err
	}
	e.root.NewChild(f.tag, attr("name", name))
	return nil
}

// An OutputPlacement places a step output in a container well.
type OutputPlacement struct {
	Artifact *Artifact
	Location Location
}

type outputPlacementSource struct{ tagScan }

func (s outputPlacementSource) parse(e *Entity, el *xmltree.Element) (OutputPlacement, error) {
	var p OutputPlacement
	uri, ok := el.LookupAttr("", "uri")
	if !ok {
		return p, &MissingValueError{Kind: e.kind.Name, Field: s.field() + "/@uri"}
	}
	p.Artifact = Artifacts.ByURI(e.session, uri)
	if loc := child(el, locationTag); loc != nil {
		var err error
		if p.Location, err = readLocation(e, loc, s.field()+"/location"); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (s outputPlacementSource) build(e *Entity, p OutputPlacement) (*xmltree.Element, error) {
	if p.Artifact == nil || p.Artifact.uri == "" {
		return nil, &MissingValueError{Kind: "output-placement", Field: "@uri"}
	}
	el := xmltree.New(s.tag, attr("uri", p.Artifact.uri))
	if err := writeLocation(el.NewChild(locationTag), p.Location); err != nil {
		return nil, err
	}
	return el, nil
}

// An OutputPlacementField is the list of output placements of a step.
type OutputPlacementField struct {
	src outputPlacementSource
}

// NewOutputPlacementField returns an OutputPlacementField for
// output-placement elements below the nesting.
func NewOutputPlacementField(nesting ...string) OutputPlacementField {
	return OutputPlacementField{outputPlacementSource{tagScan{newNode("output-placement", nesting)}}}
}

// Get returns a live list of the placements.
func (f OutputPlacementField) Get(ctx context.Context, r Resource) (*List[OutputPlacement], error) {
	e, err := load(ctx, r)
	if err != nil {
		return nil, err
	}
	return newList[OutputPlacement](e, f.src)
}

// Replace makes the list hold exactly ps.
func (f OutputPlacementField) Replace(ctx context.Context, r Resource, ps []OutputPlacement) error {
	l, err := f.Get(ctx, r)
	if err != nil {
		return err
	}
	return l.Replace(ps)
}
