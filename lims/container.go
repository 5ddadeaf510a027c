package lims

import "context"

// A ContainerType describes the layout of a kind of container, such
// as a 96 well plate or a tube.
type ContainerType struct{ *Entity }

// ContainerTypes is the resource type of container types.
var ContainerTypes = NewType(Kind{Name: "containertype", Endpoint: "containertypes", Prefix: "ctp", Tag: "container-type"},
	func(e *Entity) *ContainerType { return &ContainerType{e} })

var (
	containerTypeCalibrantWells   = NewStringListField("calibrant-well")
	containerTypeUnavailableWells = NewStringListField("unavailable-well")
	containerTypeX                = NewDimensionField("x-dimension")
	containerTypeY                = NewDimensionField("y-dimension")
)

// Name returns the name of the container type.
func (t *ContainerType) Name(ctx context.Context) (string, error) {
	return lookupAttr(ctx, nameAttr, t)
}

// CalibrantWells returns the wells reserved for calibrants.
func (t *ContainerType) CalibrantWells(ctx context.Context) ([]string, error) {
	return containerTypeCalibrantWells.Get(ctx, t)
}

// UnavailableWells returns the wells that cannot hold samples.
func (t *ContainerType) UnavailableWells(ctx context.Context) ([]string, error) {
	return containerTypeUnavailableWells.Get(ctx, t)
}

// XDimension describes the columns of the container.
func (t *ContainerType) XDimension(ctx context.Context) (Dimension, error) {
	return containerTypeX.Get(ctx, t)
}

// YDimension describes the rows of the container.
func (t *ContainerType) YDimension(ctx context.Context) (Dimension, error) {
	return containerTypeY.Get(ctx, t)
}

// A Container holds artifacts in its wells.
type Container struct{ *Entity }

// Containers is the resource type of containers.
var Containers = NewType(Kind{Name: "container", Endpoint: "containers", Prefix: "con"},
	func(e *Entity) *Container { return &Container{e} })

var (
	containerType          = NewEntityField("type", ContainerTypes)
	containerOccupiedWells = NewIntField("occupied-wells")
	containerState         = NewStringField("state")
	containerPlacements    = PlacementField{}
)

// Name returns the name of the container.
func (c *Container) Name(ctx context.Context) (string, error) {
	return lookupString(ctx, nameField, c)
}

// SetName renames the container.
func (c *Container) SetName(ctx context.Context, v string) error {
	return nameField.Set(ctx, c, v)
}

// Type returns the container type, or nil.
func (c *Container) Type(ctx context.Context) (*ContainerType, error) {
	return lookupEntity(ctx, containerType, c)
}

// SetType changes the container type.
func (c *Container) SetType(ctx context.Context, t *ContainerType) error {
	return containerType.Set(ctx, c, t)
}

// OccupiedWells returns the number of wells holding an artifact.
func (c *Container) OccupiedWells(ctx context.Context) (int, error) {
	return lookupInt(ctx, containerOccupiedWells, c)
}

// State returns the lifecycle state of the container, such as
// "Populated" or "Discarded".
func (c *Container) State(ctx context.Context) (string, error) {
	return lookupString(ctx, containerState, c)
}

// Placements returns a live view of the artifacts in the container,
// keyed by well.
func (c *Container) Placements(ctx context.Context) (*Dict[*Artifact], error) {
	return containerPlacements.Get(ctx, c)
}

// PlacementsBatch returns the placements of the container after
// loading every placed artifact with a single batch request.
func (c *Container) PlacementsBatch(ctx context.Context) (map[string]*Artifact, error) {
	d, err := c.Placements(ctx)
	if err != nil {
		return nil, err
	}
	items := d.Items()
	rs := make([]Resource, 0, len(items))
	for _, k := range d.Keys() {
		rs = append(rs, items[k])
	}
	if err := c.session.GetBatch(ctx, rs...); err != nil {
		return nil, err
	}
	return items, nil
}

// UDF returns the user-defined fields of the container.
func (c *Container) UDF(ctx context.Context) (*UDFDict, error) {
	return rootUDF.Get(ctx, c)
}
// UDT returns the user-defined type of the container.
func (c *Container) UDT(ctx context.Context) (*UDFDict, error) {
	return rootUDT.Get(ctx, c)
}
