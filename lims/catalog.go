package lims

import "context"

// Descriptors shared by several resource kinds.
var (
	rootUDF       = NewUDFField()
	rootUDT       = NewUDTField()
	externalIDs   = ExternalIDField{}
	attachedFiles = NewEntityListField("file:file", Files)
	nameField     = NewStringField("name")
	nameAttr      = NewStringAttrField("name")
)

// The catalog accessors below return the zero value for absent
// elements. The descriptors themselves distinguish the two cases
// through Lookup.

func lookupString(ctx context.Context, f StringField, r Resource) (string, error) {
	v, _, err := f.Lookup(ctx, r)
	return v, err
}

func lookupAttr(ctx context.Context, f StringAttrField, r Resource) (string, error) {
	v, _, err := f.Lookup(ctx, r)
	return v, err
}

func lookupInt(ctx context.Context, f IntField, r Resource) (int, error) {
	v, _, err := f.Lookup(ctx, r)
	return v, err
}

func lookupBool(ctx context.Context, f BoolField, r Resource) (bool, error) {
	v, _, err := f.Lookup(ctx, r)
	return v, err
}

func lookupEntity[T Resource](ctx context.Context, f EntityField[T], r Resource) (T, error) {
	v, _, err := f.Lookup(ctx, r)
	return v, err
}

// entities unwraps a list projection into its current items.
func entities[T Resource](l *List[T], err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	return l.Items(), nil
}
