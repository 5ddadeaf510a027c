package lims

import (
	"context"
	"encoding/xml"
)

// A ReagentKit is a kind of reagent from a supplier.
type ReagentKit struct{ *Entity }

// ReagentKits is the resource type of reagent kits.
var ReagentKits = NewType(Kind{Name: "reagentkit", Endpoint: "reagentkits", Prefix: "kit", Tag: "reagent-kit"},
	func(e *Entity) *ReagentKit { return &ReagentKit{e} })

var (
	kitSupplier = NewStringField("supplier")
	kitWebsite  = NewStringField("website")
	kitArchived = NewBoolField("archived")
)

// Name returns the name of the kit.
func (k *ReagentKit) Name(ctx context.Context) (string, error) {
	return lookupString(ctx, nameField, k)
}

// SetName renames the kit.
func (k *ReagentKit) SetName(ctx context.Context, v string) error {
	return nameField.Set(ctx, k, v)
}

// Supplier returns the company supplying the kit.
func (k *ReagentKit) Supplier(ctx context.Context) (string, error) {
	return lookupString(ctx, kitSupplier, k)
}

// SetSupplier changes the supplier of the kit.
func (k *ReagentKit) SetSupplier(ctx context.Context, v string) error {
	return kitSupplier.Set(ctx, k, v)
}

// Website returns the supplier's page for the kit.
func (k *ReagentKit) Website(ctx context.Context) (string, error) {
	return lookupString(ctx, kitWebsite, k)
}

// Archived reports whether the kit is retired from use.
func (k *ReagentKit) Archived(ctx context.Context) (bool, error) {
	return lookupBool(ctx, kitArchived, k)
}

// SetArchived retires or restores the kit.
func (k *ReagentKit) SetArchived(ctx context.Context, v bool) error {
	return kitArchived.Set(ctx, k, v)
}

// A ReagentLot is a batch of a reagent kit in the lab's stock.
type ReagentLot struct{ *Entity }

// ReagentLots is the resource type of reagent lots.
var ReagentLots = NewType(Kind{Name: "reagentlot", Endpoint: "reagentlots", Prefix: "lot", Tag: "reagent-lot"},
	func(e *Entity) *ReagentLot { return &ReagentLot{e} })

var (
	lotKit              = NewEntityField("reagent-kit", ReagentKits)
	lotNumber           = NewStringField("lot-number")
	lotCreatedDate      = NewStringField("created-date")
	lotLastModifiedDate = NewStringField("last-modified-date")
	lotExpiryDate       = NewStringField("expiry-date")
	lotCreatedBy        = NewEntityField("created-by", Researchers)
	lotLastModifiedBy   = NewEntityField("last-modified-by", Researchers)
	lotStatus           = NewStringField("status")
	lotUsageCount       = NewIntField("usage-count")
)

// Name returns the name of the lot.
func (l *ReagentLot) Name(ctx context.Context) (string, error) {
	return lookupString(ctx, nameField, l)
}

// SetName renames the lot.
func (l *ReagentLot) SetName(ctx context.Context, v string) error {
	return nameField.Set(ctx, l, v)
}

// ReagentKit returns the kit the lot belongs to.
func (l *ReagentLot) ReagentKit(ctx context.Context) (*ReagentKit, error) {
	return lookupEntity(ctx, lotKit, l)
}

// SetReagentKit assigns the lot to kit k.
func (l *ReagentLot) SetReagentKit(ctx context.Context, k *ReagentKit) error {
	return lotKit.Set(ctx, l, k)
}

// LotNumber returns the supplier's lot number.
func (l *ReagentLot) LotNumber(ctx context.Context) (string, error) {
	return lookupString(ctx, lotNumber, l)
}

// SetLotNumber changes the supplier's lot number.
func (l *ReagentLot) SetLotNumber(ctx context.Context, v string) error {
	return lotNumber.Set(ctx, l, v)
}

// CreatedDate returns the date the lot was registered.
func (l *ReagentLot) CreatedDate(ctx context.Context) (string, error) {
	return lookupString(ctx, lotCreatedDate, l)
}

// LastModifiedDate returns the date the lot was last changed.
func (l *ReagentLot) LastModifiedDate(ctx context.Context) (string, error) {
	return lookupString(ctx, lotLastModifiedDate, l)
}

// ExpiryDate returns the date the lot expires, as YYYY-MM-DD.
func (l *ReagentLot) ExpiryDate(ctx context.Context) (string, error) {
	return lookupString(ctx, lotExpiryDate, l)
}

// SetExpiryDate changes the expiry date.
func (l *ReagentLot) SetExpiryDate(ctx context.Context, v string) error {
	return lotExpiryDate.Set(ctx, l, v)
}

// CreatedBy returns the researcher who registered the lot.
func (l *ReagentLot) CreatedBy(ctx context.Context) (*Researcher, error) {
	return lookupEntity(ctx, lotCreatedBy, l)
}

// LastModifiedBy returns the researcher who last changed the lot.
func (l *ReagentLot) LastModifiedBy(ctx context.Context) (*Researcher, error) {
	return lookupEntity(ctx, lotLastModifiedBy, l)
}

// Status returns "PENDING", "ACTIVE" or "ARCHIVED".
func (l *ReagentLot) Status(ctx context.Context) (string, error) {
	return lookupString(ctx, lotStatus, l)
}

// SetStatus changes the lot status, such as ACTIVE or ARCHIVED.
func (l *ReagentLot) SetStatus(ctx context.Context, v string) error {
	return lotStatus.Set(ctx, l, v)
}

// UsageCount returns how many steps have used the lot.
func (l *ReagentLot) UsageCount(ctx context.Context) (int, error) {
	return lookupInt(ctx, lotUsageCount, l)
}

// A ReagentType describes a reagent, usually a sequencing index.
type ReagentType struct{ *Entity }

// ReagentTypes is the resource type of reagent types.
var ReagentTypes = NewType(Kind{Name: "reagenttype", Endpoint: "reagenttypes", Prefix: "rtp", Tag: "reagent-type"},
	func(e *Entity) *ReagentType { return &ReagentType{e} })

var reagentCategory = NewStringField("reagent-category")

// Name returns the name of the reagent type.
func (t *ReagentType) Name(ctx context.Context) (string, error) {
	return lookupAttr(ctx, nameAttr, t)
}

// Category returns the reagent category, used to match reagent
// types to steps.
func (t *ReagentType) Category(ctx context.Context) (string, error) {
	return lookupString(ctx, reagentCategory, t)
}

// Sequence returns the index sequence of the reagent type. The second
// result is false when the type is not an index.
func (t *ReagentType) Sequence(ctx context.Context) (string, bool, error) {
	e, err := load(ctx, t)
	if err != nil {
		return "", false, err
	}
	for _, st := range children(e.root, xml.Name{Local: "special-type"}) {
		if st.Attr("", "name") != "Index" {
			continue
		}
		for _, a := range children(st, xml.Name{Local: "attribute"}) {
			if a.Attr("", "name") == "Sequence" {
				v, ok := a.LookupAttr("", "value")
				return v, ok, nil
			}
		}
	}
	return "", false, nil
}
