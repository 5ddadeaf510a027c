package lims

import (
	"context"
	"strings"
)

// A Lab is a laboratory or customer site.
type Lab struct{ *Entity }

// Labs is the resource type of labs.
var Labs = NewType(Kind{Name: "lab", Endpoint: "labs", Prefix: "lab"},
	func(e *Entity) *Lab { return &Lab{e} })

var (
	labBillingAddress  = NewStringDictField("billing-address")
	labShippingAddress = NewStringDictField("shipping-address")
	labWebsite         = NewStringField("website")
)

// Name returns the name of the lab.
func (l *Lab) Name(ctx context.Context) (string, error) {
	return lookupString(ctx, nameField, l)
}

// SetName renames the lab.
func (l *Lab) SetName(ctx context.Context, v string) error {
	return nameField.Set(ctx, l, v)
}

// Website returns the lab's web address.
func (l *Lab) Website(ctx context.Context) (string, error) {
	return lookupString(ctx, labWebsite, l)
}

// BillingAddress returns the fields of the billing address, such as
// street and city.
func (l *Lab) BillingAddress(ctx context.Context) (map[string]string, error) {
	return labBillingAddress.Get(ctx, l)
}

// ShippingAddress returns the parts of the shipping address by tag.
func (l *Lab) ShippingAddress(ctx context.Context) (map[string]string, error) {
	return labShippingAddress.Get(ctx, l)
}

// UDF returns the user-defined fields of the lab.
func (l *Lab) UDF(ctx context.Context) (*UDFDict, error) { return rootUDF.Get(ctx, l) }

// UDT returns the user-defined type of the lab.
func (l *Lab) UDT(ctx context.Context) (*UDFDict, error) { return rootUDT.Get(ctx, l) }

// ExternalIDs returns the identifiers of the lab in other systems.
func (l *Lab) ExternalIDs(ctx context.Context) ([]ExternalID, error) {
	return externalIDs.Get(ctx, l)
}

// A Researcher is a user of the LIMS.
type Researcher struct{ *Entity }

// Researchers is the resource type of researchers.
var Researchers = NewType(Kind{Name: "researcher", Endpoint: "researchers", Prefix: "res"},
	func(e *Entity) *Researcher { return &Researcher{e} })

var (
	researcherFirstName = NewStringField("first-name")
	researcherLastName  = NewStringField("last-name")
	researcherPhone     = NewStringField("phone")
	researcherFax       = NewStringField("fax")
	researcherEmail     = NewStringField("email")
	researcherInitials  = NewStringField("initials")
	researcherLab       = NewEntityField("lab", Labs)
)

// FirstName returns the researcher's first name.
func (r *Researcher) FirstName(ctx context.Context) (string, error) {
	return lookupString(ctx, researcherFirstName, r)
}

// SetFirstName changes the researcher's first name.
func (r *Researcher) SetFirstName(ctx context.Context, v string) error {
	return researcherFirstName.Set(ctx, r, v)
}

// LastName returns the researcher's last name.
func (r *Researcher) LastName(ctx context.Context) (string, error) {
	return lookupString(ctx, researcherLastName, r)
}

// SetLastName changes the researcher's last name.
func (r *Researcher) SetLastName(ctx context.Context, v string) error {
	return researcherLastName.Set(ctx, r, v)
}

// FullName joins the first and last names.
func (r *Researcher) FullName(ctx context.Context) (string, error) {
	first, err := r.FirstName(ctx)
	if err != nil {
		return "", err
	}
	last, err := r.LastName(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(first + " " + last), nil
}

// Phone returns the researcher's phone number.
func (r *Researcher) Phone(ctx context.Context) (string, error) {
	return lookupString(ctx, researcherPhone, r)
}

// Fax returns the researcher's fax number.
func (r *Researcher) Fax(ctx context.Context) (string, error) {
	return lookupString(ctx, researcherFax, r)
}

// Email returns the researcher's email address.
func (r *Researcher) Email(ctx context.Context) (string, error) {
	return lookupString(ctx, researcherEmail, r)
}

// SetEmail changes the researcher's email address.
func (r *Researcher) SetEmail(ctx context.Context, v string) error {
	return researcherEmail.Set(ctx, r, v)
}

// Initials returns the initials used in generated sample names.
func (r *Researcher) Initials(ctx context.Context) (string, error) {
	return lookupString(ctx, researcherInitials, r)
}

// Lab returns the lab of the researcher, or nil.
func (r *Researcher) Lab(ctx context.Context) (*Lab, error) {
	return lookupEntity(ctx, researcherLab, r)
}

// SetLab moves the researcher to lab l.
func (r *Researcher) SetLab(ctx context.Context, l *Lab) error {
	return researcherLab.Set(ctx, r, l)
}

// UDF returns the user-defined fields of the researcher.
func (r *Researcher) UDF(ctx context.Context) (*UDFDict, error) {
	return rootUDF.Get(ctx, r)
}
// UDT returns the user-defined type of the researcher.
func (r *Researcher) UDT(ctx context.Context) (*UDFDict, error) {
	return rootUDT.Get(ctx, r)
}

// ExternalIDs returns the identifiers of the researcher in other
// systems.
func (r *Researcher) ExternalIDs(ctx context.Context) ([]ExternalID, error) {
	return externalIDs.Get(ctx, r)
}
