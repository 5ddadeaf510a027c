// Package lims maps Clarity LIMS REST resources onto Go values.
//
// Every resource is an Entity backed by one XML document. Attributes
// are read and written through field descriptors (StringField,
// EntityField, UDFField, ...) that locate their backing element in the
// entity's current document, fetching it on first use. Descriptors
// never copy values out of the tree: scalar setters edit the element
// text, and container-valued fields return a Dict or List projection
// whose mutators edit the document before re-reading it.
//
// Entities are obtained through a Type, such as Artifacts or Samples,
// and are deduplicated by URI in the Session's Cache:
//
//	s := lims.NewSession("https://lims.example.com/api/v2", tr)
//	a, _ := lims.Artifacts.ByID(s, "2-1000")
//	udf, err := a.UDF(ctx)
//	if err != nil {
//		return err
//	}
//	if err := udf.Set("Concentration", 12.5); err != nil {
//		return err
//	}
//	return a.Put(ctx)
//
// The package is written for single-goroutine use of each entity;
// only the Cache is safe for concurrent access.
package lims // import "github.com/CognitoIQ/go-clarity/lims"
