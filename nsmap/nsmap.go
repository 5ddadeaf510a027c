// Package nsmap resolves the fixed namespace prefixes used by the
// Clarity LIMS REST API.
//
// Every resource document is rooted in its own namespace, for example
// art:artifact or smp:sample, and user-defined fields live in the udf
// namespace. The table is static, so all functions are safe for
// concurrent use.
package nsmap // import "github.com/CognitoIQ/go-clarity/nsmap"

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

const base = "http://genologics.com/ri"

var prefixes = map[string]string{
	"art":         base + "/artifact",
	"artgr":       base + "/artifactgroup",
	"cnf":         base + "/configuration",
	"con":         base + "/container",
	"ctp":         base + "/containertype",
	"exc":         base + "/exception",
	"file":        base + "/file",
	"inst":        base + "/instrument",
	"lab":         base + "/lab",
	"prc":         base + "/process",
	"prj":         base + "/project",
	"prop":        base + "/property",
	"protcnf":     base + "/protocolconfiguration",
	"protstepcnf": base + "/stepconfiguration",
	"prx":         base + "/processexecution",
	"ptm":         base + "/processtemplate",
	"ptp":         base + "/processtype",
	"que":         base + "/queue",
	"res":         base + "/researcher",
	"ri":          base,
	"rt":          base + "/routing",
	"rtp":         base + "/reagenttype",
	"kit":         base + "/reagentkit",
	"lot":         base + "/reagentlot",
	"smp":         base + "/sample",
	"stg":         base + "/stage",
	"stp":         base + "/step",
	"udf":         base + "/userdefined",
	"ver":         base + "/version",
	"wkfcnf":      base + "/workflowconfiguration",
}

var namespaces = func() map[string]string {
	m := make(map[string]string, len(prefixes))
	for prefix, uri := range prefixes {
		m[uri] = prefix
	}
	return m
}()

// An UnknownNamespaceError is returned when a qualified tag has no
// prefix, or a prefix missing from the table.
type UnknownNamespaceError struct {
	QName string
}

func (e *UnknownNamespaceError) Error() string {
	if !strings.Contains(e.QName, ":") {
		return fmt.Sprintf("nsmap: no namespace prefix in tag %q", e.QName)
	}
	return fmt.Sprintf("nsmap: unknown namespace prefix in tag %q", e.QName)
}

// Resolve converts a prefix-qualified tag such as "udf:field" to an
// xml.Name holding the full namespace URI.
func Resolve(qname string) (xml.Name, error) {
	parts := strings.SplitN(qname, ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return xml.Name{}, &UnknownNamespaceError{QName: qname}
	}
	uri, ok := prefixes[parts[0]]
	if !ok {
		return xml.Name{}, &UnknownNamespaceError{QName: qname}
	}
	return xml.Name{Space: uri, Local: parts[1]}, nil
}

// MustResolve is like Resolve but panics if qname cannot be
// resolved. It is meant for package-level tag tables.
func MustResolve(qname string) xml.Name {
	name, err := Resolve(qname)
	if err != nil {
		panic(err)
	}
	return name
}

// URI returns the namespace bound to prefix.
func URI(prefix string) (string, bool) {
	uri, ok := prefixes[prefix]
	return uri, ok
}

// Prefix returns the prefix bound to a namespace URI. Its signature
// matches xmltree.Prefixer.
func Prefix(uri string) (string, bool) {
	prefix, ok := namespaces[uri]
	return prefix, ok
}

// QName is the inverse of Resolve. Names outside the table are
// returned without a prefix.
func QName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if prefix, ok := namespaces[name.Space]; ok {
		return prefix + ":" + name.Local
	}
	return name.Local
}

// Prefixes returns the known prefixes in sorted order.
func Prefixes() []string {
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
