package transport

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/CognitoIQ/go-clarity/nsmap"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

var (
	batchLinks = nsmap.MustResolve("ri:links")
	batchLink  = xml.Name{Local: "link"}
)

// FetchMany retrieves the documents at uris through the batch
// endpoints of their collections, one request per collection. The
// result is in the order of uris; a document the server did not
// return is nil.
func (t *HTTP) FetchMany(ctx context.Context, uris []string) ([]*xmltree.Element, error) {
	result := make([]*xmltree.Element, len(uris))
	groups, order, err := t.groupByEndpoint(uris)
	if err != nil {
		return nil, err
	}
	for _, endpoint := range order {
		idx := groups[endpoint]
		req := xmltree.New(batchLinks)
		for _, i := range idx {
			req.NewChild(batchLink,
				xml.Attr{Name: xml.Name{Local: "uri"}, Value: uris[i]},
				xml.Attr{Name: xml.Name{Local: "rel"}, Value: endpoint})
		}
		rsp, err := t.do(ctx, http.MethodPost, t.base+"/"+endpoint+"/batch/retrieve", req)
		if err != nil {
			return nil, err
		}
		if rsp == nil {
			continue
		}
		byURI := make(map[string]*xmltree.Element, len(rsp.Children))
		for _, doc := range rsp.Children {
			if u := doc.Attr("", "uri"); u != "" {
				byURI[u] = doc
			}
		}
		for _, i := range idx {
			doc, ok := byURI[uris[i]]
			if !ok {
				doc = byURI[stripQuery(uris[i])]
			}
			result[i] = doc
		}
		t.logger.Debug("batch retrieve", "endpoint", endpoint, "requested", len(idx),
			"returned", len(rsp.Children))
	}
	return result, nil
}

// groupByEndpoint maps each collection name, such as "artifacts", to
// the indexes of the uris within it, and returns the collection names
// in order of first appearance.
func (t *HTTP) groupByEndpoint(uris []string) (map[string][]int, []string, error) {
	groups := make(map[string][]int)
	var order []string
	for i, u := range uris {
		endpoint, err := t.endpoint(u)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := groups[endpoint]; !ok {
			order = append(order, endpoint)
		}
		groups[endpoint] = append(groups[endpoint], i)
	}
	return groups, order, nil
}

func (t *HTTP) endpoint(uri string) (string, error) {
	u, err := url.Parse(stripQuery(uri))
	if err != nil {
		return "", errors.Wrapf(err, "batch uri %q", uri)
	}
	b, err := url.Parse(t.base)
	if err != nil {
		return "", errors.Wrapf(err, "base uri %q", t.base)
	}
	rest, ok := strings.CutPrefix(u.Path, b.Path+"/")
	if !ok {
		return "", errors.Errorf("batch uri %q is outside %s", uri, t.base)
	}
	endpoint, _, _ := strings.Cut(rest, "/")
	if endpoint == "" {
		return "", errors.Errorf("batch uri %q names no collection", uri)
	}
	return endpoint, nil
}

func stripQuery(uri string) string {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		return uri[:i]
	}
	return uri
}
