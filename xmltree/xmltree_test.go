package xmltree

import (
	"encoding/xml"
	"strings"
	"testing"
)

const (
	artNS = "http://genologics.com/ri/artifact"
	udfNS = "http://genologics.com/ri/userdefined"
	conNS = "http://genologics.com/ri/container"
)

var artifactDoc = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<art:artifact xmlns:udf="http://genologics.com/ri/userdefined" xmlns:file="http://genologics.com/ri/file" xmlns:art="http://genologics.com/ri/artifact" uri="http://lims.example.com/api/v2/artifacts/2-1000?state=55" limsid="2-1000">
  <name>PCR plate 1</name>
  <type>Analyte</type>
  <output-type>Analyte</output-type>
  <qc-flag>UNKNOWN</qc-flag>
  <location>
    <container uri="http://lims.example.com/api/v2/containers/27-100" limsid="27-100"/>
    <value>A:1</value>
  </location>
  <working-flag>true</working-flag>
  <sample uri="http://lims.example.com/api/v2/samples/ABC123A1" limsid="ABC123A1"/>
  <udf:field type="Numeric" name="Concentration">12.5</udf:field>
  <udf:field type="String" name="Comment">needs &lt;review&gt; &amp; rerun</udf:field>
  <workflow-stages>
    <workflow-stage status="QUEUED" name="Library prep" uri="http://lims.example.com/api/v2/configuration/workflows/1/stages/2"/>
    <workflow-stage status="COMPLETE" name="QC" uri="http://lims.example.com/api/v2/configuration/workflows/1/stages/3"/>
  </workflow-stages>
</art:artifact>`)

func parseDoc(t *testing.T, document []byte) *Element {
	t.Helper()
	root, err := Parse(document)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestParse(t *testing.T) {
	root := parseDoc(t, artifactDoc)
	if (root.Name != xml.Name{Space: artNS, Local: "artifact"}) {
		t.Errorf("root name %v", root.Name)
	}
	if got := root.Attr("", "limsid"); got != "2-1000" {
		t.Errorf("limsid attribute %q", got)
	}
	if root.Text != "" {
		t.Errorf("whitespace between children should be dropped, got %q", root.Text)
	}
	if name, _ := root.ChildText("", "name"); name != "PCR plate 1" {
		t.Errorf("name %q", name)
	}
	comment := root.ChildrenNamed(udfNS, "field")[1]
	if comment.Text != "needs <review> & rerun" {
		t.Errorf("entities should be decoded in text, got %q", comment.Text)
	}
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{
		``,
		`<a><b></a>`,
		`<a>`,
	} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("Parse(%q) should fail", doc)
		}
	}
}

func TestParseLatin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><name>Gr\xfcn</name>")
	root := parseDoc(t, doc)
	if root.Text != "Grün" {
		t.Errorf("expected charset conversion, got %q", root.Text)
	}
}

func TestSearch(t *testing.T) {
	root := parseDoc(t, artifactDoc)

	if result := root.Search("", "workflow-stage"); len(result) != 2 {
		t.Errorf("Expected Search(\"\", \"workflow-stage\") to return 2 results, got %d", len(result))
	}
	if result := root.Search(udfNS, "field"); len(result) != 2 {
		t.Errorf("Expected 2 udf:field elements, got %d", len(result))
	}
	if result := root.Search(conNS, "field"); len(result) != 0 {
		t.Errorf("namespace should be respected, got %d results", len(result))
	}
}

func TestNSResolution(t *testing.T) {
	root := parseDoc(t, artifactDoc)
	stage := root.Search("", "workflow-stage")[0]
	for _, prefix := range []string{"udf", "file", "art"} {
		if _, ok := stage.ResolveNS(prefix + ":foo"); !ok {
			t.Errorf("Failed to resolve %s: prefix at <%s>", prefix, stage.Name.Local)
		}
	}
	if _, ok := stage.ResolveNS("smp:foo"); ok {
		t.Error("smp: prefix is not declared and should not resolve")
	}
	if got := root.Prefix(xml.Name{Space: udfNS, Local: "field"}); got != "udf:field" {
		t.Errorf("Prefix returned %q", got)
	}
}

func TestMutation(t *testing.T) {
	root := parseDoc(t, []byte(`<ul><li>1</li><em>bad</em><li>2</li></ul>`))
	em := root.Child("", "em")
	if !root.RemoveChild(em) {
		t.Fatal("RemoveChild did not find <em>")
	}
	if root.RemoveChild(em) {
		t.Error("second RemoveChild should report false")
	}
	first := root.Children[0]
	zero := New(xml.Name{Local: "li"})
	zero.Text = "0"
	root.InsertChild(0, zero)
	root.NewChild(xml.Name{Local: "li"}).Text = "3"
	if root.Children[1] != first {
		t.Error("child pointers must survive sibling insertion")
	}
	want := `<ul><li>0</li><li>1</li><li>2</li><li>3</li></ul>`
	if s := root.String(); s != want {
		t.Errorf("got %s, expected %s", s, want)
	}
}

func TestAttrEdit(t *testing.T) {
	el := New(xml.Name{Local: "placement"}, xml.Attr{Name: xml.Name{Local: "uri"}, Value: "a"})
	el.SetAttr("", "uri", "b")
	el.SetAttr("", "limsid", "2-1")
	if v, ok := el.LookupAttr("", "uri"); !ok || v != "b" {
		t.Errorf("uri = %q, %v", v, ok)
	}
	el.RemoveAttr("", "uri")
	if _, ok := el.LookupAttr("", "uri"); ok {
		t.Error("uri should be removed")
	}
	if len(el.StartElement.Attr) != 1 {
		t.Errorf("expected only limsid to remain, got %v", el.StartElement.Attr)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	root := parseDoc(t, artifactDoc)
	doc := Marshal(root)
	again := parseDoc(t, doc)
	if !Equal(root, again) {
		t.Errorf("round trip changed the document:\n%s", doc)
	}
}

func TestMarshalDeclaresNewNamespaces(t *testing.T) {
	root := New(xml.Name{Space: artNS, Local: "artifact"})
	field := root.NewChild(xml.Name{Space: udfNS, Local: "field"},
		xml.Attr{Name: xml.Name{Local: "type"}, Value: "String"},
		xml.Attr{Name: xml.Name{Local: "name"}, Value: "Comment"})
	field.Text = `a "quoted" <value>`

	prefixes := map[string]string{artNS: "art", udfNS: "udf"}
	doc := MarshalPrefixed(root, func(space string) (string, bool) {
		p, ok := prefixes[space]
		return p, ok
	})
	s := string(doc)
	for _, want := range []string{`<art:artifact `, `xmlns:art="` + artNS + `"`, `<udf:field type="String"`} {
		if !strings.Contains(s, want) {
			t.Errorf("%s does not contain %s", s, want)
		}
	}
	again := parseDoc(t, doc)
	if !Equal(root, again) {
		t.Errorf("re-parsed document differs: %s", s)
	}

	generated := string(Marshal(root))
	if !strings.Contains(generated, `xmlns:ns1=`) {
		t.Errorf("expected generated prefixes without a Prefixer: %s", generated)
	}
}

func TestSubtreeMarshal(t *testing.T) {
	root := parseDoc(t, artifactDoc)
	field := root.Search(udfNS, "field")[0]
	sub := parseDoc(t, Marshal(field))
	if sub.Name.Space != udfNS {
		t.Errorf("subtree lost its namespace: %s", Marshal(field))
	}
}

func TestCopy(t *testing.T) {
	root := parseDoc(t, artifactDoc)
	dup := root.Copy()
	dup.Child("", "name").Text = "changed"
	if name, _ := root.ChildText("", "name"); name != "PCR plate 1" {
		t.Error("Copy shares children with the original")
	}
}

func TestEqual(t *testing.T) {
	a := parseDoc(t, []byte(`<a x="1"><b>1</b><c/></a>`))
	b := parseDoc(t, []byte(`<a x="1">
		<c/>
		<b> 1 </b>
	</a>`))
	if !Equal(a, b) {
		t.Error("documents differing in order and white space should be equal")
	}
	c := parseDoc(t, []byte(`<a x="2"><b>1</b><c/></a>`))
	if Equal(a, c) {
		t.Error("attribute values should be compared")
	}
	if a.Children[0].Name.Local != "b" {
		t.Error("Equal must not reorder children")
	}
}

func TestUnmarshal(t *testing.T) {
	root := parseDoc(t, artifactDoc)
	root.Child("", "name").Text = "renamed"
	var v struct {
		Name     string `xml:"name"`
		Location struct {
			Well string `xml:"value"`
		} `xml:"location"`
	}
	if err := root.Unmarshal(&v); err != nil {
		t.Fatal(err)
	}
	if v.Name != "renamed" || v.Location.Well != "A:1" {
		t.Errorf("unexpected result %+v", v)
	}
}
