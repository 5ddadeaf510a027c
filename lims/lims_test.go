package lims

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/go-clarity/xmltree"
)

const testBase = "http://lims.example.com/api/v2"

// fakeTransport serves documents from memory and records what the
// session sends it.
type fakeTransport struct {
	docs     map[string]string
	fetches  map[string]int
	batches  [][]string
	created  map[string]*xmltree.Element
	replaced map[string]*xmltree.Element
	appended map[string]*xmltree.Element
	// responses to POSTs, by target uri
	responses map[string]string
	// POST targets that answer with an empty body
	empty map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		docs:      make(map[string]string),
		fetches:   make(map[string]int),
		created:   make(map[string]*xmltree.Element),
		replaced:  make(map[string]*xmltree.Element),
		appended:  make(map[string]*xmltree.Element),
		responses: make(map[string]string),
		empty:     make(map[string]bool),
	}
}

func (f *fakeTransport) parse(uri string, doc string) (*xmltree.Element, error) {
	if doc == "" {
		return nil, fmt.Errorf("fake: no document at %s", uri)
	}
	return xmltree.Parse([]byte(doc))
}

func (f *fakeTransport) Fetch(ctx context.Context, uri string) (*xmltree.Element, error) {
	f.fetches[uri]++
	return f.parse(uri, f.docs[uri])
}

func (f *fakeTransport) Create(ctx context.Context, uri string, doc *xmltree.Element) (*xmltree.Element, error) {
	f.created[uri] = doc.Copy()
	if f.empty[uri] {
		return nil, nil
	}
	return f.parse(uri, f.responses[uri])
}

func (f *fakeTransport) Replace(ctx context.Context, uri string, doc *xmltree.Element) error {
	f.replaced[uri] = doc.Copy()
	return nil
}

func (f *fakeTransport) Append(ctx context.Context, uri string, doc *xmltree.Element) (*xmltree.Element, error) {
	if doc != nil {
		f.appended[uri] = doc.Copy()
	} else {
		f.appended[uri] = nil
	}
	if f.empty[uri] {
		return nil, nil
	}
	return f.parse(uri, f.responses[uri])
}

func (f *fakeTransport) FetchMany(ctx context.Context, uris []string) ([]*xmltree.Element, error) {
	f.batches = append(f.batches, append([]string(nil), uris...))
	result := make([]*xmltree.Element, len(uris))
	for i, uri := range uris {
		if f.docs[uri] == "" {
			continue
		}
		doc, err := f.parse(uri, f.docs[uri])
		if err != nil {
			return nil, err
		}
		result[i] = doc
	}
	return result, nil
}

func newTestSession(t *testing.T, docs map[string]string) (*Session, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	for k, v := range docs {
		ft.docs[testBase+"/"+k] = v
	}
	return NewSession(testBase, ft), ft
}

func uri(path string) string { return testBase + "/" + path }

func marshal(t *testing.T, el *xmltree.Element) string {
	t.Helper()
	require.NotNil(t, el)
	return string(xmltree.Marshal(el))
}

var testCtx = context.Background()

const sampleDoc = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<smp:sample xmlns:udf="http://genologics.com/ri/userdefined" xmlns:ri="http://genologics.com/ri" xmlns:file="http://genologics.com/ri/file" xmlns:smp="http://genologics.com/ri/sample" uri="http://lims.example.com/api/v2/samples/ADM1A1" limsid="ADM1A1">
<name>sample-1</name>
<date-received>2023-04-01</date-received>
<project limsid="ADM1" uri="http://lims.example.com/api/v2/projects/ADM1"/>
<submitter uri="http://lims.example.com/api/v2/researchers/3"/>
<artifact limsid="ADM1A1PA1" uri="http://lims.example.com/api/v2/artifacts/ADM1A1PA1?state=10"/>
<udf:field type="String" name="Organism">Homo sapiens</udf:field>
<udf:field type="Numeric" name="Volume">32</udf:field>
<udf:field type="Numeric" name="Concentration">1.5</udf:field>
<udf:field type="Boolean" name="Passed">True</udf:field>
<udf:field type="Date" name="Arrival">2023-04-01</udf:field>
<udf:field type="Text" name="Comment"></udf:field>
<note uri="http://lims.example.com/api/v2/samples/ADM1A1/notes/1"/>
<file:file limsid="40-1" uri="http://lims.example.com/api/v2/files/40-1"/>
<ri:externalid id="ext-1" uri="http://external.example.com/1"/>
<ri:externalid id="ext-2" uri="http://external.example.com/2"/>
</smp:sample>`

const containerDoc = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<con:container xmlns:udf="http://genologics.com/ri/userdefined" xmlns:con="http://genologics.com/ri/container" uri="http://lims.example.com/api/v2/containers/27-1" limsid="27-1">
<name>plate-1</name>
<type uri="http://lims.example.com/api/v2/containertypes/1" name="96 well plate"/>
<occupied-wells>2</occupied-wells>
<placement uri="http://lims.example.com/api/v2/artifacts/a1" limsid="a1"><value>A:1</value></placement>
<placement uri="http://lims.example.com/api/v2/artifacts/a2" limsid="a2"><value>B:1</value></placement>
<state>Populated</state>
</con:container>`

const containerTypeDoc = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<ctp:container-type xmlns:ctp="http://genologics.com/ri/containertype" uri="http://lims.example.com/api/v2/containertypes/1" name="96 well plate">
<is-tube>false</is-tube>
<x-dimension><is-alpha>false</is-alpha><offset>1</offset><size>12</size></x-dimension>
<y-dimension><is-alpha>true</is-alpha><offset>0</offset><size>8</size></y-dimension>
<calibrant-well>A:1</calibrant-well>
<unavailable-well>H:12</unavailable-well>
<unavailable-well>H:11</unavailable-well>
</ctp:container-type>`

func artifactDoc(id, typ, outputType string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<art:artifact xmlns:art="http://genologics.com/ri/artifact" xmlns:udf="http://genologics.com/ri/userdefined" uri="http://lims.example.com/api/v2/artifacts/%[1]s" limsid="%[1]s">
<name>artifact %[1]s</name>
<type>%[2]s</type>
<output-type>%[3]s</output-type>
<parent-process uri="http://lims.example.com/api/v2/processes/24-1" limsid="24-1"/>
<qc-flag>PASSED</qc-flag>
<location><container uri="http://lims.example.com/api/v2/containers/27-1" limsid="27-1"/><value>A:1</value></location>
<working-flag>true</working-flag>
<sample uri="http://lims.example.com/api/v2/samples/ADM1A1" limsid="ADM1A1"/>
<reagent-label name="D701-D501"/>
<workflow-stages>
<workflow-stage status="QUEUED" name="Library Prep" uri="http://lims.example.com/api/v2/configuration/workflows/1/stages/2"/>
</workflow-stages>
</art:artifact>`, id, typ, outputType)
}

const processDoc = `<?xml version="1.0" encoding="UTF-8"?>
<prc:process xmlns:udf="http://genologics.com/ri/userdefined" xmlns:prc="http://genologics.com/ri/process" uri="http://lims.example.com/api/v2/processes/24-1" limsid="24-1">
<type uri="http://lims.example.com/api/v2/processtypes/7">Library Prep</type>
<date-run>2023-04-02</date-run>
<technician uri="http://lims.example.com/api/v2/researchers/3"/>
<input-output-map>
<input post-process-uri="http://lims.example.com/api/v2/artifacts/in1?state=2" uri="http://lims.example.com/api/v2/artifacts/in1?state=1" limsid="in1">
<parent-process uri="http://lims.example.com/api/v2/processes/23-1" limsid="23-1"/>
</input>
<output uri="http://lims.example.com/api/v2/artifacts/out1?state=3" output-generation-type="PerInput" output-type="Analyte" limsid="out1"/>
</input-output-map>
<input-output-map>
<input post-process-uri="http://lims.example.com/api/v2/artifacts/in1?state=2" uri="http://lims.example.com/api/v2/artifacts/in1?state=1" limsid="in1"/>
<output uri="http://lims.example.com/api/v2/artifacts/rf1?state=4" output-generation-type="PerInput" output-type="ResultFile" limsid="rf1"/>
</input-output-map>
<input-output-map>
<input post-process-uri="http://lims.example.com/api/v2/artifacts/in2?state=2" uri="http://lims.example.com/api/v2/artifacts/in2?state=1" limsid="in2"/>
<output uri="http://lims.example.com/api/v2/artifacts/srf1?state=5" output-generation-type="PerAllInputs" output-type="SharedResultFile" limsid="srf1"/>
</input-output-map>
<udf:field type="Numeric" name="Cycles">12</udf:field>
</prc:process>`
