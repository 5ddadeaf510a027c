package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/go-clarity/config"
	"github.com/CognitoIQ/go-clarity/internal/testutil"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

const api = "http://lims.example.com/api/v2"

const sampleDoc = `<smp:sample xmlns:smp="http://genologics.com/ri/sample" xmlns:udf="http://genologics.com/ri/userdefined" uri="http://lims.example.com/api/v2/samples/S1" limsid="S1">
<name>s1</name>
<udf:field type="Numeric" name="Volume">10</udf:field>
<udf:field type="String" name="Organism">Homo sapiens</udf:field>
<udf:field type="Boolean" name="Passed">false</udf:field>
<udf:field type="Date" name="Arrival">2023-04-01</udf:field>
</smp:sample>`

type harness struct {
	env
	srv    *testutil.FakeServer
	stdout *bytes.Buffer
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, k := range []string{config.EnvBaseURI, config.EnvUsername, config.EnvPassword, config.EnvVersion} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "clarity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baseuri: http://lims.example.com\nusername: u\npassword: p\n"), 0o600))

	h := &harness{srv: testutil.NewFakeServer(), stdout: new(bytes.Buffer), config: path}
	h.env = env{stdout: h.stdout, stderr: new(bytes.Buffer), client: h.srv.Client()}
	return h
}

func (h *harness) run(args ...string) error {
	return h.env.run(context.Background(), append([]string{"-config", h.config}, args...)...)
}

func TestShow(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("GET", api+"/samples/S1", 200, sampleDoc)

	require.NoError(t, h.run("show", "sample", "S1"))
	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<smp:sample")
	assert.Contains(t, out, "<name>s1</name>")
}

func TestShowByURI(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("GET", api+"/artifacts/A1?state=3", 200, `<art:artifact xmlns:art="http://genologics.com/ri/artifact" uri="http://lims.example.com/api/v2/artifacts/A1?state=3"><name>a</name></art:artifact>`)

	require.NoError(t, h.run("show", "artifact", api+"/artifacts/A1?state=3"))
	assert.Contains(t, h.stdout.String(), "<art:artifact")
}

func TestListUDF(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("GET", api+"/samples/S1", 200, sampleDoc)

	require.NoError(t, h.run("udf", "sample", "S1"))
	assert.Equal(t, "Arrival\tDate\t2023-04-01\n"+
		"Organism\tString\tHomo sapiens\n"+
		"Passed\tBoolean\tfalse\n"+
		"Volume\tNumeric\t10\n", h.stdout.String())

	h.stdout.Reset()
	require.NoError(t, h.run("udf", "-only", "Volume", "sample", "S1"))
	assert.Equal(t, "Volume\tNumeric\t10\n", h.stdout.String())
}

func TestSetUDF(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("GET", api+"/samples/S1", 200, sampleDoc)
	h.srv.Handle("PUT", api+"/samples/S1", 200, sampleDoc)

	require.NoError(t, h.run("set-udf", "-udf", "Volume=12.5", "-udf", "Passed=true",
		"-udf", "Arrival=2024-02-03", "-udf", "Batch=B7", "sample", "S1"))

	put := h.srv.Last()
	require.Equal(t, "PUT", put.Method)
	doc, err := xmltree.Parse(put.Body)
	require.NoError(t, err)
	got := make(map[string]string)
	types := make(map[string]string)
	for _, el := range doc.Search("http://genologics.com/ri/userdefined", "field") {
		got[el.Attr("", "name")] = el.Text
		types[el.Attr("", "name")] = el.Attr("", "type")
	}
	assert.Equal(t, map[string]string{
		"Volume":   "12.5",
		"Organism": "Homo sapiens",
		"Passed":   "true",
		"Arrival":  "2024-02-03",
		"Batch":    "B7",
	}, got)
	assert.Equal(t, "String", types["Batch"])
	assert.Contains(t, h.stdout.String(), "updated 4 field(s)")
}

func TestSetUDFBadValue(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("GET", api+"/samples/S1", 200, sampleDoc)

	err := h.run("set-udf", "-udf", "Volume=lots", "sample", "S1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Volume")
	for _, req := range h.srv.Requests() {
		assert.NotEqual(t, "PUT", req.Method)
	}
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.run())
	err := h.run("bogus", "sample", "S1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	err = h.run("show", "widget", "W1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")

	err = h.run("set-udf", "sample", "S1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no -udf assignments")

	h.srv.Handle("GET", api+"/samples/GONE", 404, `<exc:exception xmlns:exc="http://genologics.com/ri/exception"><message>not found</message></exc:exception>`)
	err = h.run("show", "sample", "GONE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMainLog(t *testing.T) {
	h := newHarness(t)
	logFile := filepath.Join(t.TempDir(), "clarity.log")
	require.NoError(t, os.WriteFile(h.config,
		[]byte("baseuri: http://lims.example.com\nusername: u\npassword: p\nmain_log: "+logFile+"\n"), 0o600))
	h.srv.Handle("GET", api+"/samples/S1", 200, sampleDoc)

	require.NoError(t, h.run("-v", "show", "sample", "S1"))
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lims request")
	assert.Contains(t, string(data), "samples/S1")
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		typ, text string
		want      interface{}
	}{
		{"Numeric", "3", 3},
		{"Numeric", "0.5", 0.5},
		{"Boolean", "true", true},
		{"Date", "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"String", "x", "x"},
		{"Numeric", "", nil},
		{"", "", ""},
	}
	for _, tc := range cases {
		got, err := parseValue(tc.typ, tc.text)
		require.NoError(t, err, "%s %q", tc.typ, tc.text)
		assert.Equal(t, tc.want, got, "%s %q", tc.typ, tc.text)
	}
	_, err := parseValue("Boolean", "maybe")
	assert.Error(t, err)
}
