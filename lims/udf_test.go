package lims

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUDF(t *testing.T) (*Sample, *UDFDict) {
	t.Helper()
	s, _ := newTestSession(t, map[string]string{"samples/ADM1A1": sampleDoc})
	smp := Samples.ByURI(s, uri("samples/ADM1A1"))
	d, err := smp.UDF(testCtx)
	require.NoError(t, err)
	return smp, d
}

func udfElements(smp *Sample) map[string]int {
	counts := make(map[string]int)
	for _, el := range smp.Root().ChildrenNamed(udfField.Space, udfField.Local) {
		counts[el.Attr("", "name")]++
	}
	return counts
}

func TestUDFRead(t *testing.T) {
	_, d := sampleUDF(t)

	assert.Equal(t, []string{"Organism", "Volume", "Concentration", "Passed", "Arrival", "Comment"}, d.Keys())
	want := map[string]interface{}{
		"Organism":      "Homo sapiens",
		"Volume":        32,
		"Concentration": 1.5,
		"Passed":        true,
		"Arrival":       time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		"Comment":       nil,
	}
	assert.Equal(t, want, d.Items())

	typ, ok := d.Type("Volume")
	assert.True(t, ok)
	assert.Equal(t, UDFNumeric, typ)
}

func TestUDFWriteExisting(t *testing.T) {
	smp, d := sampleUDF(t)

	require.NoError(t, d.Set("Volume", 21))
	require.NoError(t, d.Set("Concentration", 2.0))
	require.NoError(t, d.Set("Passed", false))
	require.NoError(t, d.Set("Organism", "Mus musculus"))
	require.NoError(t, d.Set("Arrival", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

	root := smp.Root()
	text := func(name string) string {
		for _, el := range root.ChildrenNamed(udfField.Space, udfField.Local) {
			if el.Attr("", "name") == name {
				return el.Text
			}
		}
		return "<missing>"
	}
	assert.Equal(t, "21", text("Volume"))
	assert.Equal(t, "2.0", text("Concentration"))
	assert.Equal(t, "false", text("Passed"))
	assert.Equal(t, "Mus musculus", text("Organism"))
	assert.Equal(t, "2024-01-02", text("Arrival"))

	v, _ := d.Get("Volume")
	assert.Equal(t, 21, v)

	require.NoError(t, d.Set("Organism", nil))
	assert.Equal(t, "", text("Organism"))
	v, ok := d.Get("Organism")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestUDFTypeMismatch(t *testing.T) {
	smp, d := sampleUDF(t)
	before := marshal(t, smp.Root())

	cases := []struct {
		key   string
		value interface{}
	}{
		{"Volume", "lots"},
		{"Passed", "yes"},
		{"Organism", 3},
		{"Arrival", "2024-01-02"},
	}
	for _, tc := range cases {
		err := d.Set(tc.key, tc.value)
		var tm *TypeMismatchError
		if assert.True(t, errors.As(err, &tm), "%s=%v", tc.key, tc.value) {
			assert.Equal(t, tc.key, tm.Field)
		}
	}
	assert.Equal(t, before, marshal(t, smp.Root()))
}

func TestUDFInferNew(t *testing.T) {
	smp, d := sampleUDF(t)

	require.NoError(t, d.Set("Reads", 1000))
	require.NoError(t, d.Set("Ratio", 0.25))
	require.NoError(t, d.Set("Label", "x"))
	require.NoError(t, d.Set("Notes", "line one\nline two"))
	require.NoError(t, d.Set("Done", true))
	require.NoError(t, d.Set("Shipped", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)))

	for key, typ := range map[string]string{
		"Reads":   UDFNumeric,
		"Ratio":   UDFNumeric,
		"Label":   UDFString,
		"Notes":   UDFText,
		"Done":    UDFBoolean,
		"Shipped": UDFDate,
	} {
		got, ok := d.Type(key)
		assert.True(t, ok, key)
		assert.Equal(t, typ, got, key)
	}

	err := d.Set("Tags", []string{"a"})
	var ut *UnsupportedTypeError
	assert.True(t, errors.As(err, &ut))
	assert.False(t, d.Has("Tags"))

	counts := udfElements(smp)
	assert.Equal(t, d.Len(), len(counts))
	for name, n := range counts {
		assert.Equal(t, 1, n, name)
	}
}

func TestUDFDeleteAndClear(t *testing.T) {
	smp, d := sampleUDF(t)

	require.NoError(t, d.Delete("Volume"))
	assert.False(t, d.Has("Volume"))
	assert.NotContains(t, udfElements(smp), "Volume")

	err := d.Delete("Volume")
	var kn *KeyNotFoundError
	require.True(t, errors.As(err, &kn))
	assert.Equal(t, "Volume", kn.Key)

	require.NoError(t, d.Clear())
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, udfElements(smp))
	assert.NotNil(t, smp.Root().Child("", "name"))
}

func TestUDFReplace(t *testing.T) {
	smp, _ := sampleUDF(t)
	require.NoError(t, rootUDF.Replace(testCtx, smp, map[string]interface{}{"B": 2, "A": "x"}))

	d, err := smp.UDF(testCtx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, d.Keys())
}

func TestUDFViewsShareDocument(t *testing.T) {
	smp, d1 := sampleUDF(t)
	d2, err := smp.UDF(testCtx)
	require.NoError(t, err)

	require.NoError(t, d1.Set("Volume", 5))
	require.NoError(t, d2.Set("Volume", 6))

	d3, err := smp.UDF(testCtx)
	require.NoError(t, err)
	v, _ := d3.Get("Volume")
	assert.Equal(t, 6, v)
}

func TestUDT(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{"labs/1": `<lab:lab xmlns:lab="http://genologics.com/ri/lab" xmlns:udf="http://genologics.com/ri/userdefined" uri="http://lims.example.com/api/v2/labs/1">
<name>Genomics</name>
<udf:type name="Billing">
<udf:field type="String" name="Account">A-1</udf:field>
</udf:type>
</lab:lab>`, "labs/2": `<lab:lab xmlns:lab="http://genologics.com/ri/lab" uri="http://lims.example.com/api/v2/labs/2"><name>Empty</name></lab:lab>`})

	lab := Labs.ByURI(s, uri("labs/1"))
	udt, err := lab.UDT(testCtx)
	require.NoError(t, err)
	name, ok := udt.TypeName()
	assert.True(t, ok)
	assert.Equal(t, "Billing", name)
	v, _ := udt.Get("Account")
	assert.Equal(t, "A-1", v)

	require.NoError(t, udt.SetTypeName("Invoice"))
	name, _ = udt.TypeName()
	assert.Equal(t, "Invoice", name)

	plain, err := lab.UDF(testCtx)
	require.NoError(t, err)
	assert.Equal(t, 0, plain.Len())
	_, ok = plain.TypeName()
	assert.False(t, ok)
	var uo *UnsupportedOperationError
	assert.True(t, errors.As(plain.SetTypeName("x"), &uo))

	empty := Labs.ByURI(s, uri("labs/2"))
	udt, err = empty.UDT(testCtx)
	require.NoError(t, err)
	_, ok = udt.TypeName()
	assert.False(t, ok)
	require.NoError(t, udt.Set("Account", "B-2"))
	wrappers := empty.Root().ChildrenNamed(udfType.Space, udfType.Local)
	require.Len(t, wrappers, 1)
	assert.Len(t, wrappers[0].ChildrenNamed(udfField.Space, udfField.Local), 1)
}

func TestUDTWrapperUnnamed(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{"labs/2": `<lab:lab xmlns:lab="http://genologics.com/ri/lab" uri="http://lims.example.com/api/v2/labs/2"><name>Empty</name></lab:lab>`})
	lab := Labs.ByURI(s, uri("labs/2"))

	udt, err := lab.UDT(testCtx)
	require.NoError(t, err)
	require.NoError(t, udt.Set("Account", "B-2"))
	name, ok := udt.TypeName()
	assert.False(t, ok)
	assert.Equal(t, "", name)

	w := lab.Root().Child(udfType.Space, udfType.Local)
	require.NotNil(t, w)
	_, has := w.LookupAttr("", "name")
	assert.False(t, has)
	assert.NotContains(t, marshal(t, lab.Root()), `name=""`)
}

func TestUDFLargeNumbers(t *testing.T) {
	_, d := sampleUDF(t)

	cases := []struct {
		in   float64
		text string
	}{
		{1e15, "1000000000000000.0"},
		{9999999999999998, "9999999999999998.0"},
		{1e16, "1e+16"},
		{0.5, "0.5"},
	}
	for _, tc := range cases {
		require.NoError(t, d.Set("Concentration", tc.in))
		typ, _ := d.Type("Concentration")
		assert.Equal(t, UDFNumeric, typ)
		text, err := encodeUDF("Concentration", typ, tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.text, text, "%v", tc.in)
	}
}
