package lims

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var things = NewType(Kind{Name: "thing", Endpoint: "things"},
	func(e *Entity) *Entity { return e })

const thingDoc = `<thing uri="http://lims.example.com/api/v2/things/1" name="first" index="3">
<name>thing one</name>
<count>32</count>
<istest>TRUE</istest>
<alias>a</alias>
<alias>b</alias>
<address><street>1 Main St</street><city>Uppsala</city></address>
<meta><inner><label>deep</label></inner></meta>
<link uri="http://lims.example.com/api/v2/artifacts/a1"/>
</thing>`

func thing(t *testing.T) (*Entity, *fakeTransport) {
	s, ft := newTestSession(t, map[string]string{"things/1": thingDoc})
	return things.ByURI(s, uri("things/1")), ft
}

func TestStringField(t *testing.T) {
	e, ft := thing(t)
	name := NewStringField("name")

	v, err := name.Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, "thing one", v)

	require.NoError(t, name.Set(testCtx, e, "renamed"))
	v, err = name.Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, "renamed", v)
	assert.Equal(t, 1, ft.fetches[uri("things/1")])

	missing := NewStringField("nothing")
	_, ok, err := missing.Lookup(testCtx, e)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = missing.Get(testCtx, e)
	var mv *MissingValueError
	require.True(t, errors.As(err, &mv))
	assert.Equal(t, "nothing", mv.Field)

	require.NoError(t, missing.Set(testCtx, e, "created"))
	v, err = missing.Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, "created", v)
}

func TestIntField(t *testing.T) {
	e, _ := thing(t)
	count := NewIntField("count")

	n, err := count.Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	require.NoError(t, count.Set(testCtx, e, 21))
	assert.Equal(t, "21", e.Root().Child("", "count").Text)

	require.NoError(t, count.SetString(testCtx, e, "22"))
	assert.Equal(t, "22", e.Root().Child("", "count").Text)

	err = count.SetString(testCtx, e, "twenty")
	var tm *TypeMismatchError
	assert.True(t, errors.As(err, &tm))
	assert.Equal(t, "22", e.Root().Child("", "count").Text)

	e.Root().Child("", "count").Text = "x"
	_, err = count.Get(testCtx, e)
	var mf *MalformedValueError
	assert.True(t, errors.As(err, &mf))
}

func TestBoolField(t *testing.T) {
	e, _ := thing(t)
	flag := NewBoolField("istest")

	v, err := flag.Get(testCtx, e)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, flag.Set(testCtx, e, false))
	assert.Equal(t, "false", e.Root().Child("", "istest").Text)
	v, err = flag.Get(testCtx, e)
	require.NoError(t, err)
	assert.False(t, v)
}

func TestAttrFields(t *testing.T) {
	e, _ := thing(t)

	name, err := NewStringAttrField("name").Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, "first", name)

	idx := NewIntAttrField("index")
	n, err := idx.Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, idx.Set(testCtx, e, 4))
	assert.Equal(t, "4", e.Root().Attr("", "index"))

	_, err = NewStringAttrField("absent").Get(testCtx, e)
	var mv *MissingValueError
	require.True(t, errors.As(err, &mv))
	assert.Equal(t, "@absent", mv.Field)
}

func TestStringListAndDict(t *testing.T) {
	e, _ := thing(t)

	aliases, err := NewStringListField("alias").Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, aliases)

	addr, err := NewStringDictField("address").Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"street": "1 Main St", "city": "Uppsala"}, addr)

	empty, err := NewStringDictField("nowhere").Get(testCtx, e)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNestedField(t *testing.T) {
	e, _ := thing(t)

	deep := NewStringField("label", "meta", "inner")
	v, err := deep.Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, "deep", v)

	fresh := NewStringField("leaf", "outer", "middle")
	_, ok, err := fresh.Lookup(testCtx, e)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, e.Root().Child("", "outer"), "reads must not create elements")

	require.NoError(t, fresh.Set(testCtx, e, "one"))
	require.NoError(t, fresh.Set(testCtx, e, "two"))
	assert.Len(t, e.Root().ChildrenNamed("", "outer"), 1)
	outer := e.Root().Child("", "outer")
	assert.Len(t, outer.ChildrenNamed("", "middle"), 1)
	v, err = fresh.Get(testCtx, e)
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestEntityField(t *testing.T) {
	e, _ := thing(t)
	link := NewEntityField("link", Artifacts)

	a, err := link.Get(testCtx, e)
	require.NoError(t, err)
	assert.Same(t, Artifacts.ByURI(e.Session(), uri("artifacts/a1")), a)
	assert.Equal(t, "a1", a.ID())
	assert.Equal(t, Unfetched, a.Base().State())

	a2 := Artifacts.ByURI(e.Session(), uri("artifacts/a2"))
	require.NoError(t, link.Set(testCtx, e, a2))
	got, err := link.Get(testCtx, e)
	require.NoError(t, err)
	assert.Same(t, a2, got)

	_, ok, err := NewEntityField("other", Artifacts).Lookup(testCtx, e)
	require.NoError(t, err)
	assert.False(t, ok)

	unbound := Artifacts.New(e.Session())
	var mv *MissingValueError
	assert.True(t, errors.As(link.Set(testCtx, e, unbound), &mv))
}

func TestEntityListField(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{"samples/ADM1A1": sampleDoc})
	smp := Samples.ByURI(s, uri("samples/ADM1A1"))

	files, err := smp.Files(testCtx)
	require.NoError(t, err)
	require.Equal(t, 1, files.Len())
	assert.Equal(t, "40-1", files.At(0).ID())

	f2 := Files.ByURI(s, uri("files/40-2"))
	require.NoError(t, files.Append(f2))
	assert.Equal(t, 2, files.Len())
	fileTag := attachedFiles.src.tag
	assert.Len(t, smp.Root().ChildrenNamed(fileTag.Space, fileTag.Local), 2)

	require.NoError(t, attachedFiles.Replace(testCtx, smp, []*File{f2}))
	files, err = smp.Files(testCtx)
	require.NoError(t, err)
	assert.Equal(t, []*File{f2}, files.Items())
}

func TestFetchFailurePropagates(t *testing.T) {
	s, _ := newTestSession(t, nil)
	e := things.ByURI(s, uri("things/missing"))
	_, err := NewStringField("name").Get(testCtx, e)
	assert.Error(t, err)
	assert.Equal(t, Unfetched, e.State())
}
