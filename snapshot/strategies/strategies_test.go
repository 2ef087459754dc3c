package strategies_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/strategies"
)

type temperature float64

func (t temperature) String() string {
	return "21.5°C"
}

type point struct {
	X, Y int
}

type user struct {
	ID    int
	Name  string
	Roles map[string]bool
	Boss  *user
}

func Test_BuiltIn_Strategies_Validate(t *testing.T) {
	for _, entry := range strategies.BuiltIn() {
		assert.NoError(t, entry.Strategy.Validate(), string(entry.Capability))
	}
}

func Test_Text_Snapshots_String_Verbatim(t *testing.T) {
	// act
	format := produce(t, strategies.Text, "Hello, world!")

	// assert
	assert.Equal(t, snapshot.KindText, format.Kind())
	assert.Equal(t, "txt", format.FileExtension())
	assert.Equal(t, "Hello, world!", format.Text())
}

func Test_Stringer_Uses_String_Method(t *testing.T) {
	// act
	format := produce(t, strategies.Stringer, fmt.Stringer(temperature(21.5)))

	// assert
	assert.Equal(t, "21.5°C", format.Text())
	assert.Equal(t, "text", strategies.Stringer.Name)
}

func Test_Bytes_Snapshots_Binary_Payload(t *testing.T) {
	// act
	format := produce(t, strategies.Bytes, []byte{0xde, 0xad, 0xbe, 0xef})

	// assert
	assert.Equal(t, snapshot.KindBinary, format.Kind())
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, format.Bytes())
}

func Test_Dump_Is_Order_Independent_For_Maps(t *testing.T) {
	// arrange
	first := map[string]int{"c": 3, "a": 1, "b": 2}
	second := map[string]int{}
	second["b"] = 2
	second["a"] = 1
	second["c"] = 3

	// act
	firstDump := produce(t, strategies.Dump, any(first))
	secondDump := produce(t, strategies.Dump, any(second))

	// assert
	assert.Equal(t, firstDump.Text(), secondDump.Text())

	text := firstDump.Text()
	assert.Less(t, strings.Index(text, `"a"`), strings.Index(text, `"b"`))
	assert.Less(t, strings.Index(text, `"b"`), strings.Index(text, `"c"`))
}

func Test_Dump_Sorts_Sets_With_Struct_Keys(t *testing.T) {
	// arrange
	set := map[point]struct{}{{X: 2, Y: 1}: {}, {X: 1, Y: 2}: {}, {X: 1, Y: 1}: {}}

	// act
	dumps := make([]string, 0, 5)
	for range 5 {
		dumps = append(dumps, produce(t, strategies.Dump, any(set)).Text())
	}

	// assert
	for _, dump := range dumps[1:] {
		assert.Equal(t, dumps[0], dump)
	}
}

func Test_Dump_Omits_Pointer_Addresses(t *testing.T) {
	// arrange
	boss := &user{ID: 1, Name: "Ada"}
	subject := &user{ID: 2, Name: "Grace", Roles: map[string]bool{"admin": true, "dev": false}, Boss: boss}

	// act
	format := produce(t, strategies.Dump, any(subject))

	// assert
	assert.NotContains(t, format.Text(), "0x")
	assert.Contains(t, format.Text(), `Name: (string) (len=5) "Grace"`)
	assert.Equal(t, format.Text(), produce(t, strategies.Dump, any(subject)).Text())
}

func Test_Dump_Handles_Nil(t *testing.T) {
	format := produce(t, strategies.Dump, nil)

	assert.NotEmpty(t, format.Text())
}

func Test_JSON_Sorts_Keys_And_Indents(t *testing.T) {
	// act
	format := produce(t, strategies.JSON, any(map[string]int{"c": 3, "a": 1, "b": 2}))

	// assert
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2,\n  \"c\": 3\n}\n", format.Text())
	assert.Equal(t, "json", format.FileExtension())
}

func Test_JSON_Reports_Unsupported_Values(t *testing.T) {
	// act
	_, err := strategies.JSON.Produce(make(chan int)).Await(context.Background())

	// assert
	assert.ErrorIs(t, err, strategies.ErrEncodingFailed)
}

func Test_YAML_Sorts_Keys(t *testing.T) {
	// act
	format := produce(t, strategies.YAML, any(map[string]int{"c": 3, "a": 1, "b": 2}))

	// assert
	assert.Equal(t, "a: 1\nb: 2\nc: 3\n", format.Text())
	assert.Equal(t, "yaml", format.FileExtension())
}

func Test_RawRequest_Renders_Method_Sorted_Headers_And_Body(t *testing.T) {
	// arrange
	body := "pricing[billing]=monthly&pricing[lane]=individual"
	request, err := http.NewRequest(http.MethodPost, "https://www.pointfree.co/subscribe", strings.NewReader(body))
	require.NoError(t, err)
	request.Header.Add("Cookie", `pf_session={"user_id":"0"}`)
	request.Header.Add("Accept", "text/html")

	// act
	format := produce(t, strategies.RawRequest, request)

	// assert
	expected := "POST https://www.pointfree.co/subscribe\n" +
		"Accept: text/html\n" +
		"Cookie: pf_session={\"user_id\":\"0\"}\n" +
		"\n" +
		body
	assert.Equal(t, expected, format.Text())

	restored, err := io.ReadAll(request.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(restored), "the body must still be readable")
}

func Test_RawRequest_Without_Body(t *testing.T) {
	// arrange
	request, err := http.NewRequest(http.MethodGet, "https://www.pointfree.co/", nil)
	require.NoError(t, err)
	request.Header.Add("Accept", "text/html")

	// act
	format := produce(t, strategies.RawRequest, request)

	// assert
	assert.Equal(t, "GET https://www.pointfree.co/\nAccept: text/html", format.Text())
}

func Test_RawRequest_Rejects_Nil(t *testing.T) {
	_, err := strategies.RawRequest.Produce(nil).Await(context.Background())

	assert.ErrorIs(t, err, strategies.ErrNilRequest)
}

func Test_Image_Encodes_PNG(t *testing.T) {
	// arrange
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	// act
	format := produce(t, strategies.Image, image.Image(img))

	// assert
	assert.Equal(t, snapshot.KindBinary, format.Kind())

	decoded, err := png.Decode(bytes.NewReader(format.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(3, 2), decoded.Bounds().Size())
}

func Test_ImageWithPrecision(t *testing.T) {
	// act
	tolerant, err := strategies.ImageWithPrecision(0.9)

	// assert
	require.NoError(t, err)
	assert.Equal(t, strategies.Image.Name, tolerant.Name)

	_, err = strategies.ImageWithPrecision(1.5)
	assert.ErrorIs(t, err, diffing.ErrInvalidPrecision)
}

func Test_Image_Rejects_Nil(t *testing.T) {
	_, err := strategies.Image.Produce(nil).Await(context.Background())

	assert.True(t, errors.Is(err, strategies.ErrNilImage))
}

func produce[V any](t *testing.T, strategy snapshot.Strategy[V], subject V) snapshot.Format {
	t.Helper()

	format, err := strategy.Produce(subject).Await(context.Background())
	require.NoError(t, err)

	return format
}
