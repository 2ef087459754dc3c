package strategies

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
)

// ErrNilRequest is returned when the raw request strategy receives a nil request or one without URL.
var ErrNilRequest = errors.New("request must not be nil")

// RawRequest snapshots an HTTP request as its method and URL, the headers sorted by name,
// a blank line, and the body. The request body is restored after reading.
var RawRequest = snapshot.Strategy[*http.Request]{
	Name:          "raw",
	PathExtension: textExtension,
	Kind:          snapshot.KindText,
	Snapshot:      snapshot.Sync(renderRequest),
	Diff:          diffing.Lines,
}

func renderRequest(request *http.Request) (snapshot.Format, error) {
	if request == nil || request.URL == nil {
		return snapshot.Format{}, ErrNilRequest
	}

	method := request.Method
	if method == "" {
		method = http.MethodGet
	}

	var sb strings.Builder

	sb.WriteString(method)
	sb.WriteString(" ")
	sb.WriteString(request.URL.String())

	names := make([]string, 0, len(request.Header))
	for name := range request.Header {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		for _, value := range request.Header[name] {
			sb.WriteString("\n")
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(value)
		}
	}

	body, err := readBody(request)
	if err != nil {
		return snapshot.Format{}, err
	}

	if len(body) > 0 {
		sb.WriteString("\n\n")
		sb.Write(body)
	}

	return snapshot.TextFormat(sb.String(), textExtension), nil
}

func readBody(request *http.Request) ([]byte, error) {
	if request.Body == nil || request.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, errors.Join(ErrEncodingFailed, err)
	}

	if err = request.Body.Close(); err != nil {
		return nil, errors.Join(ErrEncodingFailed, err)
	}

	request.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}
