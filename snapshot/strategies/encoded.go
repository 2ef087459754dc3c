package strategies

import (
	"bytes"
	"errors"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
)

// ErrEncodingFailed is returned when a subject cannot be encoded by the JSON or YAML strategy.
var ErrEncodingFailed = errors.New("encoding subject failed")

const (
	jsonExtension = "json"
	yamlExtension = "yaml"
	indentWidth   = 2
)

var canonicalJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// JSON snapshots a value as indented JSON with sorted object keys.
var JSON = snapshot.Strategy[any]{
	Name:          "json",
	PathExtension: jsonExtension,
	Kind:          snapshot.KindText,
	Snapshot: snapshot.Sync(func(subject any) (snapshot.Format, error) {
		encoded, err := canonicalJSON.MarshalIndent(subject, "", "  ")
		if err != nil {
			return snapshot.Format{}, errors.Join(ErrEncodingFailed, err)
		}

		return snapshot.TextFormat(string(encoded)+"\n", jsonExtension), nil
	}),
	Diff: diffing.Lines,
}

// YAML snapshots a value as a YAML document. Mapping keys are emitted in sorted order.
var YAML = snapshot.Strategy[any]{
	Name:          "yaml",
	PathExtension: yamlExtension,
	Kind:          snapshot.KindText,
	Snapshot: snapshot.Sync(func(subject any) (snapshot.Format, error) {
		var buf bytes.Buffer

		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(indentWidth)

		if err := encoder.Encode(subject); err != nil {
			return snapshot.Format{}, errors.Join(ErrEncodingFailed, err)
		}

		if err := encoder.Close(); err != nil {
			return snapshot.Format{}, errors.Join(ErrEncodingFailed, err)
		}

		return snapshot.TextFormat(buf.String(), yamlExtension), nil
	}),
	Diff: diffing.Lines,
}
