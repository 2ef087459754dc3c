package strategies

import (
	"errors"
	"fmt"
	"image"
	"net/http"
	"slices"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

// Capabilities of the built-in strategies.
const (
	CapabilityDump    snapshot.Capability = "dump"
	CapabilityText    snapshot.Capability = "text"
	CapabilityBytes   snapshot.Capability = "bytes"
	CapabilityJSON    snapshot.Capability = "json"
	CapabilityYAML    snapshot.Capability = "yaml"
	CapabilityImage   snapshot.Capability = "image"
	CapabilityRequest snapshot.Capability = "request"
)

// ErrDuplicateCapability is returned when a registry is built with the same capability twice.
var ErrDuplicateCapability = errors.New("capability registered more than once")

// ErrInvalidStrategy is returned when a registry is built with a strategy that does not validate.
var ErrInvalidStrategy = errors.New("invalid strategy")

// Entry binds a capability to its default strategy.
type Entry struct {
	Capability snapshot.Capability
	Strategy   snapshot.Strategy[any]
}

// Registry is an immutable table from capability to default strategy.
type Registry struct {
	entries map[snapshot.Capability]snapshot.Strategy[any]
}

var defaultRegistry = mustRegistry(BuiltIn()...)

// BuiltIn returns the entries of the default registry.
func BuiltIn() []Entry {
	return []Entry{
		{Capability: CapabilityDump, Strategy: Dump},
		{Capability: CapabilityText, Strategy: snapshot.Erase(Text)},
		{Capability: CapabilityBytes, Strategy: snapshot.Erase(Bytes)},
		{Capability: CapabilityJSON, Strategy: JSON},
		{Capability: CapabilityYAML, Strategy: YAML},
		{Capability: CapabilityImage, Strategy: snapshot.Erase[image.Image](Image)},
		{Capability: CapabilityRequest, Strategy: snapshot.Erase[*http.Request](RawRequest)},
	}
}

// NewRegistry builds a registry from entries. Every strategy must validate and every capability must be unique.
func NewRegistry(entries ...Entry) (Registry, error) {
	table := make(map[snapshot.Capability]snapshot.Strategy[any], len(entries))

	for _, entry := range entries {
		if _, exists := table[entry.Capability]; exists {
			return Registry{}, fmt.Errorf("%w: %s", ErrDuplicateCapability, entry.Capability)
		}

		if err := entry.Strategy.Validate(); err != nil {
			return Registry{}, errors.Join(ErrInvalidStrategy, fmt.Errorf("capability %s", entry.Capability), err)
		}

		table[entry.Capability] = entry.Strategy
	}

	return Registry{entries: table}, nil
}

// DefaultRegistry returns the registry of built-in strategies.
func DefaultRegistry() Registry {
	return defaultRegistry
}

// Resolve returns the override when one is given, otherwise the default strategy for the capability.
func (r Registry) Resolve(capability snapshot.Capability, override ...snapshot.Strategy[any]) (snapshot.Strategy[any], error) {
	if len(override) > 0 {
		if err := override[0].Validate(); err != nil {
			return snapshot.Strategy[any]{}, errors.Join(ErrInvalidStrategy, err)
		}

		return override[0], nil
	}

	strategy, ok := r.entries[capability]
	if !ok {
		return snapshot.Strategy[any]{}, fmt.Errorf("%w: %q", snapshot.ErrUnsupportedCapability, string(capability))
	}

	return strategy, nil
}

// Capabilities lists the registered capabilities in sorted order.
func (r Registry) Capabilities() []snapshot.Capability {
	capabilities := make([]snapshot.Capability, 0, len(r.entries))
	for capability := range r.entries {
		capabilities = append(capabilities, capability)
	}

	slices.Sort(capabilities)

	return capabilities
}

// Resolve resolves a capability against the default registry.
func Resolve(capability snapshot.Capability, override ...snapshot.Strategy[any]) (snapshot.Strategy[any], error) {
	return defaultRegistry.Resolve(capability, override...)
}

func mustRegistry(entries ...Entry) Registry {
	registry, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}

	return registry
}
