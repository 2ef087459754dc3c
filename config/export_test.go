package config

// FromLookup exposes the environment parsing with an injectable lookup.
var FromLookup = fromLookup
