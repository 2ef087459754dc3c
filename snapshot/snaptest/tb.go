package snaptest

// TB is the part of testing.TB the engine reports through. *testing.T and *testing.B satisfy it.
type TB interface {
	Helper()
	Name() string
	Error(args ...any)
	Log(args ...any)
	Cleanup(fn func())
}
