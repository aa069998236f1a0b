//go:build !tinygo

package session

// RecordingLauncher stands in for HardwareLauncher in host tests: instead
// of branching away, it records the last requested transfer so a test can
// assert on it.
type RecordingLauncher struct {
	Launched     bool
	StackPointer uint32
	EntryPoint   uint32
}

func (r *RecordingLauncher) Launch(stackPointer, entryPoint uint32) {
	r.Launched = true
	r.StackPointer = stackPointer
	r.EntryPoint = entryPoint
}
