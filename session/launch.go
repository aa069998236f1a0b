package session

// Launcher performs the actual transfer of control spec.md §4.8's Go
// handler ends with: load the stack pointer from the target's reset-vector
// pair and branch to its entry point. It never returns on success.
type Launcher interface {
	Launch(stackPointer, entryPoint uint32)
}
