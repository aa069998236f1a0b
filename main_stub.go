//go:build !tinygo

// Package main's host build exists only so `go build ./...`/`go vet ./...`
// can typecheck the shared packages without a tinygo toolchain; the real
// firmware entrypoint is main.go.
package main

import "fmt"

func main() {
	fmt.Println("an3155boot: this binary only runs under tinygo; build cmd/flashctl for the host tool")
}
