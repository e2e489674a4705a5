//go:build darwin

// Package darwin provides the macOS accessibility host using the
// ApplicationServices and AppKit frameworks.
// All functionality requires CGo (Objective-C frameworks).
// When CGo is disabled, the package compiles as a no-op stub.
package darwin
