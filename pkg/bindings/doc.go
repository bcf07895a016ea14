// Package bindings holds typed wrappers generated from the manifests in this
// directory.
package bindings

//go:generate go run ../../cmd/jsbind gen -manifest array.yaml -o array_gen.go
