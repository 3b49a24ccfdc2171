//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target when mage runs without arguments.
var Default = Build

// Build compiles the cooksync binary into bin/.
func Build() error {
	fmt.Println("Building cooksync...")
	return sh.RunV("go", "build", "-o", "bin/cooksync", "./cmd/cooksync")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

type Golden mg.Namespace

// Update rewrites the harness golden files from the current output.
func (Golden) Update() error {
	return sh.RunV("go", "test", "./internal/harness/...", "-update")
}
