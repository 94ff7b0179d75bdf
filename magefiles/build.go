//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the denormalize project using Mage.
//
// Usage:
//
//	mage build       Compile the denorm binary to bin/
//	mage test:all    Run every test
//	mage test:race   Run every test with the race detector
//	mage test:cover  Write coverage to bin/coverage.out and print the summary
//	mage lint        Run golangci-lint
//	mage clean       Remove build artifacts
//	mage install     Install denorm to GOPATH/bin
//	mage stats       Print Go line counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "denorm"
	binaryDir  = "bin"
	cmdDir     = "./cmd/denorm"
	versionVar = "github.com/mesh-intelligence/denormalize/internal/cli.Version"
)

// Build compiles the denorm binary to bin/. DENORM_VERSION, when set, is
// stamped into the binary.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if v := os.Getenv("DENORM_VERSION"); v != "" {
		args = append(args, "-ldflags", "-X "+versionVar+"="+v)
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}
