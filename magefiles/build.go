// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Build targets for bugtracker.
//
//	mage build          compile bin/bugtracker
//	mage install        copy the binary to GOPATH/bin
//	mage test:all       run every test
//	mage test:race      run every test with the race detector
//	mage test:cover     write coverage to bin/coverage.out
//	mage lint           run golangci-lint
//	mage stats          print lines of code per source tree as JSON
//	mage clean          remove build artifacts
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "bugtracker"
	binaryDir  = "bin"
	cmdDir     = "./cmd/bugtracker"
	versionVar = "github.com/mesh-intelligence/bugtracker/internal/cli.Version"
)

// Build compiles the bugtracker binary to bin/, stamping the version from
// the most recent git tag when there is one.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if tag, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil && tag != "" {
		args = append(args, "-ldflags", "-X "+versionVar+"="+strings.TrimPrefix(tag, "v"))
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
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
