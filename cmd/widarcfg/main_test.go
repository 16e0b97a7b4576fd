// Package main provides tests for the widarcfg CLI.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leapstack-labs/widarcfg/internal/cli"
)

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "widarcfg") {
		t.Errorf("version output should contain 'widarcfg', got: %s", output)
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"frobnicate"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an unknown command")
	}
}
