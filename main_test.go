package main

import (
	"testing"

	"modgraph/cmd"
)

func TestVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("Expected default version to be 'dev', got %s", version)
	}
}

func TestMainPackageIntegration(t *testing.T) {
	originalVersion := cmd.GetVersion()
	defer cmd.SetVersion(originalVersion)

	for _, v := range []string{"dev", "1.0.0", "v2.0.0-rc1"} {
		cmd.SetVersion(v)
		if got := cmd.GetVersion(); got != v {
			t.Errorf("Expected version %s, got %s", v, got)
		}
	}
}
