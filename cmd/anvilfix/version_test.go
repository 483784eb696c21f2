package main

import "testing"

func TestVersionMatchesRootFlag(t *testing.T) {
	if rootCmd.Version != version {
		t.Errorf("--version reports %q, version command reports %q", rootCmd.Version, version)
	}
}
