package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"resolve", "address", "regions", "serve", "exhausted", "export"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "georesolve", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestResolveCommand_Flags(t *testing.T) {
	for _, name := range []string{"input", "geojson", "xlsx", "concurrency", "interactive"} {
		require.NotNil(t, resolveCmd.Flags().Lookup(name), "resolve should have --%s", name)
	}
	assert.Equal(t, "0", resolveCmd.Flags().Lookup("concurrency").DefValue)
}

func TestAddressCommand_RegionRequired(t *testing.T) {
	flag := addressCmd.Flags().Lookup("region")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Annotations, "cobra_annotation_bash_completion_one_required_flag")
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestExhaustedCommand_Flags(t *testing.T) {
	flag := exhaustedCmd.Flags().Lookup("older-than-days")
	require.NotNil(t, flag)
	assert.Equal(t, "-1", flag.DefValue)
	require.NotNil(t, exhaustedCmd.Flags().Lookup("rerun"))
}
