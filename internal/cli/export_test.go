package cli

// NewRootCmdForTest exposes a fresh root command to the cli_test package.
var NewRootCmdForTest = newRootCmd
