package cli

import _ "embed"

// embeddedDefaultConfigurationContent holds the baseline logging and audit
// settings merged before any user configuration file.
//
//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded member-audit
// defaults together with their configuration type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte{}, embeddedDefaultConfigurationContent...), configurationTypeConstant
}
