// Package utils holds the configuration loader and logger factory shared by
// the member-audit commands.
package utils
