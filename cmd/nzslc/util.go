package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// GetFlag/GetString/GetStringArray/GetInt mirror
// `Consensys-go-corset/pkg/cmd/util.go`'s "fetch a flag or die" helpers:
// cobra/pflag's typed getters return an error only when the flag name
// itself was never registered, a programmer mistake this CLI treats as
// fatal rather than threading an error return through every call site.

// GetFlag gets a registered bool flag, or exits if the name is wrong.
func GetFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return v
}

// GetString gets a registered string flag, or exits if the name is wrong.
func GetString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return v
}

// GetStringArray gets a registered repeatable string flag, or exits if
// the name is wrong.
func GetStringArray(cmd *cobra.Command, name string) []string {
	v, err := cmd.Flags().GetStringArray(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return v
}

// GetInt gets a registered int flag, or exits if the name is wrong.
func GetInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return v
}

// changedString returns a *string set to the flag's current value only
// if the user actually passed it on the command line, nil otherwise —
// the pointer-means-"unset" convention internal/config.CLIOverrides
// expects so a default pflag zero value never masks a config file
// setting.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v := GetString(cmd, name)
	return &v
}

func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v := GetFlag(cmd, name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v := GetInt(cmd, name)
	return &v
}
