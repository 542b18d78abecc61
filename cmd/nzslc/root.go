// Command nzslc is the NZSL shader compiler (§6.1): it turns `.nzsl`/
// `.nzslb` shader sources into NZSL text, the binary module format,
// SPIR-V, or SPIR-V disassembly. Grounded on
// `Consensys-go-corset/pkg/cmd/root.go`'s cobra root-command shape
// (a root command that itself does little, with the real work living
// in one subcommand), adapted to nzslc's single-purpose CLI.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is filled in by the release build process; "go install"
// builds fall back to the module version embedded by Go's build info.
var version = ""

var rootCmd = &cobra.Command{
	Use:   "nzslc",
	Short: "Compiler for the Nazara Shading Language (NZSL).",
	Long:  "nzslc compiles NZSL shader sources to NZSL text, the binary module format, SPIR-V, or SPIR-V disassembly.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("nzslc ")
			if version != "" {
				fmt.Print(version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Print(info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}
			fmt.Println()
			return
		}
		cmd.Help()
	},
}

// Execute runs the root command, exiting non-zero on any diagnostic
// error (§6.1 "exit code 0 on success, nonzero on any diagnostic error").
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "print nzslc's version and exit")
}
