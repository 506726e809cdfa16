// gr1cs is a small CLI to inspect serialized constraint systems.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snarkcore/relations"
)

var rootCmd = &cobra.Command{
	Use:     "gr1cs",
	Short:   "inspect serialized generalized rank-1 constraint systems",
	Version: buildString(),
}

func buildString() string {
	return fmt.Sprintf("relations v%s", relations.Version.String())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
