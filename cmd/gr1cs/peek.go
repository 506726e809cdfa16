package main

import (
	"fmt"
	"os"
	"path/filepath"

	bls12381fr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	bn254fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/field/babybear"
	"github.com/spf13/cobra"

	"github.com/snarkcore/relations/gr1cs"
)

// peekCmd represents the peek command
var peekCmd = &cobra.Command{
	Use:   "peek [system.gr1cs]",
	Short: "prints the scalar field of a serialized system without decoding it",
	Run:   cmdPeek,
}

func init() {
	rootCmd.AddCommand(peekCmd)
}

func cmdPeek(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("missing system path -- gr1cs peek -h for help")
		os.Exit(-1)
	}
	path := filepath.Clean(args[0])
	if !fileExists(path) {
		fmt.Println(path, errNotFound)
		os.Exit(-1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	q, err := gr1cs.PeekModulus(data)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}

	name := "unknown"
	switch {
	case q.Cmp(bn254fr.Modulus()) == 0:
		name = "bn254"
	case q.Cmp(bls12381fr.Modulus()) == 0:
		name = "bls12-381"
	case q.Cmp(babybear.Modulus()) == 0:
		name = "babybear"
	}
	fmt.Printf("%-24s %s\n", "field", name)
	fmt.Printf("%-24s %d bits\n", "modulus size", q.BitLen())
	fmt.Printf("%-24s 0x%s\n", "modulus", q.Text(16))
}
