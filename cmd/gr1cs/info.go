package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	bls12381fr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	bn254fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/field/babybear"
	"github.com/spf13/cobra"

	"github.com/snarkcore/relations/gr1cs"
	babybearcs "github.com/snarkcore/relations/gr1cs/babybear"
	bls12381cs "github.com/snarkcore/relations/gr1cs/bls12-381"
	bn254cs "github.com/snarkcore/relations/gr1cs/bn254"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:     "info [system.gr1cs]",
	Short:   "prints the predicates, variable counts and matrix shape of a serialized system",
	Run:     cmdInfo,
	Version: buildString(),
}

var fMatrices bool

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.PersistentFlags().BoolVar(&fMatrices, "matrices", false, "also prints per-slot nonzero counts")
}

var errNotFound = errors.New("file not found")

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func cmdInfo(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("missing system path -- gr1cs info -h for help")
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

	switch {
	case q.Cmp(bn254fr.Modulus()) == 0:
		err = printInfo(data, bn254cs.NewField())
	case q.Cmp(bls12381fr.Modulus()) == 0:
		err = printInfo(data, bls12381cs.NewField())
	case q.Cmp(babybear.Modulus()) == 0:
		err = printInfo(data, babybearcs.NewField())
	default:
		err = fmt.Errorf("unsupported field %s", q.Text(16))
	}
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
}

func printInfo[E gr1cs.Element](data []byte, f gr1cs.Field[E]) error {
	cs := gr1cs.NewConstraintSystem(f, gr1cs.WithMode(gr1cs.Setup))
	if _, err := cs.FromBytes(data); err != nil {
		return err
	}

	fmt.Printf("%-24s %d bits\n", "field", cs.Modulus().BitLen())
	fmt.Printf("%-24s %d\n", "instance variables", cs.NbInstanceVariables())
	fmt.Printf("%-24s %d\n", "witness variables", cs.NbWitnessVariables())
	fmt.Printf("%-24s %d\n", "linear combinations", cs.NbLinearCombinations())
	fmt.Printf("%-24s %d\n", "constraints", cs.NbConstraints())
	for _, label := range cs.PredicateLabels() {
		fmt.Printf("  %-22s arity %d, %d constraints\n",
			label, cs.PredicateArity(label), cs.NbPredicateConstraints(label))
	}

	if fMatrices {
		ms, err := cs.ToMatrices()
		if err != nil {
			return err
		}
		for _, label := range cs.PredicateLabels() {
			for j, m := range ms[label] {
				fmt.Printf("  %s slot %d: %d nonzero\n", label, j, m.NbNonZero())
			}
		}
	}
	return nil
}
