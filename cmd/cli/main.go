package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"goadmit/adapters/excel"
	"goadmit/adapters/jsondoc"
	"goadmit/adapters/report"
	"goadmit/app"
	"goadmit/domain/system"
	"goadmit/internal"
	"goadmit/internal/bounds"
	"goadmit/internal/factorization"
	"goadmit/internal/testkit"
	"goadmit/internal/witness"
	"goadmit/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "goadmit",
		Short:         "Admissibility analysis for finite enforcement systems",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newCheckAdmissibleCmd(),
		newFindWitnessCmd(),
		newComputeNmaxCmd(),
		newClassifyCmd(),
		newTestFactorizationCmd(),
		newGenericityProbeCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(app.ExitCode(err, false))
	}
}

func newService() *app.Service {
	return app.NewService(jsondoc.NewReader(), nil, internal.NewDefaultLogger())
}

// loadSystem reads a system file, picking the reader by extension.
func loadSystem(path string) (*system.System, system.Spec, error) {
	if path == "" {
		return nil, system.Spec{}, fmt.Errorf("--system is required")
	}
	var reader ports.SystemReader
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		reader = excel.NewReader()
	} else {
		reader = jsondoc.NewReader()
	}
	spec, err := reader.ReadSpec(path)
	if err != nil {
		return nil, system.Spec{}, err
	}
	sys, err := system.New(spec)
	if err != nil {
		return nil, system.Spec{}, err
	}
	return sys, spec, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(data))
}

func newCheckAdmissibleCmd() *cobra.Command {
	var systemFile string

	cmd := &cobra.Command{
		Use:   "check-admissible [distinctions...]",
		Short: "Check whether a subset is jointly enforceable",
		Long: `Evaluate the enforcement load of a subset at every interface and
compare it against capacity. Exit code 0 means admissible, 1 inadmissible.

Example: goadmit check-admissible --system system.json d1 d2 d3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := loadSystem(systemFile)
			if err != nil {
				return err
			}
			ids := make([]system.DistinctionID, len(args))
			for i, a := range args {
				ids[i] = system.DistinctionID(a)
			}
			result, err := newService().CheckAdmissible(cmd.Context(), sys, ids)
			if err != nil {
				return err
			}
			printJSON(result)
			os.Exit(app.ExitCode(nil, !result.Admissible))
			return nil
		},
	}

	cmd.Flags().StringVar(&systemFile, "system", "", "System file (json or xlsx)")
	return cmd
}

func newFindWitnessCmd() *cobra.Command {
	var systemFile string
	var maxSetSize, maxCandidates, workers int

	cmd := &cobra.Command{
		Use:   "find-witness",
		Short: "Search for a minimal non-closure witness",
		Long: `Search for disjoint admissible subsets whose union is inadmissible.
Exit code 0 when a witness is found, 1 after an exhaustive negative
search, 3 when the candidate budget runs out first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := loadSystem(systemFile)
			if err != nil {
				return err
			}
			result, err := newService().FindWitness(cmd.Context(), sys, witness.Budget{
				MaxSetSize:    maxSetSize,
				MaxCandidates: maxCandidates,
				Workers:       workers,
			})
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&systemFile, "system", "", "System file (json or xlsx)")
	cmd.Flags().IntVar(&maxSetSize, "max-set-size", 4, "Maximum size of each witness side")
	cmd.Flags().IntVar(&maxCandidates, "max-candidates", witness.DefaultMaxCandidates, "Candidate pair budget")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = GOMAXPROCS)")
	return cmd
}

func newComputeNmaxCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "compute-nmax [epsilon] [eta] [capacity]",
		Short: "Compute the maximum admissible cardinality under uniform costs",
		Long: `Solve n*eps + C(n,2)*eta <= capacity for the largest n.

Example: goadmit compute-nmax 1 1 10`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var eps, eta, capacity float64
			for i, dst := range []*float64{&eps, &eta, &capacity} {
				if _, err := fmt.Sscanf(args[i], "%g", dst); err != nil {
					return fmt.Errorf("invalid numeric argument %q", args[i])
				}
			}
			u := bounds.UniformCosts{Epsilon: eps, Eta: eta}
			result, err := newService().ComputeNmax(cmd.Context(), u, capacity)
			if err != nil {
				return err
			}
			printJSON(result)
			if window >= 0 {
				in, err := bounds.InSaturationWindow(u, capacity, window)
				if err != nil {
					return err
				}
				fmt.Printf("saturation window for n=%d: %v\n", window, in)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&window, "window", -1, "Also test the saturation window for this cardinality")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var systemFile string
	var asMarkdown bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Spectrally classify every interface of a system",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := loadSystem(systemFile)
			if err != nil {
				return err
			}
			cls, err := newService().Classify(cmd.Context(), sys)
			if err != nil {
				return err
			}
			if asMarkdown {
				md, err := report.ClassificationMarkdown(cls)
				if err != nil {
					return err
				}
				fmt.Print(string(md))
				return nil
			}
			printJSON(cls)
			return nil
		},
	}

	cmd.Flags().StringVar(&systemFile, "system", "", "System file (json or xlsx)")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Render as a markdown report")
	return cmd
}

func newTestFactorizationCmd() *cobra.Command {
	var systemFile, iface, interior, exterior string
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "test-factorization",
		Short: "Test whether load factorizes across a subset boundary",
		Long: `Compute the inclusion-exclusion mixed load across an interior/exterior
split at one interface. Exit code 0 when the load factorizes, 1 when it
does not.

Example: goadmit test-factorization --system system.json --interface iface --interior d1,d2 --exterior d3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := loadSystem(systemFile)
			if err != nil {
				return err
			}
			result, err := newService().TestFactorization(cmd.Context(), sys,
				system.InterfaceID(iface), splitIDs(interior), splitIDs(exterior), tolerance)
			if err != nil {
				return err
			}
			printJSON(result)
			os.Exit(app.ExitCode(nil, !result.Factorizes))
			return nil
		},
	}

	cmd.Flags().StringVar(&systemFile, "system", "", "System file (json or xlsx)")
	cmd.Flags().StringVar(&iface, "interface", "", "Interface id")
	cmd.Flags().StringVar(&interior, "interior", "", "Comma-separated interior distinctions")
	cmd.Flags().StringVar(&exterior, "exterior", "", "Comma-separated exterior distinctions")
	cmd.Flags().Float64Var(&tolerance, "tolerance", -1, "Factorization tolerance (negative = default 1e-9, 0 = exact)")
	return cmd
}

func newGenericityProbeCmd() *cobra.Command {
	var systemFile, iface string
	var samples, workers int
	var sigma, tolerance float64
	var seed int64

	cmd := &cobra.Command{
		Use:   "genericity-probe",
		Short: "Statistically probe non-factorization over a perturbed family",
		Long: `Draw perturbed variants of the base system and test a random
interior/exterior split in each. The result is an estimate of how rare
factorizing splits are in the family, never a proof.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, spec, err := loadSystem(systemFile)
			if err != nil {
				return err
			}
			gen, err := testkit.NewPerturbedFamily(spec, system.InterfaceID(iface), sigma, seed)
			if err != nil {
				return err
			}
			result, err := newService().GenericityProbe(cmd.Context(), gen, factorization.ProbeConfig{
				Samples:   samples,
				Tolerance: tolerance,
				Workers:   workers,
			})
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&systemFile, "system", "", "System file (json or xlsx)")
	cmd.Flags().StringVar(&iface, "interface", "iface", "Interface id")
	cmd.Flags().IntVar(&samples, "samples", 1000, "Number of sampled splits")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = GOMAXPROCS)")
	cmd.Flags().Float64Var(&sigma, "sigma", 0.1, "Relative noise standard deviation")
	cmd.Flags().Float64Var(&tolerance, "tolerance", -1, "Factorization tolerance (negative = default 1e-9, 0 = exact)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic sampling")
	return cmd
}

func newReportCmd() *cobra.Command {
	var systemFile string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a spectral classification report for a system",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, _, err := loadSystem(systemFile)
			if err != nil {
				return err
			}
			cls, err := newService().Classify(cmd.Context(), sys)
			if err != nil {
				return err
			}
			md, err := report.ClassificationMarkdown(cls)
			if err != nil {
				return err
			}
			if asHTML {
				fmt.Print(string(report.ToHTML(md)))
				return nil
			}
			fmt.Print(string(md))
			return nil
		},
	}

	cmd.Flags().StringVar(&systemFile, "system", "", "System file (json or xlsx)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the report as HTML")
	return cmd
}

func splitIDs(s string) []system.DistinctionID {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]system.DistinctionID, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, system.DistinctionID(p))
		}
	}
	return out
}
