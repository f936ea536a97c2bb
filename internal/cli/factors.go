package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ecotrack/internal/factors"
	"github.com/ppiankov/ecotrack/internal/model"
	"github.com/ppiankov/ecotrack/internal/pipeline"
)

var (
	factorsJSON    bool
	factorsResolve string
)

// factorsCmd represents the factors command
var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "List CO2 conversion factors or resolve one activity",
	Long: `Factors prints the conversion table (kg CO2 saved per unit) used by ecotrack.

With --resolve, it shows which factor an activity resolves to and which step
of the lookup chain produced it.

Example:
  ecotrack factors
  ecotrack factors --resolve walk,transportation,car
  ecotrack factors --resolve compost,waste --json`,
	Args: cobra.NoArgs,
	RunE: runFactors,
}

func init() {
	rootCmd.AddCommand(factorsCmd)

	factorsCmd.Flags().BoolVar(&factorsJSON, "json", false, "write JSON instead of a table")
	factorsCmd.Flags().StringVar(&factorsResolve, "resolve", "", "resolve action,category[,instead_of]")
}

func runFactors(cmd *cobra.Command, args []string) error {
	table := factors.Default()
	renderer := pipeline.NewRenderer(false)
	out := cmd.OutOrStdout()

	if factorsResolve != "" {
		key, err := parseFactorKey(factorsResolve)
		if err != nil {
			return err
		}
		res := table.Resolve(key)
		if factorsJSON {
			return renderer.JSON(out, res)
		}
		_, err = fmt.Fprintf(out, "%g kg CO2 per unit (%s, %s)\n", res.Factor, res.Rule, res.Name)
		return err
	}

	entries := table.Entries()
	if factorsJSON {
		return renderer.JSON(out, entries)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tNAME\tKG CO2")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%g\n", e.Group, e.Name, e.Factor)
	}
	return w.Flush()
}

// parseFactorKey parses "action,category[,instead_of]"
func parseFactorKey(s string) (factors.Key, error) {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return factors.Key{}, fmt.Errorf("invalid --resolve %q: want action,category[,instead_of]", s)
	}

	key := factors.Key{Action: parts[0], Category: model.Category(strings.ToLower(parts[1]))}
	if len(parts) == 3 {
		key.InsteadOf = parts[2]
	}
	return key, nil
}
