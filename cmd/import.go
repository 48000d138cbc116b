package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"masterdata-importer/feature/masterdata"
	"masterdata-importer/feature/masterdata/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importPolicy       string
	importOnly         []string
	importKindPolicies map[string]string
	importMinCollect   int
	importMaxCollect   int
	importDryRun       bool
	importEntities     string
)

// importCmd runs one full import.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the region's master-data dump into the database",
	Long: `Load the configured dump, assemble entities and merge them into the database.

Examples:
  # Import everything with the configured policy
  import

  # Preview servants and craft essences without writing
  import --only servant,craft_essence --dry-run

  # Keep stored servants, fill only their gaps
  import --kind-policy servant=append

  # Import a pre-assembled entity set
  import --from-entities sets/jp-latest.json`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importPolicy, "policy", "", "Default conflict policy: skip, override or append (defaults to import.policy)")
	importCmd.Flags().StringSliceVar(&importOnly, "only", nil, "Import only these kinds (servant, npc, craft_essence, enhancement_card, command_code)")
	importCmd.Flags().StringToStringVar(&importKindPolicies, "kind-policy", nil, "Per-kind policy, e.g. servant=append")
	importCmd.Flags().IntVar(&importMinCollect, "min-collection", 0, "Lowest servant collection number to import")
	importCmd.Flags().IntVar(&importMaxCollect, "max-collection", 0, "Highest servant collection number to import")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Count decisions without writing")
	importCmd.Flags().StringVar(&importEntities, "from-entities", "", "Object key of a pre-assembled entity set")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if err := a.cfg.Import.Validate(); err != nil {
		return err
	}

	sel := masterdata.KindSelection{
		Only:     importOnly,
		Policy:   a.cfg.Import.Policy,
		Policies: importKindPolicies,
	}
	if importPolicy != "" {
		sel.Policy = importPolicy
	}
	if cmd.Flags().Changed("min-collection") {
		sel.MinCollectionNo = &importMinCollect
	}
	if cmd.Flags().Changed("max-collection") {
		sel.MaxCollectionNo = &importMaxCollect
	}
	kinds, err := sel.KindOptions()
	if err != nil {
		return err
	}

	st := store.New(a.db, a.cfg.Import.OwnerID, a.cfg.Import.RetryMaxElapsed())
	svc := masterdata.NewService(a.cfg.Import, a.client, a.cfg.Storage.Bucket, a.cfg.Server.DumpPrefix(), st, a.logger)

	report, err := svc.Import(ctx, masterdata.ImportRequest{
		Kinds:        kinds,
		DryRun:       importDryRun,
		EntityObject: importEntities,
	})
	if err != nil {
		a.logger.Error("Import failed", zap.Error(err))
		return err
	}

	printReport(report)
	return nil
}

func printReport(report *masterdata.Report) {
	fmt.Println("\n--- Import Report ---")
	fmt.Printf("Run:            %s\n", report.RunID)
	fmt.Printf("Source:         %s\n", report.Source)
	fmt.Printf("Dry run:        %v\n", report.DryRun)
	fmt.Printf("Assembled:      %d\n", report.Assembled)
	fmt.Printf("Skipped:        %d\n", report.Skipped)
	fmt.Printf("Failures:       %d\n", len(report.AssemblyFailures))
	fmt.Println("---------------------")

	kinds := slices.Sorted(maps.Keys(report.Kinds))

	fmt.Printf("%-18s %8s %8s %8s %8s\n", "KIND", "CREATED", "UPDATED", "SKIPPED", "ERRORS")
	for _, k := range kinds {
		kr := report.Kinds[k]
		fmt.Printf("%-18s %8d %8d %8d %8d\n", k, kr.Created, kr.Updated, kr.Skipped, kr.Errors)
	}

	for _, f := range report.AssemblyFailures {
		fmt.Printf("- assembly %d (type %d): %s\n", f.ID, f.Type, f.Message)
	}
	for _, k := range kinds {
		for _, entry := range report.Kinds[k].Log {
			fmt.Printf("- %s %d: %s\n", k, entry.ID, entry.Message)
		}
	}
	fmt.Println("---------------------")
}
