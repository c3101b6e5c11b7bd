package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soworklabs/warchest/internal/content"
	"github.com/soworklabs/warchest/internal/types"
)

var intelCmd = &cobra.Command{
	Use:   "intel",
	Short: "Competitor intelligence",
}

var intelShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached intelligence feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		snap := app.data.GetIntel()
		if snap == nil || len(snap.Items) == 0 {
			fmt.Println("No intelligence cached. Run `warchest intel scan`.")
			return nil
		}
		return printJSON(snap)
	},
}

var intelScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan public sources for competitor activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		gen, err := app.generator(cmd.Context())
		if err != nil {
			return err
		}
		dna, err := app.data.GetDNA(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}

		if err := app.data.SetTask("intel-scan", types.TaskProcessing, nil); err != nil {
			return err
		}
		items, err := gen.CompetitorIntelligence(cmd.Context(), dna)
		if err != nil {
			return err
		}
		if _, err := app.data.SaveIntel(items); err != nil {
			return err
		}
		result, _ := json.Marshal(map[string]int{"items": len(items)})
		if err := app.data.SetTask("intel-scan", types.TaskCompleted, result); err != nil {
			return err
		}
		fmt.Printf("Intelligence updated: %d items.\n", len(items))
		return nil
	},
}

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Daily party-alignment briefing",
}

var briefingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached briefing",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		briefing := app.data.GetBriefing()
		if briefing == nil || len(briefing.Issues) == 0 {
			fmt.Println("No briefing cached. Run `warchest briefing refresh`.")
			return nil
		}
		return printJSON(briefing)
	},
}

var briefingRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild today's alignment briefing",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		gen, err := app.generator(cmd.Context())
		if err != nil {
			return err
		}
		dna, err := app.data.GetDNA(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}

		if err := app.data.SetTask("briefing", types.TaskProcessing, nil); err != nil {
			return err
		}
		briefing, err := gen.PartyAlignmentBriefing(cmd.Context(), dna)
		if err != nil {
			return err
		}
		if _, err := app.data.SaveBriefing(briefing); err != nil {
			return err
		}
		if err := app.data.SetTask("briefing", types.TaskCompleted, nil); err != nil {
			return err
		}
		fmt.Printf("Briefing rebuilt: %d issues.\n", len(briefing.Issues))
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show background analysis task states",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		tasks := app.data.GetTasks()
		if len(tasks) == 0 {
			fmt.Println("No tasks recorded.")
			return nil
		}
		return printJSON(tasks)
	},
}

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Strategic analysis of the candidate profile",
}

var strategyTriangleCmd = &cobra.Command{
	Use:   "triangle",
	Short: "Derive the strategic positioning triangle",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		gen, err := app.generator(cmd.Context())
		if err != nil {
			return err
		}
		dna, err := app.data.GetDNA(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}

		triangle, err := gen.DiscoverStrategicTriangle(cmd.Context(), dna)
		if err != nil {
			return err
		}
		return printJSON(triangle)
	},
}

var strategyAchievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Scout the candidate's public achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		gen, err := app.generator(cmd.Context())
		if err != nil {
			return err
		}
		dna, err := app.data.GetDNA(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}

		achievements, err := gen.ScoutAchievements(cmd.Context(), dna)
		if err != nil {
			return err
		}
		return printJSON(achievements)
	},
}

var strategyFusionCmd = &cobra.Command{
	Use:   "fusion [policy]",
	Short: "Fuse a party policy with the local platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		gen, err := app.generator(cmd.Context())
		if err != nil {
			return err
		}
		dna, err := app.data.GetDNA(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}

		fusion, err := gen.AnalyzePolicyFusion(cmd.Context(), args[0], dna)
		if err != nil {
			return err
		}
		return printJSON(fusion)
	},
}

var strategyPositionApply bool

var strategyPositionCmd = &cobra.Command{
	Use:   "position",
	Short: "Compute positioning directions from the strategic triangle",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		gen, err := app.generator(cmd.Context())
		if err != nil {
			return err
		}
		dna, err := app.data.GetDNA(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}

		input := content.NewPositioningInput(dna)
		result, err := gen.ComputeStrategicPositioning(cmd.Context(), input)
		if err != nil {
			return err
		}
		if strategyPositionApply {
			result.Directions[0].Apply(dna, input)
			_, err := app.data.SaveDNA(cmd.Context(), dna)
			if err := reportAuthExpiry(err); err != nil {
				return err
			}
			fmt.Printf("Profile updated with direction: %s\n", result.Directions[0].Slogan)
		}
		return printJSON(result)
	},
}

var strategyAuditCmd = &cobra.Command{
	Use:   "audit [text]",
	Short: "Audit copy against election advertising rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		gen, err := app.generator(cmd.Context())
		if err != nil {
			return err
		}

		report, err := gen.AuditCompliance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	intelCmd.AddCommand(intelShowCmd, intelScanCmd)
	briefingCmd.AddCommand(briefingShowCmd, briefingRefreshCmd)
	strategyPositionCmd.Flags().BoolVar(&strategyPositionApply, "apply", false,
		"apply the first direction to the candidate profile")
	strategyCmd.AddCommand(strategyTriangleCmd, strategyAchievementsCmd,
		strategyPositionCmd, strategyFusionCmd, strategyAuditCmd)
}
