package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soworklabs/warchest/internal/syncdata"
	"github.com/soworklabs/warchest/internal/types"
)

// reportAuthExpiry prints the degraded-to-cache notice when a command
// completed against the local store after the session was rejected.
func reportAuthExpiry(err error) error {
	if errors.Is(err, syncdata.ErrAuthExpired) {
		fmt.Fprintln(os.Stderr, "Session expired: showing local data. Run `warchest login` to re-sync.")
		return nil
	}
	return err
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var dnaCmd = &cobra.Command{
	Use:   "dna",
	Short: "Candidate profile (brand DNA)",
}

var dnaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		dna, err := app.data.GetDNA(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		return printJSON(dna)
	},
}

var dnaFile string

var dnaSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Replace the profile from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(dnaFile)
		if err != nil {
			return err
		}
		var dna types.BrandDNA
		if err := json.Unmarshal(raw, &dna); err != nil {
			return fmt.Errorf("parse %s: %w", dnaFile, err)
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		saved, err := app.data.SaveDNA(cmd.Context(), &dna)
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		fmt.Printf("Profile saved (%s).\n", saved.LastUpdated)
		return nil
	},
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Asset vault",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vaulted assets, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		assets, err := app.data.GetAssets(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		for _, a := range assets {
			fmt.Printf("%s  [%s]  %s  (%s)\n", a.ID, a.Category, a.Title, a.Date)
		}
		return nil
	},
}

var (
	assetTitle    string
	assetContent  string
	assetCategory string
)

var assetsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Vault a new asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		asset, err := app.data.AddAsset(cmd.Context(), assetTitle, assetContent, types.AssetCategory(assetCategory))
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		fmt.Printf("Vaulted %s as %s.\n", asset.Title, asset.ID)
		return nil
	},
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := reportAuthExpiry(app.data.DeleteAsset(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var pollingCmd = &cobra.Command{
	Use:   "polling",
	Short: "Polling snapshot",
}

var pollingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached polling snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		snap, err := app.data.GetPolling(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		if snap == nil {
			fmt.Println("No polling snapshot cached. Run `warchest polling refresh`.")
			return nil
		}
		return printJSON(snap)
	},
}

var pollingRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the polling snapshot from public sources",
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

		data, err := gen.TieredPollingData(cmd.Context(), dna)
		if err != nil {
			return err
		}
		snap, err := app.data.SavePolling(cmd.Context(), &types.PollingSnapshot{Data: data})
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		fmt.Printf("Polling snapshot refreshed (%s).\n", snap.LastUpdated)
		return nil
	},
}

var pollingAnalyzeCmd = &cobra.Command{
	Use:   "analyze [source]",
	Short: "Drill into one named poll source",
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

		source := args[0]
		if err := app.data.SetTask(source, types.TaskProcessing, nil); err != nil {
			return err
		}
		analysis, err := gen.AnalyzePollSource(cmd.Context(), source, dna)
		if err != nil {
			// Record the outcome so the task list never sticks at processing.
			_ = app.data.SetTask(source, types.TaskCompleted, nil)
			return err
		}
		result, _ := json.Marshal(analysis)
		if err := app.data.SetTask(source, types.TaskCompleted, result); err != nil {
			return err
		}
		return printJSON(analysis)
	},
}

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Social platform connections",
}

var socialStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show platform connection states",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		accounts, err := app.data.GetSocialAccounts(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		for _, p := range types.Platforms {
			state := "disconnected"
			if accounts.Connected[p] {
				state = "connected"
			}
			fmt.Printf("%-10s %s\n", p, state)
		}
		if accounts.LastSync != "" {
			fmt.Printf("last sync: %s\n", accounts.LastSync)
		}
		return nil
	},
}

var socialToggleCmd = &cobra.Command{
	Use:   "toggle [platform]",
	Short: "Flip one platform's connection state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		accounts, err := app.data.ToggleSocial(cmd.Context(), args[0])
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		fmt.Printf("%s connected=%v\n", args[0], accounts.Connected[args[0]])
		return nil
	},
}

var (
	googleEmail string
	googleName  string
)

var socialGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Connect the google account",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		accounts, err := app.data.SaveGoogleAuth(cmd.Context(), &types.GoogleInfo{
			Email: googleEmail,
			Name:  googleName,
		})
		if err := reportAuthExpiry(err); err != nil {
			return err
		}
		fmt.Printf("google connected as %s (last sync %s)\n", googleEmail, accounts.LastSync)
		return nil
	},
}

func init() {
	dnaSaveCmd.Flags().StringVar(&dnaFile, "file", "", "JSON file holding the profile")
	_ = dnaSaveCmd.MarkFlagRequired("file")
	dnaCmd.AddCommand(dnaShowCmd, dnaSaveCmd)

	assetsAddCmd.Flags().StringVar(&assetTitle, "title", "", "asset title")
	assetsAddCmd.Flags().StringVar(&assetContent, "content", "", "asset body")
	assetsAddCmd.Flags().StringVar(&assetCategory, "category", "strategy", "inspiration|speech|strategy")
	_ = assetsAddCmd.MarkFlagRequired("title")
	_ = assetsAddCmd.MarkFlagRequired("content")
	assetsCmd.AddCommand(assetsListCmd, assetsAddCmd, assetsDeleteCmd)

	pollingCmd.AddCommand(pollingShowCmd, pollingRefreshCmd, pollingAnalyzeCmd)
	socialGoogleCmd.Flags().StringVar(&googleEmail, "email", "", "google account email")
	socialGoogleCmd.Flags().StringVar(&googleName, "name", "", "google display name")
	_ = socialGoogleCmd.MarkFlagRequired("email")
	socialCmd.AddCommand(socialStatusCmd, socialToggleCmd, socialGoogleCmd)
}
