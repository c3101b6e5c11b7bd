package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Generate campaign content",
}

var contentSocialCmd = &cobra.Command{
	Use:   "social [topic]",
	Short: "Generate four-platform social copy",
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

		copySet, err := gen.GenerateSocialContent(cmd.Context(), args[0], dna)
		if err != nil {
			return err
		}
		return printJSON(copySet)
	},
}

var (
	speechLocation string
	speechDesc     string
)

var contentSpeechCmd = &cobra.Command{
	Use:   "speech [title]",
	Short: "Draft a speech",
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

		text, err := gen.GenerateSpeech(cmd.Context(), dna, args[0], speechLocation, speechDesc)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var contentCounterCmd = &cobra.Command{
	Use:   "counter [attack]",
	Short: "Draft a counter-strategy for an opponent attack",
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

		text, err := gen.GenerateCounterStrategy(cmd.Context(), args[0], dna)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var contentImagePromptCmd = &cobra.Command{
	Use:   "image-prompt [topic]",
	Short: "Translate a topic into an English campaign image prompt",
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

		text, err := gen.TranslateToCampaignPrompt(cmd.Context(), args[0], dna)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var historyType string

var contentHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List locally archived generation results",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if app.remote.Authenticated() {
			raw, err := app.remote.ContentHistory(cmd.Context(), historyType)
			if err := reportAuthExpiry(err); err != nil {
				return err
			}
			if raw != nil {
				return printJSON(raw)
			}
		}

		entries, err := app.history.List(historyType, 50)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  [%s]  %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.ContentType, e.Topic)
		}
		return nil
	},
}

func init() {
	contentSpeechCmd.Flags().StringVar(&speechLocation, "location", "", "venue")
	contentSpeechCmd.Flags().StringVar(&speechDesc, "description", "", "occasion notes")
	contentHistoryCmd.Flags().StringVar(&historyType, "type", "", "filter by content type")
	contentCmd.AddCommand(contentSocialCmd, contentSpeechCmd, contentCounterCmd,
		contentImagePromptCmd, contentHistoryCmd)
}
