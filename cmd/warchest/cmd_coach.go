package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/soworklabs/warchest/internal/coach"
	"github.com/soworklabs/warchest/internal/types"
)

var (
	coachPCMOut string
	coachVault  bool

	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	coachStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	refinedStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("11"))
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Run a realtime speech-coaching session",
	Long: `Streams microphone audio from stdin (raw 16-bit mono PCM at 16 kHz,
e.g. ` + "`arecord -f S16_LE -r 16000 -c 1 | warchest coach`" + `) to the
coaching model and prints the live transcript. Coach audio (24 kHz PCM) can
be written to a file or pipe with --pcm-out. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if cfg.Gemini.APIKey == "" {
			return fmt.Errorf("no Gemini API key configured (set gemini.api_key or GEMINI_API_KEY)")
		}
		client, err := genai.NewClient(cmd.Context(), &genai.ClientConfig{APIKey: cfg.Gemini.APIKey})
		if err != nil {
			return err
		}

		dna, err := app.data.GetDNA(cmd.Context())
		if err := reportAuthExpiry(err); err != nil {
			return err
		}

		capture, err := coach.NewReaderSource(os.Stdin)
		if err != nil {
			return err
		}

		var player *coach.WriterPlayer
		if coachPCMOut != "" {
			f, err := os.Create(coachPCMOut)
			if err != nil {
				return err
			}
			defer f.Close()
			player = coach.NewWriterPlayer(f)
		} else {
			player = coach.NewWriterPlayer(nil)
		}

		session, err := coach.NewSession(coach.Config{
			Capture: capture,
			Player:  player,
			Connect: func(ctx context.Context) (coach.Transport, error) {
				return coach.ConnectLive(ctx, client, cfg.Gemini.LiveModel, dna)
			},
			OnTurn: func(user, coachTurn types.ConversationTurn) {
				fmt.Println(userStyle.Render("你： ") + user.Text)
				fmt.Println(coachStyle.Render("教練： ") + coachTurn.Text)
				if coachTurn.Refined != "" {
					fmt.Println(refinedStyle.Render("潤稿： " + coachTurn.Refined))
				}
				fmt.Println()
			},
			Logger: logger,
		})
		if err != nil {
			return err
		}

		if err := session.Start(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Coaching session active. Speak; Ctrl-C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		signal.Stop(sigCh)

		session.Stop()
		fmt.Printf("Session ended after %d turns.\n", len(session.History())/2)

		if coachVault {
			vaultRefined(cmd, app, session.History())
		}
		return nil
	},
}

// vaultRefined stores each refined script from the session as a speech
// asset.
func vaultRefined(cmd *cobra.Command, a *app, history []types.ConversationTurn) {
	for _, turn := range history {
		if turn.Role != types.RoleCoach || turn.Refined == "" {
			continue
		}
		title := turn.Refined
		if len([]rune(title)) > 20 {
			title = string([]rune(title)[:20])
		}
		if _, err := a.data.AddAsset(cmd.Context(), title, turn.Refined, types.AssetSpeech); err != nil &&
			reportAuthExpiry(err) != nil {
			fmt.Fprintln(os.Stderr, "vault failed:", err)
		}
	}
}

func init() {
	coachCmd.Flags().StringVar(&coachPCMOut, "pcm-out", "", "write coach audio (24 kHz s16le PCM) to this path")
	coachCmd.Flags().BoolVar(&coachVault, "vault", false, "save refined scripts to the asset vault on exit")
}
