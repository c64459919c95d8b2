package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/profile"
	"github.com/vovakirdan/catch-arcade/internal/validate"
)

var (
	flagUsername   string
	flagEmail      string
	flagAvatar     string
	flagRows       int
	flagCols       int
	flagTime       int
	flagDifficulty string
	flagSound      bool
	flagYes        bool
)

var profilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Manage player profiles",
	Long: `Create, inspect and select player profiles on the score service.

Profiles are referenced by id or by username. The active profile is
remembered on this machine; its results go to the leaderboard.

Examples:
  catch profiles list
  catch profiles create --username juan --email juan@example.com
  catch profiles use juan
  catch profiles prefs --rows 8 --cols 8 --difficulty hard
  catch profiles delete juan`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	Run:   runProfilesList,
}

var profilesShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show a profile (the active one by default)",
	Args:  cobra.MaximumNArgs(1),
	Run:   runProfilesShow,
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a profile and make it active",
	Args:  cobra.NoArgs,
	Run:   runProfilesCreate,
}

var profilesUpdateCmd = &cobra.Command{
	Use:   "update <profile>",
	Short: "Change username, email or avatar",
	Args:  cobra.ExactArgs(1),
	Run:   runProfilesUpdate,
}

var profilesPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Save game preferences of the active profile",
	Args:  cobra.NoArgs,
	Run:   runProfilesPrefs,
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <profile>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	Run:   runProfilesDelete,
}

var profilesUseCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Make a profile active",
	Args:  cobra.ExactArgs(1),
	Run:   runProfilesUse,
}

var profilesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Play without a profile",
	Args:  cobra.NoArgs,
	Run:   runProfilesClear,
}

func init() {
	for _, c := range []*cobra.Command{profilesCreateCmd, profilesUpdateCmd} {
		c.Flags().StringVar(&flagUsername, "username", "", "Username (3+ characters)")
		c.Flags().StringVar(&flagEmail, "email", "", "Email address")
		c.Flags().StringVar(&flagAvatar, "avatar", "", "Avatar (emoji or short text)")
	}
	for _, c := range []*cobra.Command{profilesCreateCmd, profilesPrefsCmd} {
		c.Flags().IntVar(&flagRows, "rows", 0, "Preferred rows")
		c.Flags().IntVar(&flagCols, "cols", 0, "Preferred columns")
		c.Flags().IntVar(&flagTime, "time", 0, "Preferred game length in seconds")
		c.Flags().StringVar(&flagDifficulty, "difficulty", "", "Preferred level: easy, medium, hard")
	}
	profilesPrefsCmd.Flags().BoolVar(&flagSound, "sound", false, "Sound preference")
	profilesDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	profilesCmd.AddCommand(
		profilesListCmd,
		profilesShowCmd,
		profilesCreateCmd,
		profilesUpdateCmd,
		profilesPrefsCmd,
		profilesDeleteCmd,
		profilesUseCmd,
		profilesClearCmd,
	)
}

// withApp opens the app and a request context, then runs fn.
func withApp(fn func(ctx context.Context, a *app) error) {
	a, err := openApp(os.Stderr, "catch")
	if err != nil {
		fail("%v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*a.cfg.Remote.Timeout())
	err = fn(ctx, a)
	cancel()
	a.Close()
	if err != nil {
		if errors.Is(err, profile.ErrInvalidUsername) {
			fail("username must have at least %d characters", validate.MinUsernameLen)
		}
		fail("%v", err)
	}
}

// resolve finds a profile by id or username.
func resolve(ctx context.Context, a *app, ref string) (api.Profile, error) {
	list, err := a.profiles.List(ctx)
	if err != nil {
		return api.Profile{}, err
	}
	p, ok := profile.Resolve(list, ref)
	if !ok {
		return api.Profile{}, fmt.Errorf("no profile %q", ref)
	}
	return p, nil
}

func runProfilesList(_ *cobra.Command, _ []string) {
	withApp(func(ctx context.Context, a *app) error {
		list, err := a.profiles.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No profiles yet.")
			fmt.Println()
			fmt.Println("Run 'catch profiles create --username <name>' to create one.")
			return nil
		}

		active := a.profiles.ActiveID()
		fmt.Printf("  %-2s %-10s  %-20s  %-6s  %s\n", "", "ID", "Username", "Games", "Total")
		for _, p := range list {
			marker := ""
			if p.ID == active {
				marker = "*"
			}
			fmt.Printf("  %-2s %-10s  %-20s  %-6d  %d\n", marker, p.ID, p.Username, p.Stats.GamesPlayed, p.Stats.TotalScore)
		}
		return nil
	})
}

func runProfilesShow(_ *cobra.Command, args []string) {
	withApp(func(ctx context.Context, a *app) error {
		var p *api.Profile
		var err error
		if len(args) == 0 {
			if a.profiles.ActiveID() == "" {
				return profile.ErrNoActiveProfile
			}
			p, err = a.profiles.Refresh(ctx)
		} else {
			var found api.Profile
			found, err = resolve(ctx, a, args[0])
			p = &found
		}
		if err != nil {
			return err
		}
		printProfile(*p, a.profiles.IsCurrent(p.ID))

		history, err := a.client.History(ctx, p.ID)
		if err != nil {
			a.logger.Warn("history unavailable", "id", p.ID, "error", err)
			return nil
		}
		if len(history) > 0 {
			fmt.Println()
			fmt.Println("History")
			for _, h := range history {
				when := h.Timestamp
				if t, ok := h.Time(); ok {
					when = t.Local().Format("2006-01-02 15:04")
				}
				fmt.Printf("  %-16s  %5d  %-6s  %s\n", when, h.Score, h.Result, h.Difficulty)
			}
		}
		return nil
	})
}

func printProfile(p api.Profile, active bool) {
	title := p.Username
	if active {
		title += " (active)"
	}
	avatar := p.Avatar
	if avatar == "" {
		avatar = profile.DefaultAvatar
	}
	fmt.Printf("%s %s\n\n", avatar, title)
	fmt.Printf("  ID          %s\n", p.ID)
	if p.Email != "" {
		fmt.Printf("  Email       %s\n", p.Email)
	}
	prefs := p.Preferences
	fmt.Printf("  Preferences %dx%d, %ds, %s\n", prefs.Rows, prefs.Cols, prefs.Time, prefs.Difficulty)
	s := p.Stats
	fmt.Printf("  Games       %d (wins %d, losses %d)\n", s.GamesPlayed, s.Wins, s.Losses)
	fmt.Printf("  Total score %d\n", s.TotalScore)
	fmt.Printf("  Best streak %d\n", s.BestStreak)
}

func runProfilesCreate(cmd *cobra.Command, _ []string) {
	withApp(func(ctx context.Context, a *app) error {
		prefs, err := preferencesFromFlags(cmd, a.cfg, api.Preferences{
			Rows:       a.cfg.Grid.DefaultRows,
			Cols:       a.cfg.Grid.DefaultCols,
			Time:       a.cfg.Time.DefaultSeconds,
			Difficulty: string(a.cfg.Difficulty.Default),
		})
		if err != nil {
			return err
		}
		p, err := a.profiles.Create(ctx, api.ProfileInput{
			Username:    flagUsername,
			Email:       flagEmail,
			Avatar:      flagAvatar,
			Preferences: prefs,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created profile %s (%s); it is now active.\n", p.Username, p.ID)
		return nil
	})
}

func runProfilesUpdate(cmd *cobra.Command, args []string) {
	withApp(func(ctx context.Context, a *app) error {
		target, err := resolve(ctx, a, args[0])
		if err != nil {
			return err
		}

		var patch api.ProfilePatch
		if cmd.Flags().Changed("username") {
			patch.Username = &flagUsername
		}
		if cmd.Flags().Changed("email") {
			patch.Email = &flagEmail
		}
		if cmd.Flags().Changed("avatar") {
			patch.Avatar = &flagAvatar
		}
		if patch == (api.ProfilePatch{}) {
			return errors.New("nothing to update: pass --username, --email or --avatar")
		}

		p, err := a.profiles.Update(ctx, target.ID, patch)
		if err != nil {
			return err
		}
		fmt.Printf("Updated profile %s (%s).\n", p.Username, p.ID)
		return nil
	})
}

func runProfilesPrefs(cmd *cobra.Command, _ []string) {
	withApp(func(ctx context.Context, a *app) error {
		if a.profiles.ActiveID() == "" {
			return profile.ErrNoActiveProfile
		}
		current, err := a.profiles.Refresh(ctx)
		if err != nil {
			return err
		}
		prefs, err := preferencesFromFlags(cmd, a.cfg, current.Preferences)
		if err != nil {
			return err
		}
		p, err := a.profiles.SavePreferences(ctx, prefs)
		if err != nil {
			return err
		}
		fmt.Printf("Saved preferences of %s: %dx%d, %ds, %s.\n", p.Username,
			p.Preferences.Rows, p.Preferences.Cols, p.Preferences.Time, p.Preferences.Difficulty)
		return nil
	})
}

// preferencesFromFlags overlays the preference flags that were given on base.
func preferencesFromFlags(cmd *cobra.Command, cfg config.Config, base api.Preferences) (api.Preferences, error) {
	prefs := base
	check := func(name string, v, lo, hi int) error {
		if res := validate.Validate(strconv.Itoa(v), lo, hi); !res.OK {
			return fmt.Errorf("--%s: %s", name, res.Message())
		}
		return nil
	}

	flags := cmd.Flags()
	if flags.Changed("rows") {
		if err := check("rows", flagRows, cfg.Grid.MinSize, cfg.Grid.MaxSize); err != nil {
			return prefs, err
		}
		prefs.Rows = flagRows
	}
	if flags.Changed("cols") {
		if err := check("cols", flagCols, cfg.Grid.MinSize, cfg.Grid.MaxSize); err != nil {
			return prefs, err
		}
		prefs.Cols = flagCols
	}
	if flags.Changed("time") {
		if err := check("time", flagTime, cfg.Time.MinSeconds, cfg.Time.MaxSeconds); err != nil {
			return prefs, err
		}
		prefs.Time = flagTime
	}
	if flags.Changed("difficulty") {
		d, err := config.ParseDifficulty(flagDifficulty)
		if err != nil {
			return prefs, err
		}
		prefs.Difficulty = string(d)
	}
	if flags.Lookup("sound") != nil && flags.Changed("sound") {
		sound := flagSound
		prefs.Sound = &sound
	}
	return prefs, nil
}

func runProfilesDelete(_ *cobra.Command, args []string) {
	withApp(func(ctx context.Context, a *app) error {
		target, err := resolve(ctx, a, args[0])
		if err != nil {
			return err
		}
		deleted, err := a.profiles.Delete(ctx, target.ID, confirmPrompt)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("Cancelled.")
			return nil
		}
		fmt.Printf("Deleted profile %s.\n", target.Username)
		return nil
	})
}

// confirmPrompt asks on stdin unless --yes was given.
func confirmPrompt(prompt string) bool {
	if flagYes {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func runProfilesUse(_ *cobra.Command, args []string) {
	withApp(func(ctx context.Context, a *app) error {
		target, err := resolve(ctx, a, args[0])
		if err != nil {
			return err
		}
		p, err := a.profiles.Select(ctx, target.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Now playing as %s.\n", p.Username)
		return nil
	})
}

func runProfilesClear(_ *cobra.Command, _ []string) {
	withApp(func(_ context.Context, a *app) error {
		if err := a.profiles.Clear(); err != nil {
			return err
		}
		fmt.Println("No active profile. Results stay on this machine.")
		return nil
	})
}
