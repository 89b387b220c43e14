package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/Dicklesworthstone/picam/pkg/profile"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved camera profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List profiles, optionally fuzzy-filtered",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		names, err := store.Find(query)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No profiles found.")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		p, err := store.Load(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var saveValues = map[model.Parameter]*int{}

var saveOutput model.OutputSettings

var profileSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a profile from the default profile plus flag overrides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		base := model.NewProfile(model.DefaultParameters())
		if store.Exists(model.DefaultProfileName) {
			if base, err = store.LoadDefault(); err != nil {
				return err
			}
		}
		// Output settings are per profile, not inherited from default.
		base.OutputSettings = model.OutputSettings{}

		for _, p := range model.Parameters {
			if cmd.Flags().Changed(p.Key()) {
				base.Set(p, *saveValues[p])
			}
		}
		if err := base.CameraParameters.Validate(); err != nil {
			return err
		}
		if saveOutput.Format != "" {
			f, ok := model.NormalizeFormat(saveOutput.Format)
			if !ok {
				return fmt.Errorf("unsupported image format %q", saveOutput.Format)
			}
			saveOutput.Format = f
		}
		base.OutputSettings = saveOutput

		if err := store.Save(args[0], base); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", store.Path(mustName(args[0])))
		return nil
	},
}

var deleteYes bool

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile (asks first unless --yes)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		var confirm profile.Confirmer = profile.ConfirmFunc(askDelete)
		if deleteYes {
			confirm = profile.Confirmed(true)
		}
		err = store.Delete(args[0], confirm)
		if errors.Is(err, profile.ErrDeclined) {
			fmt.Println("Kept", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

func askDelete(name string) (bool, error) {
	yes := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete profile %q?", name)).
		Affirmative("Delete").
		Negative("Keep").
		Value(&yes).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return yes, err
}

// mustName is only called after Save has validated the name
func mustName(raw string) model.ProfileName {
	n, _ := model.ParseProfileName(raw)
	return n
}

func init() {
	f := profileSaveCmd.Flags()
	for _, p := range model.Parameters {
		r := p.Range()
		v := new(int)
		saveValues[p] = v
		f.IntVar(v, p.Key(), r.Default, fmt.Sprintf("%s (%d..%d)", p.Label(), r.Min, r.Max))
	}
	f.StringVar(&saveOutput.Directory, "dir", "", "output directory for captures with this profile")
	f.StringVar(&saveOutput.Filename, "name", "", "filename prefix for captures with this profile")
	f.StringVar(&saveOutput.Format, "format", "", "image format for captures with this profile")

	profileDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "delete without asking")

	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileSaveCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}
