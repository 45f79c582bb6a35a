package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// User-facing preference keys. Internal keys (session token, crypto salt)
// are not reachable through this command.
var settingKeys = map[string]string{
	"theme":    "preferred color theme (light, dark)",
	"reminder": "daily reminder time, HH:MM, or 'off'",
}

func init() {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Show one preference, or all of them",
		Args:  cobra.MaximumNArgs(1),
		Run:   runSettingsGet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Args:  cobra.ExactArgs(2),
		Run:   runSettingsSet,
	})
	RootCmd.AddCommand(cmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	keys := args
	if len(keys) == 0 {
		for k := range settingKeys {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	for _, key := range keys {
		if _, known := settingKeys[key]; !known {
			exitErr("settings", fmt.Errorf("unknown key %q", key))
		}
		var value string
		ok, err := app.store.GetSetting(ctx, "pref."+key, &value)
		if err != nil {
			exitErr("settings", err)
		}
		if !ok {
			value = "(unset)"
		}
		fmt.Printf("%s: %s\n", key, value)
	}
}

func runSettingsSet(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	key, value := args[0], args[1]
	if _, known := settingKeys[key]; !known {
		exitErr("settings", fmt.Errorf("unknown key %q (have: theme, reminder)", key))
	}
	if err := app.store.SetSetting(ctx, "pref."+key, value); err != nil {
		exitErr("settings", err)
	}
	fmt.Printf("%s set to %s\n", key, value)
}
