package main

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/udplab/udd/pkg/config"
	"github.com/udplab/udd/pkg/payload"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configAddTargetCmd)
	configCmd.AddCommand(configRemoveTargetCmd)
	configCmd.AddCommand(configUseTargetCmd)
	configCmd.AddCommand(configSelectTargetCmd)
	configCmd.AddCommand(configCurrentTargetCmd)
	configCmd.AddCommand(configLsCmd)
	configCmd.AddCommand(configImportCmd)

	configAddTargetCmd.Flags().StringVar(&addTargetBind, "bind", "", "Local address to bind for this target")
	configAddTargetCmd.Flags().Var(&addTargetMode, "mode", "Default input mode for this target")
}

var (
	addTargetBind string
	addTargetMode payload.Mode
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Handle udd configuration",
}

var configAddTargetCmd = &cobra.Command{
	Use:     "add-target NAME HOST:PORT",
	Short:   "Add a target profile",
	Example: "udd config add-target broker 10.0.0.5:1883 --mode mqtt",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		if cfg.HasTarget(name) {
			errorExit("Could not add target: target with name '%v' exists already.", name)
		}

		cfg.Targets = append(cfg.Targets, &config.Target{
			Name: name,
			Addr: args[1],
			Bind: addTargetBind,
			Mode: string(addTargetMode),
		})
		if err := cfg.Write(); err != nil {
			errorExit("Unable to write config: %v", err)
		}
		fmt.Fprintf(outWriter, "Added target \"%v\".\n", name)
	},
}

var configRemoveTargetCmd = &cobra.Command{
	Use:               "remove-target NAME",
	Short:             "Remove a target profile",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: validTargetArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.RemoveTarget(args[0]); err != nil {
			errorExit("Unable to remove target: %v", err)
		}
		fmt.Fprintf(outWriter, "Removed target \"%v\".\n", args[0])
	},
}

var configUseTargetCmd = &cobra.Command{
	Use:               "use-target NAME",
	Short:             "Set the current target",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: validTargetArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.SetCurrentTarget(args[0]); err != nil {
			errorExit("Target with name %v not found", args[0])
		}
		fmt.Fprintf(outWriter, "Switched to target \"%v\".\n", args[0])
	},
}

var configSelectTargetCmd = &cobra.Command{
	Use:   "select-target",
	Short: "Interactively select a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		var names []string
		pos := 0
		for i, target := range cfg.Targets {
			names = append(names, target.Name)
			if target.Name == cfg.CurrentTarget {
				pos = i
			}
		}

		searcher := func(input string, index int) bool {
			name := strings.ReplaceAll(strings.ToLower(names[index]), " ", "")
			input = strings.ReplaceAll(strings.ToLower(input), " ", "")
			return strings.Contains(name, input)
		}

		p := promptui.Select{
			Label:     "Select target",
			Items:     names,
			Searcher:  searcher,
			Size:      10,
			CursorPos: pos,
		}

		_, selected, err := p.Run()
		if err != nil {
			// User cancelled (e.g. Ctrl-C). Not an error.
			return nil
		}

		if err := cfg.SetCurrentTarget(selected); err != nil {
			return fmt.Errorf("target with name %v not found", selected)
		}
		fmt.Fprintf(outWriter, "Switched to target \"%v\".\n", selected)
		return nil
	},
}

var configCurrentTargetCmd = &cobra.Command{
	Use:   "current-target",
	Short: "Display the current target",
	Run: func(cmd *cobra.Command, args []string) {
		if active := cfg.ActiveTarget(); active != nil {
			fmt.Fprintf(outWriter, "%v (%v)\n", active.Name, active.Addr)
		}
	},
}

var configLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Display all target profiles",
	Run: func(cmd *cobra.Command, args []string) {
		for _, target := range cfg.Targets {
			fmt.Fprintf(outWriter, "%v\t%v\n", target.Name, target.Addr)
		}
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a legacy properties profile into the config",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target, err := config.ImportProperties(args[0])
		if err != nil {
			errorExit("Unable to import profile: %v", err)
		}
		if cfg.HasTarget(target.Name) {
			errorExit("Could not add target: target with name '%v' exists already.", target.Name)
		}
		cfg.Targets = append(cfg.Targets, target)
		if err := cfg.Write(); err != nil {
			errorExit("Unable to write config: %v", err)
		}
		fmt.Fprintf(outWriter, "Imported target \"%v\" (%v).\n", target.Name, target.Addr)
	},
}

func validTargetArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, target := range cfg.Targets {
		names = append(names, target.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
