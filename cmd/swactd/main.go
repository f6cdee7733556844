package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/davidroman0O/swactd/config"
	"github.com/davidroman0O/swactd/keyring"
	"github.com/davidroman0O/swactd/operations"
	"github.com/davidroman0O/swactd/platform"
	"github.com/davidroman0O/swactd/swact"
)

// newRootCmd builds the command tree. Split from main so tests can
// exercise invocation handling without spawning the binary.
func newRootCmd() *cobra.Command {
	configFlag := ""
	setFlags := []string{}

	// Create the root command
	rootCmd := &cobra.Command{
		Use:   "swactd",
		Short: "Worker-service toggler for controller swact",
		Long: "Toggles the compute worker services on the secondary controller " +
			"during a swact: stages the platform hiera data, flips the " +
			"disable flag and applies the worker manifest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("missing action: want start or stop")
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to a YAML or JSON configuration file")
	rootCmd.PersistentFlags().StringArrayVar(&setFlags, "set", nil, "Override a config field, e.g. --set Lock.MaxPolls=10")

	// runToggle validates the action, loads the config and drives one
	// engine run. An unknown action is a bad invocation and surfaces as an
	// error; internal failures log and return success, so the exit status
	// only reflects bad invocations.
	runToggle := func(rawAction string) error {
		action, err := swact.ParseAction(rawAction)
		if err != nil {
			return err
		}

		cfg, err := config.Load(configFlag, setFlags)
		if err != nil {
			log.Printf("Error loading configuration: %v", err)
			return nil
		}

		engine := swact.NewEngine(cfg, nil)
		result, err := engine.Run(context.Background(), action)
		if err != nil {
			log.Printf("Worker services %s failed: %v", action, err)
			return nil
		}

		switch result.Outcome {
		case swact.OutcomeNoOp:
			log.Printf("Worker services %s skipped: %s", action, result.Reason)
		default:
			log.Printf("Worker services %s completed", action)
		}
		return nil
	}

	newToggleCmd := func(name, short string) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runToggle(cmd.Name())
			},
		}
	}

	startCmd := newToggleCmd("start", "Enable and start the worker services")
	stopCmd := newToggleCmd("stop", "Disable and stop the worker services")

	// Create the secret command group
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Credential vault helpers",
	}

	secretGetCmd := &cobra.Command{
		Use:   "get [service] [account]",
		Short: "Print the secret stored for a service and account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag, setFlags)
			if err != nil {
				return err
			}

			version, err := platform.ReadBuildVersion(cfg.Host.BuildInfo)
			if err != nil {
				return err
			}

			client := keyring.NewClient(&operations.NativeExecutor{},
				cfg.Keyring.Tool, cfg.Keyring.VaultDir(version))
			secret, err := client.GetSecret(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	secretCmd.AddCommand(secretGetCmd)

	// Create the config command group
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	configSchemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := config.SchemaJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), schema)
			return nil
		},
	}
	configCmd.AddCommand(configSchemaCmd)

	// Add subcommands to the root command
	rootCmd.AddCommand(startCmd, stopCmd, secretCmd, configCmd)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
