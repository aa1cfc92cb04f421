// Package cmd implements the cgio command line.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tgolubev/cgio/internal/logger"
	"github.com/tgolubev/cgio/partition"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	Verbose bool   `toml:"verbose"`
	Matrix  string `toml:"matrix"`
	RHS     string `toml:"rhs"`

	configFile string
	logger     logger.Logger
}

// NewRootCommand returns the cgio root command with all subcommands.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cfg := &Config{logger: logger.NopLogger}
	rc := &cobra.Command{
		Use:   "cgio",
		Short: "Load and store the data of a distributed conjugate gradient solve.",
		Long: `cgio moves the data of a distributed conjugate gradient solver between
HDF5 containers and memory.

It creates containers holding a coefficient matrix and right-hand side,
reads each process's contiguous block of matrix rows, and stores the
solution and run statistics back into the container.

Settings come from flags, CGIO_ environment variables and an optional
TOML file given with --config, in that order of priority.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setAllConfig(viper.New(), cmd.Flags(), validKeys(cmd.Root())); err != nil {
				return err
			}
			if cfg.Verbose {
				cfg.logger = logger.NewVerboseLogger(stderr)
			} else {
				cfg.logger = logger.NewStandardLogger(stderr)
			}
			return nil
		},
	}
	flags := rc.PersistentFlags()
	flags.StringVarP(&cfg.configFile, "config", "c", "", "Configuration file to read from.")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging.")
	flags.StringVar(&cfg.Matrix, "matrix", "A", "Name of the matrix dataset.")
	flags.StringVar(&cfg.RHS, "rhs", "b", "Name of the right-hand side dataset.")

	rc.AddCommand(newGenerateCommand(cfg, stdout))
	rc.AddCommand(newPartitionCommand(stdout))
	rc.AddCommand(newReadCommand(cfg, stdout))
	rc.AddCommand(newStoreCommand(cfg, stdout))
	rc.AddCommand(newVerifyCommand(cfg, stdout))
	rc.AddCommand(newInspectCommand(stdout))
	rc.AddCommand(newConfigCommand(cfg, stdout))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// validKeys returns every flag name defined anywhere in the command tree,
// so one configuration file can serve all subcommands.
func validKeys(root *cobra.Command) map[string]bool {
	keys := make(map[string]bool)
	var visit func(c *cobra.Command)
	visit = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) { keys[f.Name] = true })
		c.PersistentFlags().VisitAll(func(f *pflag.Flag) { keys[f.Name] = true })
		for _, sub := range c.Commands() {
			visit(sub)
		}
	}
	visit(root)
	return keys
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, as well as their defaults. It then reads from the command line, the
// environment, and a config file (if specified), and applies the configuration
// in that priority order. Since each flag in the set contains a pointer to
// where its value should be stored, setAllConfig can directly modify the value
// of each config variable.
//
// Environment variables are the flag names upper-cased, with dashes replaced
// by underscores and prefixed with CGIO_.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet, validTags map[string]bool) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix("CGIO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
		for _, key := range v.AllKeys() {
			if !validTags[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if !v.IsSet(f.Name) {
			return
		}
		flagErr = f.Value.Set(v.GetString(f.Name))
	})
	return flagErr
}

// addRankFlags registers --rank and --size. Negative values mean the
// launcher environment decides.
func addRankFlags(flags *pflag.FlagSet, rank, size *int) {
	flags.IntVar(rank, "rank", -1, "Rank of this process (default: from the MPI launcher environment).")
	flags.IntVar(size, "size", -1, "Number of processes (default: from the MPI launcher environment).")
}

func rankContext(rank, size int) (partition.Context, error) {
	if rank < 0 && size < 0 {
		return partition.FromEnv()
	}
	if size < 0 {
		size = 1
	}
	if rank < 0 {
		rank = 0
	}
	ctx := partition.Context{Rank: rank, Size: size}
	return ctx, ctx.Validate()
}
