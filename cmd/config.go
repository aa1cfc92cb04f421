package cmd

import (
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newConfigCommand(cfg *Config, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration.",
		Long: `config prints the settings in effect after merging flags, environment
and configuration file, in the TOML format --config accepts.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = stdout.Write(buf)
			return err
		},
	}
}
