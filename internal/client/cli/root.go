package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/filedrop/internal/client/api"
	"github.com/dmitrijs2005/filedrop/internal/client/config"
)

type App struct {
	config *config.Config
	client *api.Client
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &App{}

	var (
		configFile string
		server     string
		timeout    time.Duration
	)

	root := &cobra.Command{
		Use:           "filedrop",
		Short:         "Upload files to a filedrop server and fetch them back",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("server") {
				cfg.Server = server
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = timeout
			}

			c, err := api.New(cfg.Server, api.WithTimeout(cfg.Timeout))
			if err != nil {
				return err
			}
			a.config = cfg
			a.client = c
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "JSON config file")
	pf.StringVarP(&server, "server", "s", "", "server base URL (default http://localhost:3000)")
	pf.DurationVarP(&timeout, "timeout", "t", 0, "per-request timeout, 0 for none")

	root.AddCommand(
		a.uploadCommand(),
		a.infoCommand(),
		a.getCommand(),
		a.healthCommand(),
		versionCommand(),
	)
	return root
}
