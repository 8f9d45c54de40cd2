// Command oxyxr displays a 3D model in a desktop window and presents it in an emulated
// immersive session, driven by the keyboard and an optional gamepad.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "oxyxr [model]",
		Short: "View a glTF model and inspect it in an immersive session",
		Long: `oxyxr loads a glTF/GLB model (or a builtin: primitive) into an orbit viewer and
presents it through a desktop-emulated immersive session.

In the session, WASD walks, the arrow keys look around and joystick 0 acts as the
tracked controller. Escape leaves the session; Escape outside a session quits.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.source = args[0]
			}
			settings, err := opts.settings()
			if err != nil {
				return err
			}
			return run(cmd.Context(), settings)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (defaults to $OXY_CONFIG or ./oxy-xr.yaml)")
	flags.StringVar(&opts.environment, "environment", "", "environment map to light the model with")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&opts.metrics, "metrics", false, "serve Prometheus metrics")
	flags.BoolVar(&opts.noImmersive, "no-immersive", false, "stay in the orbit viewer instead of entering a session")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
