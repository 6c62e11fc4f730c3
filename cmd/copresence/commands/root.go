package commands

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"copresence/internal/app"
)

var (
	home       string
	passphrase string
	radioKind  string
	airURL     string
	address    string
	position   string
	dbPath     string
	quiet      bool

	wire *app.Wire
)

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:          "copresence",
		Short:        "Proximity attendance over Bluetooth LE",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			for name, apply := range map[string]func(){
				"home":       func() { cfg.Home = home },
				"passphrase": func() { cfg.Passphrase = passphrase },
				"radio":      func() { cfg.Radio = radioKind },
				"air":        func() { cfg.AirURL = airURL },
				"address":    func() { cfg.Address = address },
				"position":   func() { cfg.Position = position },
				"db":         func() { cfg.DBPath = dbPath },
			} {
				if flags.Changed(name) {
					apply()
				}
			}
			applySessionFlags(cmd, &cfg)

			logger := log.New(os.Stderr, "copresence: ", log.LstdFlags)
			if quiet {
				logger.SetOutput(io.Discard)
			}
			wire, err = app.NewWire(cfg, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "state dir (default ~/.copresence)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase to seal the stored roll number")
	pf.StringVar(&radioKind, "radio", app.RadioAir, "radio to use: air or ble")
	pf.StringVar(&airURL, "air", "", "simulated air base URL (e.g. http://127.0.0.1:8787)")
	pf.StringVar(&address, "address", "", "this device's address on the simulated air (default hostname)")
	pf.StringVar(&position, "position", "", "this device's x,y position in metres on the simulated air")
	pf.StringVar(&dbPath, "db", "", "attendance database (default <home>/attendance.db)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress log output")

	root.AddCommand(idCmd(), markCmd(), anchorCmd(), historyCmd())
	return root.ExecuteContext(ctx)
}
