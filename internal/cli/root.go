// Package cli implements bookingctl, the operator tool for the booking engine.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"k9harmony/internal/services"
	"k9harmony/pkg/config"

	"github.com/spf13/cobra"
)

const ServiceName = "bookingctl"

// runtime builds the engine lazily so that --help and config errors never touch the store.
type runtime struct {
	loadConfig func() *config.Config
	build      func(cfg *config.Config) (*services.Services, error)

	cfg *config.Config
	svc *services.Services
}

func (rt *runtime) config() *config.Config {
	if rt.cfg == nil {
		rt.cfg = rt.loadConfig()
	}
	return rt.cfg
}

func (rt *runtime) services() (*services.Services, error) {
	if rt.svc != nil {
		return rt.svc, nil
	}
	svc, err := rt.build(rt.config())
	if err != nil {
		return nil, err
	}
	rt.svc = svc
	return svc, nil
}

func (rt *runtime) close(ctx context.Context, errOut io.Writer) {
	if rt.svc != nil {
		if err := rt.svc.Close(ctx); err != nil {
			fmt.Fprintln(errOut, "close:", err)
		}
	}
	if rt.cfg != nil && rt.cfg.Client != nil {
		rt.cfg.GracefulShutdown()
	}
}

// Execute runs bookingctl with the process arguments and releases connections afterwards.
func Execute(ctx context.Context) error {
	rt := &runtime{
		loadConfig: func() *config.Config { return config.Load(ServiceName) },
		build: func(cfg *config.Config) (*services.Services, error) {
			return services.Build(cfg, nil, nil)
		},
	}
	defer rt.close(context.WithoutCancel(ctx), os.Stderr)
	return newRoot(rt, os.Stdout).ExecuteContext(ctx)
}

func newRoot(rt *runtime, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bookingctl",
		Short:         "Operate the trainer booking engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.AddCommand(newMigrateCmd(rt))
	cmd.AddCommand(newTrainersCmd(rt))
	cmd.AddCommand(newSweepLocksCmd(rt))
	cmd.AddCommand(newConsistencyCmd(rt))
	cmd.AddCommand(newAvailabilityCmd(rt))
	cmd.AddCommand(newJournalCmd(rt))
	cmd.AddCommand(newWatchReconciliationCmd(rt))
	cmd.AddCommand(newWaitReadyCmd(rt))
	return cmd
}
