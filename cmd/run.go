// =============================================================================
// FOLIO Batch - Shared Command Scaffolding
// =============================================================================
//
// The three batch commands share the same setup: load config, build the
// logger, connect the store, open the input rows and the audit output.
// That plumbing lives here so the command files hold only what differs.
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/libsys-ops/folio-batch/internal/audit"
	"github.com/libsys-ops/folio-batch/internal/batch"
	"github.com/libsys-ops/folio-batch/internal/config"
	"github.com/libsys-ops/folio-batch/internal/folio"
	"github.com/libsys-ops/folio-batch/internal/reencumber"
	"github.com/libsys-ops/folio-batch/internal/tabular"
	"github.com/libsys-ops/folio-batch/pkg/utils"
)

// ioFlags are the input/output flags every batch command carries.
type ioFlags struct {
	infile     string
	outfile    string
	inDialect  string
	outDialect string
}

// addIOFlags registers the shared flags on a batch command.
func addIOFlags(c *cobra.Command, f *ioFlags, defaultDialect string) {
	c.Flags().StringVarP(&f.infile, "infile", "i", "", "Input file; .xlsx reads the first sheet (default: stdin)")
	c.Flags().StringVarP(&f.outfile, "outfile", "o", "", "Audit output file, truncated if it exists (default: stdout)")
	c.Flags().StringVarP(&f.inDialect, "in-dialect", "I", defaultDialect, "Input CSV dialect: excel, excel-tab, unix")
	c.Flags().StringVarP(&f.outDialect, "out-dialect", "O", defaultDialect, "Output CSV dialect: excel, excel-tab, unix")
}

// connection is the authenticated half of a command run.
type connection struct {
	ctx   context.Context
	log   *zap.Logger
	store folio.Store
	stop  func()
}

// connect loads the configuration, builds the logger, and authenticates
// against the gateway. The returned context is cancelled on SIGINT/SIGTERM
// so batch loops stop before starting their next row.
func connect(cmd *cobra.Command) (*connection, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)

	client, err := folio.Connect(ctx,
		cfg.Okapi.URL, cfg.Okapi.Tenant, cfg.Okapi.Username, cfg.Okapi.Password,
		time.Duration(cfg.Okapi.TimeoutSeconds)*time.Second, log)
	if err != nil {
		stop()
		return nil, err
	}

	conn := &connection{ctx: ctx, log: log, store: client}
	conn.stop = func() {
		log.Sync()
		stop()
	}
	return conn, nil
}

// runEnv is everything a batch command needs after setup.
type runEnv struct {
	ctx    context.Context
	log    *zap.Logger
	store  folio.Store
	deps   batch.Deps
	rows   tabular.RowReader
	out    *audit.Writer
	closer func()
}

// setupRun performs the shared batch-command setup. On success the caller
// owns env.closer and must invoke it when the run ends.
func setupRun(cmd *cobra.Command, f ioFlags, auditFields []string) (*runEnv, error) {
	inDialect, err := tabular.DialectByName(f.inDialect)
	if err != nil {
		return nil, err
	}
	outDialect, err := tabular.DialectByName(f.outDialect)
	if err != nil {
		return nil, err
	}

	conn, err := connect(cmd)
	if err != nil {
		return nil, err
	}

	rows, err := tabular.OpenRows(f.infile, inDialect)
	if err != nil {
		conn.stop()
		return nil, err
	}

	outFile, err := utils.CreateOutput(f.outfile)
	if err != nil {
		rows.Close()
		conn.stop()
		return nil, err
	}

	env := &runEnv{
		ctx:   conn.ctx,
		log:   conn.log,
		store: conn.store,
		deps: batch.Deps{
			Store:  conn.store,
			Engine: reencumber.New(conn.store, conn.log),
			Log:    conn.log,
		},
		rows: rows,
		out:  audit.NewWriter(outFile, outDialect, auditFields),
	}
	env.closer = func() {
		env.out.Flush()
		outFile.Close()
		rows.Close()
		conn.stop()
	}
	return env, nil
}
