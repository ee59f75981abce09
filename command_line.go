package loadbench

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	g "github.com/hhkbp2/loadbench/generator"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProgramName = "loadbench"
	EnvPrefix   = "LOADBENCH"
)

// Arguments is the parsed command line of a benchmark run.
type Arguments struct {
	Phases      []string
	Database    string
	Threads     int
	Status      bool
	MetricsAddr string
	Properties
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.StringP("workload", "P", "", "specify workload file")
	flags.StringArrayP("property", "p", nil, "specify a property value as name=value")
	flags.String("db", "", `use the specified database binding (can also set the "db" property)`)
	flags.String("table", "", fmt.Sprintf("use the table name instead of the default %s", PropertyTableNameDefault))
	flags.String("log-level", "warn", "log level: verbose, debug, info, warn, error or quiet")
}

// NewRootCommand builds the command line of the program.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   ProgramName + " {load|run}... -P workload [options]",
		Short: "Run a YCSB style workload against a database",
		Long: `Load a dataset into a database and replay a mixture of
read/update/insert/scan operations against it, reporting the throughput of
every phase.

Databases: ` + strings.Join(DatabaseNames(), ", "),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, phases []string) error {
			args, err := ParseArgs(cmd, v, phases)
			if err != nil {
				return err
			}
			return RunBenchmark(cmd.Context(), args, cmd.OutOrStdout())
		},
	}
	addCommonFlags(cmd.Flags())
	cmd.Flags().IntP("threads", "t", 1, "number of client goroutines")
	cmd.Flags().BoolP("status", "s", false, "print status to stderr")
	cmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	cmd.AddCommand(newShellCommand())
	return cmd
}

func newShellCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:          "shell",
		Short:        "Interactive mode",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := parseCommonArgs(cmd, v)
			if err != nil {
				return err
			}
			db, err := NewDB(args.Database, args.Properties)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := db.Init(ctx); err != nil {
				return NewBackendError("INIT", "", "", err)
			}
			if cleaner, ok := db.(Cleaner); ok {
				defer cleaner.Cleanup()
			}
			table := args.GetDefault(PropertyTableName, PropertyTableNameDefault)
			return NewShell(db, table).Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	addCommonFlags(cmd.Flags())
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

func parseCommonArgs(cmd *cobra.Command, v *viper.Viper) (*Arguments, error) {
	if err := SetLogLevel(v.GetString("log-level")); err != nil {
		return nil, NewConfigError("log-level", v.GetString("log-level"), err)
	}
	props := NewProperties()
	if workload := v.GetString("workload"); len(workload) > 0 {
		propsFromFile, err := LoadProperties(workload)
		if err != nil {
			return nil, err
		}
		props.Merge(propsFromFile)
	}
	overrides, err := cmd.Flags().GetStringArray("property")
	if err != nil {
		return nil, err
	}
	for _, arg := range overrides {
		// it's a property, should be in `k=v` form
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || len(parts[0]) == 0 {
			return nil, NewConfigError("property", arg, errors.New("must be in name=value form"))
		}
		props.Add(parts[0], parts[1])
	}
	if db := v.GetString("db"); len(db) > 0 {
		props.Add(PropertyDB, db)
	}
	if table := v.GetString("table"); len(table) > 0 {
		props.Add(PropertyTableName, table)
	}
	for _, k := range props.UnknownKeys() {
		Warnf("ignoring unknown property %q", k)
	}
	return &Arguments{
		Database:   props.GetDefault(PropertyDB, PropertyDBDefault),
		Properties: props,
	}, nil
}

// ParseArgs validates the phases and reads the workload file and the
// options of a benchmark run.
func ParseArgs(cmd *cobra.Command, v *viper.Viper, phases []string) (*Arguments, error) {
	if err := ValidatePhases(phases); err != nil {
		return nil, err
	}
	if len(v.GetString("workload")) == 0 {
		return nil, NewConfigError("workload", "", errors.New("a workload file is required (-P)"))
	}
	args, err := parseCommonArgs(cmd, v)
	if err != nil {
		return nil, err
	}
	args.Phases = phases
	args.Threads = v.GetInt("threads")
	if !cmd.Flags().Changed("threads") && !v.IsSet("threads") {
		if _, ok := args.Properties[PropertyThreadCount]; ok {
			threads, err := args.int64Value(PropertyThreadCount, PropertyThreadCountDefault)
			if err != nil {
				return nil, err
			}
			args.Threads = int(threads)
		}
	}
	args.Status = v.GetBool("status")
	args.MetricsAddr = v.GetString("metrics-addr")
	return args, nil
}

// RunBenchmark runs the phases of args and prints the results to w.
func RunBenchmark(ctx context.Context, args *Arguments, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	p := args.Properties
	seed, err := p.int64Value(PropertySeed, PropertySeedDefault)
	if err != nil {
		return err
	}
	if seed != 0 {
		g.Seed(seed)
	}
	target, err := p.float64Value(PropertyTarget, PropertyTargetDefault)
	if err != nil {
		return err
	}
	statusInterval, err := p.int64Value(PropertyStatusInterval, PropertyStatusIntervalDefault)
	if err != nil {
		return err
	}

	measurements, err := NewDefaultMeasurements(p)
	if err != nil {
		return err
	}
	config, err := NewWorkloadConfig(p)
	if err != nil {
		return err
	}
	workload, err := NewCoreWorkload(config, measurements)
	if err != nil {
		return err
	}
	db, err := NewDB(args.Database, p)
	if err != nil {
		return err
	}

	if len(args.MetricsAddr) > 0 {
		server := &http.Server{
			Addr:    args.MetricsAddr,
			Handler: promhttp.HandlerFor(measurements.Registry(), promhttp.HandlerOpts{}),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				Warnf("metrics server on %s stopped: %s", args.MetricsAddr, err)
			}
		}()
		defer server.Close()
	}

	client := NewClient(db, workload, measurements, args.Threads)
	client.SetTarget(target)
	if args.Status {
		client.SetStatus(os.Stderr, time.Duration(statusInterval)*time.Second)
	}
	Infof("run %s: %s on %s with %d threads", client.RunID(), strings.Join(args.Phases, ","), args.Database, args.Threads)
	results, runErr := client.Run(ctx, args.Phases)
	WriteResults(w, results)
	if err := ExportMeasurements(p, measurements, w); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// Main runs the program with the arguments of the process.
func Main() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		EPrintf("%s: %s", ProgramName, err)
		os.Exit(1)
	}
}
