// goodnewsctl runs maintenance tasks against the stores of a goodnews
// deployment, configured through the same GOODNEWS_* environment.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/MrSnakeDoc/goodnews/internal/app"
	"github.com/MrSnakeDoc/goodnews/internal/config"
	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/links"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/reconcile"
	"github.com/MrSnakeDoc/goodnews/internal/transfer"
	"github.com/MrSnakeDoc/goodnews/internal/utils"
	"github.com/MrSnakeDoc/goodnews/internal/version"
)

const usage = `usage: goodnewsctl <command> [flags]

commands:
  import    add the links of a JSON or CSV file
  export    write every link as JSON or CSV
  sync      reconcile the local store with a user's collection
  normalize print the normalized form of URLs
  version   print the build version
`

// opener opens the configured stores.
type opener func(ctx context.Context, log logger.Logger) (*app.Stores, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context, log logger.Logger) (*app.Stores, error) {
		return app.OpenStores(ctx, config.Load(), log)
	}
	if err := run(ctx, os.Args[1:], os.Stdout, open); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, open opener) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "import":
		return runImport(ctx, rest, out, open)
	case "export":
		return runExport(ctx, rest, out, open)
	case "sync":
		return runSync(ctx, rest, out, open)
	case "normalize":
		return runNormalize(rest, out)
	case "version", "--version":
		fmt.Fprintln(out, version.String("goodnewsctl"))
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newFlagSet(name string) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet("goodnewsctl "+name, pflag.ContinueOnError)
	logLevel := fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	return fs, logLevel
}

func runImport(ctx context.Context, args []string, out io.Writer, open opener) error {
	fs, logLevel := newFlagSet("import")
	format := fs.StringP("format", "f", "", "file format, json or csv (default: from the file extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("import needs exactly one file")
	}
	path := fs.Arg(0)

	f := transfer.FormatFromFilename(path)
	if *format != "" {
		var err error
		if f, err = transfer.ParseFormat(*format); err != nil {
			return err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer utils.Close(file)

	log := logger.New(*logLevel, true)
	stores, err := open(ctx, log)
	if err != nil {
		return err
	}
	defer stores.Close(log)

	res, err := links.NewService(stores.Links, nil, log).Import(ctx, f, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %d, skipped %d\n", res.Added, res.Skipped)
	return nil
}

func runExport(ctx context.Context, args []string, out io.Writer, open opener) error {
	fs, logLevel := newFlagSet("export")
	format := fs.StringP("format", "f", string(transfer.FormatJSON), "output format, json or csv")
	output := fs.StringP("output", "o", "", "write to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := transfer.ParseFormat(*format)
	if err != nil {
		return err
	}

	log := logger.New(*logLevel, true)
	stores, err := open(ctx, log)
	if err != nil {
		return err
	}
	defer stores.Close(log)

	w := out
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("create %s: %w", *output, err)
		}
		defer utils.MustClose(file, *output, log)
		w = file
	}
	return links.NewService(stores.Links, nil, log).Export(ctx, f, w)
}

func runSync(ctx context.Context, args []string, out io.Writer, open opener) error {
	fs, logLevel := newFlagSet("sync")
	email := fs.String("email", "", "email of the collection owner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("sync needs --email")
	}

	log := logger.New(*logLevel, true)
	stores, err := open(ctx, log)
	if err != nil {
		return err
	}
	defer stores.Close(log)
	if stores.Remote == nil || stores.Users == nil {
		return errors.New("cloud sync is disabled: set GOODNEWS_POSTGRES_DSN")
	}

	user, err := stores.Users.GetOrCreateByEmail(ctx, *email)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}
	res, err := reconcile.New(stores.Links, stores.Remote, log).Sync(ctx, user.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "uploaded %d, downloaded %d\n", res.Up, res.Down)
	return nil
}

func runNormalize(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("normalize needs at least one URL")
	}
	invalid := 0
	for _, raw := range args {
		if !domain.IsValidHTTPSURL(raw) {
			fmt.Fprintf(out, "%s\tinvalid\n", raw)
			invalid++
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", raw, domain.NormalizeURL(raw))
	}
	if invalid > 0 {
		return fmt.Errorf("%d invalid url(s)", invalid)
	}
	return nil
}
