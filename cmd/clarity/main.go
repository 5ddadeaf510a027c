package main // import "github.com/CognitoIQ/go-clarity/cmd/clarity"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/CognitoIQ/go-clarity/config"
	"github.com/CognitoIQ/go-clarity/internal/commandline"
	"github.com/CognitoIQ/go-clarity/internal/ordered"
	"github.com/CognitoIQ/go-clarity/lims"
	"github.com/CognitoIQ/go-clarity/transport"
)

const usage = "Usage: clarity [-config file] [-v] show|udf|set-udf [flags] kind id"

type resolver func(s *lims.Session, ref string) (lims.Resource, error)

func byRef[T lims.Resource](t *lims.Type[T]) resolver {
	return func(s *lims.Session, ref string) (lims.Resource, error) {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			return t.ByURI(s, ref), nil
		}
		return t.ByID(s, ref)
	}
}

var kinds = map[string]resolver{
	"artifact":      byRef(lims.Artifacts),
	"container":     byRef(lims.Containers),
	"containertype": byRef(lims.ContainerTypes),
	"file":          byRef(lims.Files),
	"lab":           byRef(lims.Labs),
	"process":       byRef(lims.Processes),
	"processtype":   byRef(lims.ProcessTypes),
	"project":       byRef(lims.Projects),
	"protocol":      byRef(lims.Protocols),
	"queue":         byRef(lims.Queues),
	"reagentkit":    byRef(lims.ReagentKits),
	"reagentlot":    byRef(lims.ReagentLots),
	"reagenttype":   byRef(lims.ReagentTypes),
	"researcher":    byRef(lims.Researchers),
	"sample":        byRef(lims.Samples),
	"step":          byRef(lims.Steps),
	"udfconfig":     byRef(lims.UDFConfigs),
	"workflow":      byRef(lims.Workflows),
}

// env carries the process surroundings so tests can replace them.
type env struct {
	stdout, stderr io.Writer
	client         *http.Client
}

func main() {
	e := env{stdout: os.Stdout, stderr: os.Stderr, client: http.DefaultClient}
	if err := e.run(context.Background(), os.Args[1:]...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (e env) run(ctx context.Context, arguments ...string) error {
	var (
		fs         = flag.NewFlagSet("clarity", flag.ContinueOnError)
		configFile = fs.String("config", "", "configuration file")
		verbose    = fs.Bool("v", false, "log every request")
	)
	fs.SetOutput(e.stderr)
	if err := fs.Parse(arguments); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New(usage)
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	logger, closeLog, err := e.logger(cfg, *verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	tr := transport.New(cfg.APIRoot(),
		transport.Client(e.client),
		transport.BasicAuth(cfg.Username, cfg.Password),
		transport.LogOutput(logger))
	s := lims.NewSession(cfg.APIRoot(), tr, lims.LogOutput(logger))

	cmd, args := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "show":
		return e.show(ctx, s, args)
	case "udf":
		return e.listUDF(ctx, s, args)
	case "set-udf":
		return e.setUDF(ctx, s, args)
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func (e env) logger(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	w, closer := e.stderr, func() {}
	if cfg.MainLog != "" {
		f, err := os.OpenFile(cfg.MainLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

func resolve(s *lims.Session, args []string) (lims.Resource, error) {
	if len(args) != 2 {
		return nil, errors.New(usage)
	}
	r, ok := kinds[args[0]]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q; one of %s", args[0],
			strings.Join(ordered.Keys(kinds), ", "))
	}
	return r(s, args[1])
}

func (e env) show(ctx context.Context, s *lims.Session, args []string) error {
	r, err := resolve(s, args)
	if err != nil {
		return err
	}
	if err := r.Base().EnsureLoaded(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.stdout, "%s\n", transport.Encode(r.Base().Root()))
	return err
}

func (e env) listUDF(ctx context.Context, s *lims.Session, args []string) error {
	var (
		only commandline.Strings
		fs   = flag.NewFlagSet("udf", flag.ContinueOnError)
	)
	fs.SetOutput(e.stderr)
	fs.Var(&only, "only", "field to print (can be used multiple times)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := resolve(s, fs.Args())
	if err != nil {
		return err
	}
	d, err := lims.NewUDFField().Get(ctx, r)
	if err != nil {
		return err
	}
	return ordered.Range(d.Items(), func(name string, v interface{}) error {
		if !only.Contains(name) {
			return nil
		}
		typ, _ := d.Type(name)
		_, err := fmt.Fprintf(e.stdout, "%s\t%s\t%s\n", name, typ, formatValue(v))
		return err
	})
}

func (e env) setUDF(ctx context.Context, s *lims.Session, args []string) error {
	var (
		assignments commandline.AssignmentList
		fs          = flag.NewFlagSet("set-udf", flag.ContinueOnError)
	)
	fs.SetOutput(e.stderr)
	fs.Var(&assignments, "udf", "assignment 'name=value' (can be used multiple times)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(assignments) == 0 {
		return errors.New("set-udf: no -udf assignments given")
	}
	r, err := resolve(s, fs.Args())
	if err != nil {
		return err
	}
	d, err := lims.NewUDFField().Get(ctx, r)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		typ, _ := d.Type(a.Name)
		v, err := parseValue(typ, a.Value)
		if err != nil {
			return fmt.Errorf("%s: %v", a.Name, err)
		}
		if err := d.Set(a.Name, v); err != nil {
			return err
		}
	}
	if err := r.Base().Put(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.stdout, "updated %d field(s) on %s\n", len(assignments), r.Base().URI())
	return err
}

// parseValue converts command-line text to the Go value for a field
// of type typ. An empty typ means the field is new.
func parseValue(typ, text string) (interface{}, error) {
	if text == "" && typ != "" {
		return nil, nil
	}
	switch strings.ToLower(typ) {
	case "numeric":
		if n, err := strconv.Atoi(text); err == nil {
			return n, nil
		}
		return strconv.ParseFloat(text, 64)
	case "boolean":
		return strconv.ParseBool(text)
	case "date":
		return time.Parse(lims.DateLayout, text)
	}
	return text, nil
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(lims.DateLayout)
	}
	return fmt.Sprint(v)
}
