package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nomagicln/seedgen/pkg/catalog"
	"github.com/nomagicln/seedgen/pkg/cli"
	"github.com/nomagicln/seedgen/pkg/codegen"
	"github.com/nomagicln/seedgen/pkg/completion"
	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/sampler"
	"github.com/nomagicln/seedgen/pkg/schema"
	"github.com/nomagicln/seedgen/pkg/store"
)

// runFlags are the flags shared by the commands that draw values.
type runFlags struct {
	seed  int64
	size  int
	count int
	where string

	emit    string
	url     string
	method  string
	pkgName string

	db    string
	table string
}

func (f *runFlags) register(cmd *cobra.Command, withCount bool) {
	cmd.Flags().Int64VarP(&f.seed, "seed", "s", 0, "Seed of the run (default: $"+config.EnvSeed+" or config)")
	cmd.Flags().IntVar(&f.size, "size", 0, "Upper bound on string and array lengths (default from config)")
	if withCount {
		cmd.Flags().IntVarP(&f.count, "count", "n", 0, "Number of values (default from config)")
		cmd.Flags().StringVarP(&f.where, "where", "w", "", `Only keep values matching a filter expression, e.g. 'Gt("age", 18)'`)
		cmd.Flags().StringVar(&f.emit, "emit", "", "Print the values as code instead: "+strings.Join(codegen.ListFormats(), ", "))
		cmd.Flags().StringVar(&f.url, "url", "", "Target URL for --emit curl")
		cmd.Flags().StringVar(&f.method, "method", "POST", "HTTP method for --emit curl")
		cmd.Flags().StringVar(&f.pkgName, "package", "fixtures", "Package clause for --emit go")
		cmd.Flags().StringVar(&f.db, "db", "", "Write the values into this SQLite database instead of printing them")
		cmd.Flags().StringVar(&f.table, "table", "", "Table for --db (default derived from the generator name)")
	}
}

// store writes res into the --db database.
func (f *runFlags) store(ctx context.Context, a *app, res *sampler.Result) error {
	table := f.table
	if table == "" {
		table = store.TableName(res.Name)
	}

	db, err := store.Open(f.db)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	n, err := db.Write(ctx, table, res)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("✓ Wrote %d rows to table '%s' in %s", n, table, f.db))
	return nil
}

// render prints values either as code (--emit) or in the output format.
func (f *runFlags) render(a *app, name string, values []any) (string, error) {
	if f.emit == "" {
		return a.formatter().FormatValues(values, a.outputFormat())
	}
	g, err := codegen.NewGenerator(codegen.OutputFormat(f.emit), codegen.Options{
		Name:    name,
		Package: f.pkgName,
		URL:     f.url,
		Method:  f.method,
	})
	if err != nil {
		return "", err
	}
	out, err := g.Generate(values)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(out, "\n"), nil
}

// request fills a sampler request from the flags and the configured defaults.
func (f *runFlags) request(a *app, cmd *cobra.Command, name string) (sampler.Request, error) {
	seed, err := a.resolveSeed(cmd, f.seed)
	if err != nil {
		return sampler.Request{}, err
	}
	req := sampler.Request{
		Name:  name,
		Seed:  seed,
		Size:  a.cfg.Defaults.Size,
		Count: a.cfg.Defaults.Count,
		Where: f.where,
	}
	if cmd.Flags().Changed("size") {
		req.Size = f.size
	}
	if cmd.Flags().Changed("count") {
		req.Count = f.count
	}
	return req, nil
}

// newListCmd creates the list subcommand
func newListCmd(a *app) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available generators",
		Long: `List the builtin generators and the generators compiled from configured
OpenAPI documents.

Example:
  seedgen list
  seedgen list --source schema -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSampler(cmd.Context())
			if err != nil {
				return err
			}

			entries := s.Registry().List()
			if source != "" {
				filtered := entries[:0]
				for _, e := range entries {
					if e.Source == source {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}

			out, err := a.formatter().FormatEntries(entries, a.outputFormat())
			if err != nil {
				return err
			}
			a.println(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only list generators from this source: builtin, schema")
	return cmd
}

// newSampleCmd creates the sample subcommand
func newSampleCmd(a *app) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "sample <generator>",
		Short: "Draw sample values from a generator",
		Long: `Draw a reproducible list of values from a named generator.

Samples are chained: each value starts from the generator state the
previous one left behind, so a seed reproduces the whole sequence.

Example:
  seedgen sample int --seed 7 --count 5
  seedgen sample person --size 8 -o yaml
  seedgen sample petstore.Pet --where 'HasPrefix("name", "B")'`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeGeneratorNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(a, cmd, args[0])
			if err != nil {
				return err
			}

			s, err := a.newSampler(cmd.Context())
			if err != nil {
				return err
			}

			res, err := s.Sample(cmd.Context(), req)
			if err != nil {
				return err
			}
			if req.Where != "" {
				a.logger.Info("filtered sample", "kept", len(res.Values), "drawn", res.Drawn)
			}
			if flags.db != "" {
				return flags.store(cmd.Context(), a, res)
			}

			out, err := flags.render(a, req.Name, res.Values)
			if err != nil {
				return err
			}
			a.println(out)
			return nil
		},
	}

	flags.register(cmd, true)
	return cmd
}

// newGenerateCmd creates the generate subcommand
func newGenerateCmd(a *app) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "generate <generator>",
		Short: "Generate a single value",
		Long: `Generate one value from a named generator at the given size.

Example:
  seedgen generate person --seed 3 --size 20`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeGeneratorNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(a, cmd, args[0])
			if err != nil {
				return err
			}

			s, err := a.newSampler(cmd.Context())
			if err != nil {
				return err
			}

			v, err := s.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			out, err := a.formatter().FormatValue(v, a.outputFormat())
			if err != nil {
				return err
			}
			a.println(out)
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}

// newSchemaCmd creates the schema subcommand
func newSchemaCmd(a *app) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "schema <source> [component]",
		Short: "Inspect or sample an OpenAPI document",
		Long: `Without a component, list the component schemas of an OpenAPI document
and whether seedgen can generate values for them. With a component, draw
sample values from it without adding the document to the configuration.

Example:
  seedgen schema ./openapi.yaml
  seedgen schema https://petstore3.swagger.io/api/v3/openapi.json Pet -n 3`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: a.completeSchemaArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schema.NewLoader().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			registry := catalog.NewRegistry()
			if len(args) == 1 {
				report, err := registry.RegisterDocument("schema", doc)
				if err != nil {
					return err
				}
				return a.printComponents(schema.ComponentNames(doc), report)
			}

			if _, err := registry.RegisterDocument("schema", doc, args[1]); err != nil {
				return err
			}
			req, err := flags.request(a, cmd, "schema."+args[1])
			if err != nil {
				return err
			}

			res, err := sampler.New(registry, sampler.WithLogger(a.logger)).Sample(cmd.Context(), req)
			if err != nil {
				return err
			}
			if flags.db != "" {
				return flags.store(cmd.Context(), a, res)
			}

			out, err := flags.render(a, args[1], res.Values)
			if err != nil {
				return err
			}
			a.println(out)
			return nil
		},
	}

	flags.register(cmd, true)
	return cmd
}

func (a *app) printComponents(names []string, report *catalog.LoadReport) error {
	type componentInfo struct {
		Name   string `json:"name" yaml:"name"`
		Status string `json:"status" yaml:"status"`
	}

	infos := make([]any, len(names))
	for i, name := range names {
		status := "ok"
		if err, skipped := report.Skipped[name]; skipped {
			status = err.Error()
		}
		infos[i] = componentInfo{Name: name, Status: status}
	}

	format := a.outputFormat()
	if format == "text" {
		a.println(strings.Join(names, "\n"))
		return nil
	}
	out, err := a.formatter().FormatValues(infos, format)
	if err != nil {
		return err
	}
	a.println(out)
	return nil
}

// newConfigCmd creates the config subcommand
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.mgr.Init(force); err != nil {
				return err
			}
			a.println(fmt.Sprintf("✓ Wrote %s", a.mgr.ConfigPath()))
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cli.MarshalConfig(a.cfg)
			if err != nil {
				return err
			}
			a.println(out)
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.println(a.mgr.ConfigPath())
		},
	}

	cmd.AddCommand(initCmd, showCmd, pathCmd)
	return cmd
}

// newVersionCmd creates the version subcommand
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.println(fmt.Sprintf("seedgen %s (commit: %s, built: %s)", version, commit, date))
		},
	}
}

// completionProvider builds a provider over the configured catalog. It runs
// outside PersistentPreRunE, so it initializes the app itself.
func (a *app) completionProvider(cmd *cobra.Command) (*completion.Provider, error) {
	if a.cfg == nil {
		if err := a.setup(); err != nil {
			return nil, err
		}
	}
	s, err := a.newSampler(cmd.Context())
	if err != nil {
		return nil, err
	}
	return completion.NewProvider(s.Registry(), schema.NewLoader()), nil
}

// completeGeneratorNames completes catalog entry names.
func (a *app) completeGeneratorNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	p, err := a.completionProvider(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return p.CompleteGeneratorNames(toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeSchemaArgs completes file paths for the document and component
// names for the second argument.
func (a *app) completeSchemaArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return nil, cobra.ShellCompDirectiveDefault
	case 1:
		p := completion.NewProvider(catalog.NewRegistry(), schema.NewLoader())
		return p.CompleteComponents(cmd.Context(), args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerFlagCompletions adds value completion for the enumerated flags
// and filter expressions of cmd.
func (a *app) registerFlagCompletions(cmd *cobra.Command) {
	values := completion.NewProvider(catalog.NewRegistry(), nil)
	for _, name := range []string{"output", "emit", "transport", "source"} {
		if cmd.LocalFlags().Lookup(name) == nil {
			continue
		}
		flagName := name
		_ = cmd.RegisterFlagCompletionFunc(flagName, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return values.CompleteFlagValues(flagName, toComplete), cobra.ShellCompDirectiveNoFileComp
		})
	}
	if cmd.LocalFlags().Lookup("where") != nil {
		_ = cmd.RegisterFlagCompletionFunc("where", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return values.CompleteWhere(toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
		})
	}
}
