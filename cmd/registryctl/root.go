package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-registry/framework/app"
	"github.com/km-arc/go-registry/framework/container"
	"github.com/km-arc/go-registry/internal/repository"
)

type rootOptions struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "registryctl",
		Version:       app.Version,
		Short:         "Inspect a registry whose factories are discoverable before they run",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "env files to load (default .env)")

	cmd.AddCommand(newEntriesCmd(opts), newNamesCmd(opts), newServeCmd(opts))
	return cmd
}

// bootstrap builds the application with the sample repository module.
func bootstrap(opts *rootOptions, logOut io.Writer) (*app.Application, error) {
	a, err := app.New(logOut, opts.envFiles...)
	if err != nil {
		return nil, err
	}
	if err := a.RegisterProvider(&repository.ServiceProvider{}); err != nil {
		return nil, err
	}
	if err := a.Boot(); err != nil {
		return nil, err
	}
	return a, nil
}

func newEntriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entries",
		Short: "List registered entries and their state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), a.Entries())
		},
	}
}

func printEntries(w io.Writer, entries []container.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATE\tDECLARED\tPRODUCED")
	for _, e := range entries {
		declared, produced := "-", "-"
		if e.Descriptor != nil {
			declared = e.Descriptor.DeclaredType().String()
			if t, ok := e.Descriptor.ProducedType(); ok {
				produced = t.String()
			}
		} else if e.Type != nil {
			produced = e.Type.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.State, declared, produced)
	}
	return tw.Flush()
}

func newNamesCmd(opts *rootOptions) *cobra.Command {
	var (
		typeKey       string
		ancestors     bool
		nonSingletons bool
		resolve       string
	)
	cmd := &cobra.Command{
		Use:   "names",
		Short: "Find entry names by type, optionally before and after resolving an entry",
		Example: `  registryctl names --type github.com/km-arc/go-registry/internal/repository.RepositoryFactoryInformation
  registryctl names --type github.com/km-arc/go-registry/internal/repository.UserRepository --resolve repository`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			known := a.KnownTypes()
			t, ok := known[typeKey]
			if !ok {
				keys := make([]string, 0, len(known))
				for k := range known {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				return fmt.Errorf("unknown type %q; known types: %v", typeKey, keys)
			}
			q := container.Query{Type: t, IncludeAncestors: ancestors, IncludeNonSingletons: nonSingletons}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%v\n", a.NamesForType(q))
			if resolve == "" {
				return nil
			}
			if _, err := a.Resolve(resolve); err != nil {
				return err
			}
			fmt.Fprintf(out, "%v\n", a.NamesForType(q))
			return nil
		},
	}
	cmd.Flags().StringVar(&typeKey, "type", "", "type key (package path + type name)")
	cmd.Flags().BoolVar(&ancestors, "ancestors", false, "include parent registries")
	cmd.Flags().BoolVar(&nonSingletons, "non-singletons", false, "include prototype entries")
	cmd.Flags().StringVar(&resolve, "resolve", "", "resolve this entry, then query again")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspection endpoints on APP_PORT",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}
