package main

import (
	"context"
	"sort"
	"strings"

	"github.com/civic311/dc311/pkg/dc311"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// registerTypes registers the types subcommand.
func registerTypes(rootCmd *cobra.Command, a *app) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "types",
		Short: "Lists the service request types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.types(cmd.Context())
		},
	})
}

func (a *app) types(ctx context.Context) error {
	types, err := a.service.GetTypes(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot get the service types")
	}
	sorted := make([]*dc311.ServiceType, 0, len(types))
	for _, st := range types {
		sorted = append(sorted, st)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Code < sorted[j].Code
	})
	if a.options.JSON {
		return a.printJSON(sorted)
	}
	heading.Fprintf(a.stdout, "%d service types\n", len(sorted))
	for _, st := range sorted {
		if err := a.print(st); err != nil {
			return err
		}
	}
	return nil
}

// registerDefinition registers the definition subcommand.
func registerDefinition(rootCmd *cobra.Command, a *app) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "definition CODE",
		Short: "Shows the questions to answer for the given service type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.definition(cmd.Context(), args[0])
		},
	})
}

func (a *app) definition(ctx context.Context, code string) error {
	types, err := a.service.GetTypes(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot get the service types")
	}
	var definition *dc311.Definition
	if st, found := types[code]; found {
		definition, err = st.Definition(ctx)
	} else {
		a.logger.Warnf("%s is not in the catalog", code)
		definition, err = a.service.GetTypeDefinition(ctx, code)
	}
	if err != nil {
		return errors.Wrapf(err, "cannot get the definition of %s", code)
	}
	if a.options.JSON {
		return a.printJSON(definition)
	}
	heading.Fprintf(a.stdout, "%s (%s)\n", definition.Type, definition.Code)
	for _, q := range definition.Questions {
		if err := a.print(q); err != nil {
			return err
		}
	}
	return nil
}

// registerGet registers the get subcommand.
func registerGet(rootCmd *cobra.Command, a *app) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Shows the given service request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.get(cmd.Context(), args[0])
		},
	})
}

func (a *app) get(ctx context.Context, requestID string) error {
	sr, err := a.service.Get(ctx, requestID)
	if err != nil {
		return errors.Wrapf(err, "cannot get service request %s", requestID)
	}
	return a.print(sr)
}

// submitOptions contains the options of the submit subcommand.
type submitOptions struct {
	AID         string
	Description string
	Params      []string
}

// registerSubmit registers the submit subcommand.
func registerSubmit(rootCmd *cobra.Command, a *app) {
	var options submitOptions
	subCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submits a new service request and prints its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.submit(cmd.Context(), &options)
		},
	}
	rootCmd.AddCommand(subCmd)
	flags := subCmd.Flags()

	flags.StringVar(
		&options.AID,
		"aid",
		"",
		"agency assigned ID of the request",
	)

	flags.StringVar(
		&options.Description,
		"description",
		"",
		"description of the problem",
	)

	flags.StringArrayVarP(
		&options.Params,
		"param",
		"p",
		[]string{},
		"add KEY=VALUE answer to a question (can be repeated multiple times)",
	)

	subCmd.MarkFlagRequired("aid")
	subCmd.MarkFlagRequired("description")
}

func (a *app) submit(ctx context.Context, options *submitOptions) error {
	params, err := parseParams(options.Params)
	if err != nil {
		return err
	}
	token, err := a.service.Submit(ctx, options.AID, options.Description, params)
	if err != nil {
		return errors.Wrap(err, "cannot submit the service request")
	}
	a.logger.Infof("use `dc311 token %s` to get the request ID", token)
	return a.printScalar("token", token)
}

// parseParams parses KEY=VALUE pairs preserving their order.
func parseParams(input []string) ([]dc311.Param, error) {
	var output []dc311.Param
	for _, entry := range input {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, errors.Errorf("invalid KEY=VALUE pair: %q", entry)
		}
		output = append(output, dc311.Param{Name: key, Value: value})
	}
	return output, nil
}

// registerToken registers the token subcommand.
func registerToken(rootCmd *cobra.Command, a *app) {
	var resolve bool
	subCmd := &cobra.Command{
		Use:   "token TOKEN",
		Short: "Prints the ID of the service request created with TOKEN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.token(cmd.Context(), args[0], resolve)
		},
	}
	rootCmd.AddCommand(subCmd)
	subCmd.Flags().BoolVar(
		&resolve,
		"resolve",
		false,
		"also fetch and show the service request",
	)
}

func (a *app) token(ctx context.Context, token string, resolve bool) error {
	requestID, err := a.service.GetFromToken(ctx, token)
	if err != nil {
		return errors.Wrapf(err, "cannot resolve token %s", token)
	}
	if !resolve {
		return a.printScalar("servicerequestid", requestID)
	}
	return a.get(ctx, requestID)
}
