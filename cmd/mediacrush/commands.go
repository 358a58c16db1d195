/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbanda/MediaCrush"
	"github.com/dbanda/MediaCrush/errors"
	"github.com/dbanda/MediaCrush/invocation"
	"github.com/dbanda/MediaCrush/objects"
	"github.com/dbanda/MediaCrush/registry"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := mediacrush.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mediacrush version %s\n", info.Version)
			fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
			return nil
		},
	}
}

func newGetCommand(cc *commandContext) *cobra.Command {
	var typeFlag string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print the stored fields of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			tag := strings.ToLower(typeFlag)
			if tag == registry.AnyType {
				resolved, err := cc.store.Registry().Resolve(ctx, id)
				if err != nil {
					return err
				}
				tag = resolved
			}
			if tag == "" {
				return errors.NewNotFoundError("entity", id)
			}

			fields, err := cc.store.Fields(ctx, id, tag)
			if err != nil {
				return err
			}
			if fields == nil {
				return errors.NewNotFoundError(tag, id)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "type: %s\n", tag)
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s: %s\n", name, mediacrush.Encode(fields[name]))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Entity type; resolved from the identifier when empty")
	return cmd
}

func newListCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <type>",
		Short: "List identifiers of every entity of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := cc.store.ListAll(cmd.Context(), strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(entities))
			for _, e := range entities {
				ids = append(ids, e.Identifier())
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func loadFile(cmd *cobra.Command, cc *commandContext, id string) (*objects.File, error) {
	f, err := mediacrush.Load[*objects.File](cmd.Context(), cc.store, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.NewNotFoundError("file", id)
	}
	return f, nil
}

func newReportCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report <id>",
		Short: "Report a file for moderation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFile(cmd, cc, args[0])
			if err != nil {
				return err
			}
			n, err := cc.repo.AddReport(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reports: %d\n", f.Identifier(), n)
			return nil
		},
	}
}

func newFlaggedCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "flagged",
		Short: "List files queued for moderation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := cc.store.Flagged(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newStatusCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show the processing status of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFile(cmd, cc, args[0])
			if err != nil {
				return err
			}
			status, err := cc.repo.Status(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newRunCommand(cc *commandContext) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run [--timeout d] -- <template> [args...]",
		Short: "Run a command template under the processing deadline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindArgs := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				bindArgs = append(bindArgs, a)
			}
			command := invocation.New(args[0],
				invocation.WithTimeout(cc.cfg.MaxProcessingTime()),
				invocation.WithLogger(cc.logger))
			inv, err := command.Bind(bindArgs...)
			if err != nil {
				return err
			}

			outcome := inv.Run(cmd.Context(), timeout)
			out := cmd.OutOrStdout()
			fmt.Fprint(out, inv.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), inv.Stderr)

			switch outcome {
			case invocation.Completed:
				code, _ := inv.ExitCode()
				fmt.Fprintf(out, "outcome: %s, exit code %d\n", outcome, code)
				if code != 0 {
					return fmt.Errorf("%s exited with code %d", inv.Args()[0], code)
				}
				return nil
			case invocation.Crashed:
				return fmt.Errorf("invocation crashed: %w", inv.Err)
			default:
				return fmt.Errorf("invocation %s", outcome)
			}
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Deadline; defaults to settings.max_processing_time")
	return cmd
}
