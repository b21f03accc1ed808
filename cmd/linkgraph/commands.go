package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var topN int

var analyzeCmd = &cobra.Command{
	Use:   "analyze <contacts.csv>",
	Short: "Build the network and print its metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := open(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.app.Close(ctx)

		m, err := s.app.Engine.Metrics(ctx, s.graphID)
		if err != nil {
			return err
		}
		return printJSON(cmd, m.Truncated(topN))
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <contacts.csv> <source-id> <target-id>",
	Short: "Print the shortest path between two contacts",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := open(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.app.Close(ctx)

		p, err := s.app.Engine.ShortestPath(ctx, s.graphID, args[1], args[2])
		if err != nil {
			return err
		}
		return printJSON(cmd, p)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <contacts.csv> <question...>",
	Short: "Filter the network with a natural-language question",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := open(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.app.Close(ctx)

		q, err := s.app.Engine.Query(ctx, s.graphID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return printJSON(cmd, q)
	},
}

var communitiesCmd = &cobra.Command{
	Use:   "communities <contacts.csv>",
	Short: "List detected communities, named by the configured LLM when available",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := open(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.app.Close(ctx)

		out, err := s.app.Engine.Communities(ctx, s.graphID, true)
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&topN, "top", 10, "Rows per leaderboard")
	rootCmd.AddCommand(analyzeCmd, pathCmd, queryCmd, communitiesCmd)
}
