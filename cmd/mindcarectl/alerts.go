package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	alertsCmd := &cobra.Command{Use: "alerts", Short: "Emergency alert triage operations"}

	// list
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.R()
			if limit > 0 {
				req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
			}
			return run(req, http.MethodGet, "/api/alert-tracking")
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum alerts to return (default 200)")
	alertsCmd.AddCommand(listCmd)

	// status
	statusCmd := &cobra.Command{
		Use:   "status ALERT_ID STATUS",
		Short: "Advance an alert's triage status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.R().SetBody(map[string]string{"id": args[0], "status": args[1]})
			return run(req, http.MethodPatch, "/api/alert-tracking")
		},
	}
	alertsCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(alertsCmd)
}
