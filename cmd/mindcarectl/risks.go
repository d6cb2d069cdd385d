package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	risksCmd := &cobra.Command{Use: "risks", Short: "Risk record operations"}

	// record
	var userID, level, riskType, indicator, action string
	var score float64
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record a risk signal for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"userId":    userID,
				"riskLevel": level,
				"riskType":  riskType,
			}
			if cmd.Flags().Changed("score") {
				payload["riskScore"] = score
			}
			if indicator != "" {
				payload["indicator"] = indicator
			}
			if action != "" {
				payload["actionTaken"] = action
			}
			req := client.R().SetBody(payload)
			return run(req, http.MethodPost, "/api/risks")
		},
	}
	recordCmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	recordCmd.Flags().StringVarP(&level, "level", "L", "", "Risk level (required)")
	recordCmd.Flags().StringVarP(&riskType, "type", "t", "", "Risk type (required)")
	recordCmd.Flags().Float64VarP(&score, "score", "s", 1, "Numeric risk score")
	recordCmd.Flags().StringVarP(&indicator, "indicator", "i", "", "Triggering signal description")
	recordCmd.Flags().StringVarP(&action, "action", "A", "", "Immediate action taken")
	_ = recordCmd.MarkFlagRequired("user")
	_ = recordCmd.MarkFlagRequired("level")
	_ = recordCmd.MarkFlagRequired("type")
	risksCmd.AddCommand(recordCmd)

	// list
	var limit int
	listCmd := &cobra.Command{
		Use:   "list USER_ID",
		Short: "List recent risk records for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.R().SetQueryParam("userId", args[0])
			if limit > 0 {
				req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
			}
			return run(req, http.MethodGet, "/api/risks")
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum records to return (default 10)")
	risksCmd.AddCommand(listCmd)

	rootCmd.AddCommand(risksCmd)
}
