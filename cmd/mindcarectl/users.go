package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	// create
	var userID, email, name, region string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || email == "" {
				return fmt.Errorf("--userId and --email required")
			}
			payload := map[string]interface{}{"userId": userID, "email": email}
			if name != "" {
				payload["displayName"] = name
			}
			if region != "" {
				payload["region"] = region
			}
			req := client.R().SetBody(payload)
			return run(req, http.MethodPost, "/api/users")
		},
	}
	createCmd.Flags().StringVarP(&userID, "userId", "u", "", "UserID (required)")
	createCmd.Flags().StringVarP(&email, "email", "e", "", "User email (required)")
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	createCmd.Flags().StringVarP(&region, "region", "r", "", "Region code for crisis resources")
	_ = createCmd.MarkFlagRequired("userId")
	_ = createCmd.MarkFlagRequired("email")
	usersCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(client.R(), http.MethodGet, "/api/users/"+args[0])
		},
	}
	usersCmd.AddCommand(getCmd)

	rootCmd.AddCommand(usersCmd)
}
