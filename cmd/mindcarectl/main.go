package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	apiFlag string
	client  *resty.Client
	rootCmd = &cobra.Command{
		Use:   "mindcarectl",
		Short: "CLI client for the mindcare server REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Mindcare server base URL")

	cobra.OnInitialize(func() {
		client = resty.New().
			SetBaseURL(apiFlag).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes a prepared request and prints the response body, failing on
// non-2xx statuses.
func run(req *resty.Request, method, url string) error {
	resp, err := req.Execute(method, url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	_, _ = fmt.Fprintln(os.Stdout, resp.String())
	return nil
}
