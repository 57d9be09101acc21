package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	client *client.Client
	asJSON bool
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SALESCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "salesctl",
		Short:         "Manage store sale items through store-proxy",
		Long:          "salesctl lists, searches, creates, updates and deletes sale items through store-proxy. When the backend is asleep it waits for it to wake up and replays the request.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.wire(cmd, v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("proxy-url", "http://localhost:8080", "base URL of store-proxy")
	flags.Duration("timeout", 90*time.Second, "timeout of a single HTTP request")
	flags.Duration("wake-interval", client.DefaultWakeInterval, "delay between health checks while the backend wakes up")
	flags.Int("wake-attempts", client.DefaultWakeMaxAttempts, "health checks before giving up on a sleeping backend")
	flags.Bool("json", false, "print JSON instead of text")
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(
		newHealthCmd(a),
		newItemsCmd(a),
		newSummaryCmd(a),
	)

	return rootCmd
}

func (a *app) wire(cmd *cobra.Command, v *viper.Viper) error {
	proxyURL := v.GetString("proxy-url")
	if proxyURL == "" {
		return fmt.Errorf("proxy URL is empty")
	}

	errOut := cmd.ErrOrStderr()
	a.asJSON = v.GetBool("json")
	a.client = client.New(proxyURL,
		client.WithHTTPClient(&http.Client{Timeout: v.GetDuration("timeout")}),
		client.WithWakerOptions(
			client.WithInterval(v.GetDuration("wake-interval")),
			client.WithMaxAttempts(v.GetInt("wake-attempts")),
			client.WithStateHook(func(_, to client.State) {
				switch to {
				case client.StateWaking:
					_, _ = fmt.Fprintln(errOut, noticeStyle.Render("Waking up the server... This may take up to 30-60 seconds."))
				case client.StateFailed:
					_, _ = fmt.Fprintln(errOut, noticeStyle.Render("The server did not wake up. Try again in a minute."))
				}
			}),
		),
	)

	return nil
}

func (a *app) printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
