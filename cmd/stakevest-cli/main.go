package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stakevest/cmd/internal/passphrase"
	"stakevest/crypto"
	"stakevest/rpc"
)

const (
	programName    = "stakevest-cli"
	rpcURLEnv      = "STAKEVEST_RPC_URL"
	rpcSecretEnv   = "STAKEVEST_RPC_SECRET"
	defaultRPCURL  = "http://127.0.0.1:8645/rpc"
	defaultAuthTTL = 5 * time.Minute
)

type globalOptions struct {
	endpoint string
	as       string
	issuer   string
	audience string
	secret   *passphrase.Source
}

func defaultEndpoint() string {
	if v := strings.TrimSpace(os.Getenv(rpcURLEnv)); v != "" {
		return v
	}
	return defaultRPCURL
}

func (o *globalOptions) authConfig() (rpc.AuthConfig, error) {
	secret, err := o.secret.Get()
	if err != nil {
		return rpc.AuthConfig{}, err
	}
	return rpc.AuthConfig{HMACSecret: secret, Issuer: o.issuer, Audience: o.audience}, nil
}

// client returns an RPC client. Calls made with --as are signed for that
// address.
func (o *globalOptions) client() (*client, error) {
	if strings.TrimSpace(o.as) == "" {
		return newClient(o.endpoint, ""), nil
	}
	caller, err := crypto.DecodeAddress(strings.TrimSpace(o.as))
	if err != nil {
		return nil, fmt.Errorf("--as: %w", err)
	}
	cfg, err := o.authConfig()
	if err != nil {
		return nil, err
	}
	bearer, err := rpc.IssueToken(cfg, caller, defaultAuthTTL)
	if err != nil {
		return nil, err
	}
	return newClient(o.endpoint, bearer), nil
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{
		secret: passphrase.NewSource(rpcSecretEnv, "Enter RPC signing secret: "),
	}
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Interact with a stakevest node over JSON-RPC",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.endpoint, "rpc", defaultEndpoint(), "JSON-RPC endpoint (env "+rpcURLEnv+")")
	rootCmd.PersistentFlags().StringVar(&opts.as, "as", "", "sign calls for this address (secret from env "+rpcSecretEnv+" or prompt)")
	rootCmd.PersistentFlags().StringVar(&opts.issuer, "issuer", "", "token issuer claim")
	rootCmd.PersistentFlags().StringVar(&opts.audience, "audience", "", "token audience claim")

	rootCmd.AddCommand(
		callCommand(opts),
		tokenCommand(opts),
		balanceCommand(opts),
		transferCommand(opts),
		mintCommand(opts),
		grantMinterCommand(opts),
		poolsCommand(opts),
		pendingCommand(opts),
		depositCommand(opts),
		withdrawCommand(opts),
		claimCommand(opts),
		compoundCommand(opts),
		summaryCommand(opts),
		claimVestedCommand(opts),
		eventsCommand(opts),
	)
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
