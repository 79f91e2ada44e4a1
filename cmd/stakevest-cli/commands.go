package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stakevest/crypto"
	"stakevest/rpc"
)

func runCall(cmd *cobra.Command, opts *globalOptions, method string, params interface{}) error {
	c, err := opts.client()
	if err != nil {
		return err
	}
	result, err := c.call(cmd.Context(), method, params)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func callCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "call <method> [params-json]",
		Short: "Invoke any JSON-RPC method with a raw parameter object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params interface{}
			if len(args) == 2 {
				raw := json.RawMessage(strings.TrimSpace(args[1]))
				if !json.Valid(raw) {
					return fmt.Errorf("params must be a JSON object")
				}
				params = raw
			}
			return runCall(cmd, opts, args[0], params)
		},
	}
}

func tokenCommand(opts *globalOptions) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Print a bearer token signed for address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := crypto.DecodeAddress(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.authConfig()
			if err != nil {
				return err
			}
			signed, err := rpc.IssueToken(cfg, caller, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime (0 for no expiry)")
	return cmd
}

func balanceCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <token> <address>",
		Short: "Show a token balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "bank_balance", map[string]string{"token": args[0], "address": args[1]})
		},
	}
}

func transferCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <token> <to> <amount>",
		Short: "Send tokens from the caller (requires --as)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "bank_transfer", map[string]string{"token": args[0], "to": args[1], "amount": args[2]})
		},
	}
}

func mintCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mint <token> <to> <amount>",
		Short: "Mint tokens; the caller must hold the mint role (requires --as)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "bank_mint", map[string]string{"token": args[0], "to": args[1], "amount": args[2]})
		},
	}
}

func grantMinterCommand(opts *globalOptions) *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "grant-minter <token> <address>",
		Short: "Grant or revoke a token mint role, owner only (requires --as)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "bank_grantMinter", map[string]interface{}{
				"token": args[0], "minter": args[1], "allowed": !revoke,
			})
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "revoke the role instead of granting it")
	return cmd
}

func poolsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List reward pools in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCall(cmd, opts, "rewards_pools", nil)
		},
	}
}

func pendingCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending <token> <user>",
		Short: "Project a user's claimable reward in a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "rewards_pending", map[string]string{"token": args[0], "user": args[1]})
		},
	}
}

func depositCommand(opts *globalOptions) *cobra.Command {
	var fromCooldown bool
	cmd := &cobra.Command{
		Use:   "deposit <token> <amount>",
		Short: "Stake tokens into a pool (requires --as)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "rewards_deposit", map[string]interface{}{
				"token": args[0], "amount": args[1], "fromCooldown": fromCooldown,
			})
		},
	}
	cmd.Flags().BoolVar(&fromCooldown, "from-cooldown", false, "restake from the cooldown balance")
	return cmd
}

func withdrawCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <token> <amount>",
		Short: "Unstake tokens, subject to the pool cooldown (requires --as)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "rewards_withdraw", map[string]string{"token": args[0], "amount": args[1]})
		},
	}
}

func claimCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <token> <amount>",
		Short: "Claim up to amount of pending reward (requires --as)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "rewards_claim", map[string]string{"token": args[0], "amount": args[1]})
		},
	}
}

func compoundCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compound <token> <amount>",
		Short: "Restake pending reward into the base pool (requires --as)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "rewards_compound", map[string]string{"token": args[0], "amount": args[1]})
		},
	}
}

func summaryCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <user>",
		Short: "Show per-category vesting totals for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, "vesting_summary", map[string]string{"user": args[0]})
		},
	}
}

func claimVestedCommand(opts *globalOptions) *cobra.Command {
	var revertIfZero bool
	cmd := &cobra.Command{
		Use:   "claim-vested [category]",
		Short: "Claim vested tokens for one category, or all categories (requires --as)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runCall(cmd, opts, "vesting_claimAll", nil)
			}
			category, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category %q", args[0])
			}
			return runCall(cmd, opts, "vesting_claim", map[string]interface{}{
				"category": category, "revertIfZero": revertIfZero,
			})
		},
	}
	cmd.Flags().BoolVar(&revertIfZero, "revert-if-zero", false, "fail when nothing is claimable")
	return cmd
}

func eventsCommand(opts *globalOptions) *cobra.Command {
	var (
		eventType string
		address   string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List indexed events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCall(cmd, opts, "events_list", map[string]interface{}{
				"type": eventType, "address": address, "limit": limit,
			})
		},
	}
	cmd.Flags().StringVar(&eventType, "type", "", "event type, e.g. rewards.claimed")
	cmd.Flags().StringVar(&address, "address", "", "only events mentioning this address")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (server default when 0)")
	return cmd
}
