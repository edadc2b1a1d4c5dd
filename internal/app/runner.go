package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/restakehq/restake-agent/internal/actions"
	"github.com/restakehq/restake-agent/internal/chain"
	"github.com/restakehq/restake-agent/internal/chain/signer"
	"github.com/restakehq/restake-agent/internal/config"
	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/httpx"
	"github.com/restakehq/restake-agent/internal/journal"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/out"
	"github.com/restakehq/restake-agent/internal/policy"
	"github.com/restakehq/restake-agent/internal/providers"
	"github.com/restakehq/restake-agent/internal/providers/explorer"
	"github.com/restakehq/restake-agent/internal/registry"
	"github.com/restakehq/restake-agent/internal/schema"
	"github.com/restakehq/restake-agent/internal/version"
)

const helpReply = "I can help you with:\n" +
	"1. Check TVL by asking 'What's the TVL of EigenLayer?'\n" +
	"2. List stakers by saying 'list stakers'\n" +
	"3. Check operator status by providing their address\n" +
	"4. Deposit, withdraw or complete withdrawals ('deposit 0.5 stETH', 'withdraw 0.1', 'complete withdrawal')"

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	log         zerolog.Logger
	lastCommand string

	explorer *explorer.Client
	journal  *journal.Store
	ledger   chain.Ledger
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r}
	root := state.newRootCommand()
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	err = normalizeRunError(err)
	state.close()
	if err == nil {
		return 0
	}

	state.renderError(err)
	return agenterr.ExitCode(err)
}

func (s *runtimeState) close() {
	if s.journal != nil {
		_ = s.journal.Close()
	}
	if s.ledger != nil {
		s.ledger.Close()
	}
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Conversational EigenLayer restaking agent",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				if agenterr.CodeOf(err) == agenterr.CodeConfig {
					return err
				}
				return agenterr.Wrap(agenterr.CodeConfig, "load configuration", err)
			}
			s.settings = settings
			s.lastCommand = trimRootPath(cmd.CommandPath())
			s.log = newLogger(s.runner.stderr)

			httpClient := httpx.New(settings.Timeout)
			s.explorer = explorer.New(httpClient, settings.ExplorerBaseURL, s.log).
				WithRetry(settings.RetryAttempts, settings.RetryDelay)
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return agenterr.Wrap(agenterr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output a JSON envelope")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain reply text (default)")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "Remote request timeout")
	cmd.PersistentFlags().IntVar(&s.flags.Retries, "retries", -1, "Retry attempts for remote index reads")
	cmd.PersistentFlags().StringVar(&s.flags.EnableActions, "enable-actions", "", "Allowlist executable actions (comma-separated)")
	cmd.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "Ethereum JSON-RPC endpoint")
	cmd.PersistentFlags().BoolVar(&s.flags.DryRun, "dry-run", false, "Simulate transactions without broadcasting")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newAskCommand())
	cmd.AddCommand(s.newHistoryCommand())
	cmd.AddCommand(newSchemaCommand(cmd))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newSchemaCommand(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = strings.Join(args, " ")
			}
			data, err := schema.Build(root, path)
			if err != nil {
				return agenterr.Wrap(agenterr.CodeUsage, "build schema", err)
			}
			buf, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return agenterr.Wrap(agenterr.CodeInternal, "encode schema", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(buf))
			return err
		},
	}
}

func (s *runtimeState) newAskCommand() *cobra.Command {
	var userID, roomID string
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message to the agent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.openJournal(); err != nil {
				return err
			}
			msg := message.New(userID, roomID, version.CLIName, strings.Join(args, " "))
			reply := s.dispatch(cmd.Context(), msg)
			return s.emitReplies("ask", []message.Reply{reply})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local-user", "User id recorded with the conversation")
	cmd.Flags().StringVar(&roomID, "room", "local-room", "Conversation id the reply is recorded under")
	return cmd
}

// dispatch routes the message: actions first (most specific trigger first,
// so "complete withdrawal 0x..." never falls into the plain withdraw
// matcher), then the read-only providers, then the help reply.
func (s *runtimeState) dispatch(ctx context.Context, msg message.Message) message.Reply {
	for _, action := range s.newActions() {
		matched, params := action.Match(msg)
		if !matched {
			continue
		}
		if err := policy.CheckActionAllowed(s.settings.EnableActions, action.Name()); err != nil {
			return message.Reply{Text: err.Error(), Action: action.Name()}
		}
		return action.Handle(ctx, msg, params)
	}

	for _, provider := range s.newProviders() {
		if reply := provider.Respond(ctx, msg); reply != nil {
			return *reply
		}
	}
	return message.Reply{Text: helpReply}
}

func (s *runtimeState) newActions() []actions.Action {
	ledger := s.openLedger(true)
	return []actions.Action{
		actions.NewCompleteWithdrawal(ledger, s.journal, s.log),
		actions.NewQueueWithdrawal(ledger, s.journal, s.log),
		actions.NewDeposit(ledger, s.journal, s.log),
	}
}

func (s *runtimeState) newProviders() []providers.Provider {
	return []providers.Provider{
		providers.NewStaker(s.explorer, s.openLedger(false), s.log),
		providers.NewTVL(s.explorer, s.log),
		providers.NewOperator(s.explorer, s.log),
		providers.NewStakersList(s.explorer, s.log),
	}
}

// openLedger dials the RPC endpoint once. withSigner loads the local key when
// one is configured; the ledger still works for reads without it. A failed
// dial returns the nil-ledger fallback so read-only queries keep working.
func (s *runtimeState) openLedger(withSigner bool) chain.Ledger {
	if s.ledger != nil {
		return s.ledger
	}

	rpcURL, err := registry.ResolveRPCURL(s.settings.RPCURL, s.settings.ChainID)
	if err != nil {
		s.log.Warn().Err(err).Msg("no rpc endpoint resolved")
		return nil
	}

	var txSigner signer.Signer
	if withSigner && s.settings.WalletConfigured {
		local, err := signer.NewLocalSignerFromEnv()
		if err != nil {
			s.log.Warn().Err(err).Msg("signer setup failed, continuing without a wallet")
		} else {
			txSigner = local
		}
	}

	opts := chain.DefaultOptions()
	opts.DryRun = s.settings.DryRun
	opts.PollInterval = s.settings.PollInterval
	opts.ConfirmTimeout = s.settings.ConfirmTimeout

	client, err := chain.Dial(context.Background(), rpcURL, txSigner, opts, s.log)
	if err != nil {
		s.log.Warn().Err(err).Str("rpc_url", rpcURL).Msg("rpc dial failed")
		return nil
	}
	s.ledger = client
	return s.ledger
}

func (s *runtimeState) openJournal() error {
	if s.journal != nil {
		return nil
	}
	store, err := journal.Open(s.settings.JournalPath, s.settings.JournalLockPath)
	if err != nil {
		return agenterr.Wrap(agenterr.CodeInternal, "open journal", err)
	}
	s.journal = store
	return nil
}

func (s *runtimeState) newHistoryCommand() *cobra.Command {
	var roomID string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.openJournal(); err != nil {
				return err
			}
			entries, err := s.journal.Recent(roomID, limit)
			if err != nil {
				return agenterr.Wrap(agenterr.CodeInternal, "read journal", err)
			}
			replies := make([]message.Reply, 0, len(entries))
			for _, entry := range entries {
				replies = append(replies, message.Reply{
					Text:   fmt.Sprintf("%s [%s %s] %s", entry.CreatedAt.Format(time.RFC3339), entry.Action, entry.Status, entry.Text),
					Action: entry.Action,
					TxHash: entry.TxHash,
					Root:   entry.WithdrawalRoot,
				})
			}
			return s.emitReplies("history", replies)
		},
	}
	cmd.Flags().StringVar(&roomID, "room", "", "Only this conversation (default: all)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to list")
	return cmd
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) emitReplies(command string, replies []message.Reply) error {
	env := out.Envelope{
		Success: true,
		Replies: replies,
		Meta: out.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   command,
		},
	}
	return out.Render(s.runner.stdout, env, s.settings.OutputMode)
}

func (s *runtimeState) renderError(err error) {
	command := s.lastCommand
	if command == "" {
		command = version.CLIName
	}
	messageText := err.Error()
	if typed, ok := agenterr.As(err); ok {
		messageText = typed.Message
		if typed.Cause != nil {
			messageText = fmt.Sprintf("%s: %v", typed.Message, typed.Cause)
		}
	}

	mode := s.settings.OutputMode
	if mode == "" {
		mode = "plain"
	}
	env := out.Envelope{
		Success: false,
		Error: &out.ErrorBody{
			Code:    agenterr.ExitCode(err),
			Message: messageText,
		},
		Meta: out.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   command,
		},
	}
	_ = out.Render(s.runner.stderr, env, mode)
}

func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if v := os.Getenv("RESTAKE_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := agenterr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return agenterr.Wrap(agenterr.CodeUsage, "invalid command input", err)
	}
	return agenterr.Wrap(agenterr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func newRequestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
