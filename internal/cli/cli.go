// Package cli maps command-line invocations onto the portal services.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/msomdec/bank-portal/internal/domain"
	"github.com/msomdec/bank-portal/internal/service"
	"github.com/shopspring/decimal"
)

// ErrUsage is returned for unknown commands or malformed flags.
var ErrUsage = errors.New("usage error")

// App bundles the services a command can reach.
type App struct {
	Auth     *service.AuthService
	Banking  *service.BankingService
	Sessions *service.SessionManager
}

type command struct {
	summary string
	run     func(ctx context.Context, app *App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"signup":         {"create a user and sign in", runSignup},
	"login":          {"sign in with email and password", runLogin},
	"logout":         {"end the current session", runLogout},
	"whoami":         {"show the signed-in user", runWhoami},
	"create-account": {"open a checking, savings or business account", runCreateAccount},
	"deposit":        {"deposit money into an account", runDeposit},
	"withdraw":       {"withdraw money from an account", runWithdraw},
	"accounts":       {"list accounts", runAccounts},
	"history":        {"list transactions, newest first", runHistory},
	"summary":        {"show dashboard totals", runSummary},
}

var commandOrder = []string{
	"signup", "login", "logout", "whoami", "create-account",
	"deposit", "withdraw", "accounts", "history", "summary",
}

// Run executes the command named by args[0].
func Run(ctx context.Context, app *App, args []string, out io.Writer) error {
	if len(args) == 0 {
		Usage(out)
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		Usage(out)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd.run(ctx, app, args[1:], out)
}

// Usage prints the list of commands.
func Usage(out io.Writer) {
	fmt.Fprintln(out, "usage: bank-portal <command> [flags]")
	fmt.Fprintln(out)
	for _, name := range commandOrder {
		fmt.Fprintf(out, "  %-15s %s\n", name, commands[name].summary)
	}
}

func parseFlags(fs *flag.FlagSet, args []string, out io.Writer) error {
	fs.SetOutput(out)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func parseAmount(flagName, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: --%s must be a number", domain.ErrInvalidAmount, flagName)
	}
	return d, nil
}

func runSignup(ctx context.Context, app *App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (at least 6 characters)")
	confirm := fs.String("confirm", "", "password confirmation")
	if err := parseFlags(fs, args, out); err != nil {
		return err
	}

	p, err := app.Auth.Register(ctx, *name, *email, *password, *confirm)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s! You are signed in as %s.\n", p.Name, p.Email)
	return nil
}

func runLogin(ctx context.Context, app *App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := parseFlags(fs, args, out); err != nil {
		return err
	}

	p, err := app.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s.\n", p.Name)
	return nil
}

func runLogout(ctx context.Context, app *App, args []string, out io.Writer) error {
	if err := app.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Signed out.")
	return nil
}

func runWhoami(ctx context.Context, app *App, args []string, out io.Writer) error {
	p, ok := app.Sessions.CurrentUser()
	if !ok {
		return domain.ErrUnauthenticated
	}
	fmt.Fprintf(out, "%s <%s> (member since %s)\n", p.Name, p.Email, p.CreatedAt.Format("Jan 2, 2006"))
	return nil
}

func runCreateAccount(ctx context.Context, app *App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create-account", flag.ContinueOnError)
	name := fs.String("name", "", "account name")
	accountType := fs.String("type", "", "checking, savings or business")
	initial := fs.String("initial", "0", "initial deposit")
	if err := parseFlags(fs, args, out); err != nil {
		return err
	}
	amount, err := parseAmount("initial", *initial)
	if err != nil {
		return err
	}

	account, _, err := app.Banking.CreateAccount(ctx, *name, domain.AccountType(strings.ToLower(*accountType)), amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Your %s \"%s\" has been created.\n", strings.ToLower(account.Type.DisplayName()), account.Name)
	fmt.Fprintf(out, "  id      %s\n  number  %s\n  balance %s\n", account.ID, account.MaskedNumber(), FormatUSD(account.Balance))
	return nil
}

func runDeposit(ctx context.Context, app *App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("deposit", flag.ContinueOnError)
	accountID := fs.String("account", "", "account id")
	raw := fs.String("amount", "", "amount to deposit")
	description := fs.String("description", "", "optional description")
	if err := parseFlags(fs, args, out); err != nil {
		return err
	}
	amount, err := parseAmount("amount", *raw)
	if err != nil {
		return err
	}

	txn, err := app.Banking.Deposit(ctx, *accountID, amount, *description)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s has been deposited to your account.\n", FormatUSD(txn.Amount))
	return nil
}

func runWithdraw(ctx context.Context, app *App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("withdraw", flag.ContinueOnError)
	accountID := fs.String("account", "", "account id")
	raw := fs.String("amount", "", "amount to withdraw")
	description := fs.String("description", "", "optional description")
	if err := parseFlags(fs, args, out); err != nil {
		return err
	}
	amount, err := parseAmount("amount", *raw)
	if err != nil {
		return err
	}

	txn, err := app.Banking.Withdraw(ctx, *accountID, amount, *description)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s has been withdrawn from your account.\n", FormatUSD(txn.Amount.Neg()))
	return nil
}

func runAccounts(ctx context.Context, app *App, args []string, out io.Writer) error {
	accounts, err := app.Banking.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No accounts yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tNUMBER\tBALANCE")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type.DisplayName(), a.MaskedNumber(), FormatUSD(a.Balance))
	}
	return tw.Flush()
}

func runHistory(ctx context.Context, app *App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	accountID := fs.String("account", "", "only this account")
	txnType := fs.String("type", "", "only deposit, withdrawal or transfer")
	if err := parseFlags(fs, args, out); err != nil {
		return err
	}
	filter := domain.TransactionFilter{
		AccountID: *accountID,
		Type:      domain.TransactionType(strings.ToLower(*txnType)),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidInput, *txnType)
	}

	txns, err := app.Banking.ListTransactions(ctx, filter)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Fprintln(out, "No transactions found.")
		return nil
	}
	return writeTransactions(out, txns)
}

func runSummary(ctx context.Context, app *App, args []string, out io.Writer) error {
	s, err := app.Banking.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-23s%s\n", "Total balance:", FormatUSD(s.TotalBalance))
	fmt.Fprintf(out, "%-23s%d\n", "Active accounts:", s.ActiveAccounts)
	fmt.Fprintf(out, "%-23s%d\n", "Transactions (month):", s.MonthlyTransactions)
	if len(s.RecentActivity) == 0 {
		fmt.Fprintln(out, "\nYour transactions will appear here.")
		return nil
	}
	fmt.Fprintln(out, "\nRecent activity:")
	return writeTransactions(out, s.RecentActivity)
}

func writeTransactions(out io.Writer, txns []domain.Transaction) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tDESCRIPTION\tAMOUNT")
	for _, t := range txns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Date.Local().Format("Jan 2, 2006 15:04"), t.Type, t.Description, FormatSigned(t.Amount))
	}
	return tw.Flush()
}
