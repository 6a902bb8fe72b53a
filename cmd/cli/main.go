package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"allowance-client/internal/config"
	"allowance-client/internal/domain"
	"allowance-client/internal/store"
	"allowance-client/internal/view"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	st, err := store.New(ctx, cfg, store.Options{Logger: logger})
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	app := &app{
		store:  st,
		reader: reader,
		out:    view.NewRenderer(os.Stdout, time.Local),
	}
	app.run(ctx)
}

// newLogger escribe en stderr para no mezclarse con los menus.
func newLogger(level string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

type app struct {
	store  *store.Store
	reader *bufio.Reader
	out    *view.Renderer
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	line, err := a.reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Println()
		os.Exit(0)
	}
	return strings.TrimSpace(line)
}

func (a *app) fail(err error, fallback string) {
	a.out.Failure(err, fallback)
}

func (a *app) run(ctx context.Context) {
	for {
		fmt.Println()
		fmt.Println("===== Allowance =====")
		a.out.Session(a.store.Session().Session())
		if a.store.Session().IsAuthenticated() {
			if !a.dashboardMenu(ctx) {
				return
			}
			continue
		}
		if !a.landingMenu(ctx) {
			return
		}
	}
}

func (a *app) landingMenu(ctx context.Context) bool {
	fmt.Println("[1] Log in")
	fmt.Println("[2] Sign up")
	fmt.Println("[3] Exchange rates")
	fmt.Println("[4] Promotions")
	fmt.Println("[5] Quit")
	switch a.prompt("Choose an option: ") {
	case "1":
		a.loginFlow(ctx)
	case "2":
		a.signupFlow(ctx)
	case "3":
		a.ratesFlow(ctx)
	case "4":
		a.adsFlow(ctx)
	case "5", "q", "Q":
		return false
	default:
		fmt.Println("Invalid option.")
	}
	return true
}

func (a *app) dashboardMenu(ctx context.Context) bool {
	fmt.Println("[1] Exchange rates")
	fmt.Println("[2] Promotions")
	fmt.Println("[3] Send money")
	fmt.Println("[4] Transaction history")
	fmt.Println("[5] Transaction detail")
	fmt.Println("[6] Log out")
	fmt.Println("[7] Quit")
	switch a.prompt("Choose an option: ") {
	case "1":
		a.ratesFlow(ctx)
	case "2":
		a.adsFlow(ctx)
	case "3":
		a.transferFlow(ctx)
	case "4":
		a.historyFlow(ctx)
	case "5":
		a.detailFlow(ctx)
	case "6":
		if err := a.store.Logout(ctx); err != nil {
			a.fail(err, "Could not clear the saved session.")
		}
		fmt.Println("Logged out.")
	case "7", "q", "Q":
		return false
	default:
		fmt.Println("Invalid option.")
	}
	return true
}

func (a *app) loginFlow(ctx context.Context) {
	in := domain.LoginInput{
		Username: a.prompt("Username: "),
		Password: a.prompt("Password: "),
	}
	sess, err := a.store.Login(ctx, in)
	if err != nil && !sess.IsAuthenticated {
		a.fail(err, "Login failed.")
		return
	}
	if err != nil {
		a.fail(err, "Session could not be saved.")
	}
	fmt.Println("Welcome back!")
}

func (a *app) signupFlow(ctx context.Context) {
	in := domain.RegisterInput{
		Username:        a.prompt("Username: "),
		Email:           a.prompt("Email: "),
		FirstName:       a.prompt("First name: "),
		LastName:        a.prompt("Last name: "),
		Password:        a.prompt("Password: "),
		PasswordConfirm: a.prompt("Confirm password: "),
	}
	sess, err := a.store.Register(ctx, in)
	if err != nil && !sess.IsAuthenticated {
		a.fail(err, "Registration failed.")
		return
	}
	if err != nil {
		a.fail(err, "Session could not be saved.")
	}
	fmt.Println("Account created.")
}

func (a *app) ratesFlow(ctx context.Context) {
	rates, err := a.store.Rates(ctx)
	if err != nil {
		a.fail(err, "Failed to load exchange rates.")
		return
	}
	a.out.Rates(rates)
}

func (a *app) adsFlow(ctx context.Context) {
	ads, err := a.store.Ads(ctx)
	if err != nil {
		a.fail(err, "Failed to load promotions.")
		return
	}
	a.out.Ads(ads)
}

// transferFlow calcula primero y solo envia si el usuario confirma.
func (a *app) transferFlow(ctx context.Context) {
	in := domain.TransferInput{
		AmountUSD:      domain.Amount(a.prompt("Amount (USD): ")),
		TargetCurrency: strings.ToUpper(a.prompt("Currency [GBP/ZAR]: ")),
		RecipientName:  a.prompt("Recipient name: "),
	}
	calc, err := a.store.Calculate(ctx, in)
	if err != nil {
		a.fail(err, "Calculation failed.")
		return
	}
	a.out.Calculation(calc)

	if !strings.EqualFold(a.prompt("Send this transfer? [y/N]: "), "y") {
		fmt.Println("Transfer cancelled.")
		return
	}
	tx, err := a.store.Send(ctx, in)
	if err != nil {
		a.fail(err, "Transfer failed.")
		return
	}
	a.out.Sent(tx)
}

func (a *app) historyFlow(ctx context.Context) {
	page := 1
	for {
		hist, err := a.store.History(ctx, page)
		if err != nil {
			a.fail(err, "Failed to load transactions.")
			return
		}
		a.out.History(hist, page)

		pager := view.Pager(hist, page)
		if !pager.Visible {
			return
		}
		switch strings.ToLower(a.prompt("[p] previous  [n] next  [b] back: ")) {
		case "p":
			page = pager.Move(false)
		case "n":
			page = pager.Move(true)
		default:
			return
		}
	}
}

func (a *app) detailFlow(ctx context.Context) {
	tx, err := a.store.Detail(ctx, a.prompt("Transaction id (see History): "))
	if err != nil {
		a.fail(err, "Failed to load transaction.")
		return
	}
	a.out.Transaction(tx)
}
