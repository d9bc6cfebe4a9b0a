// Package main is the credvault operations CLI: vendor catalog inspection
// and credential lifecycle management against a live deployment. The
// end-user HTTP surface lives in the platform backend, not here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/anikdutta/credvault/internal/cache"
	"github.com/anikdutta/credvault/internal/config"
	"github.com/anikdutta/credvault/internal/envelope"
	"github.com/anikdutta/credvault/internal/probe"
	"github.com/anikdutta/credvault/internal/store"
	"github.com/anikdutta/credvault/internal/vault"
	"github.com/anikdutta/credvault/pkg/keyformat"
	"github.com/google/uuid"
)

const usage = `usage: vaultctl <command> [flags]

commands:
  vendors                 list active vendors
  services  -vendor       list active services under a vendor
  list      -user         list a user's stored credentials (metadata only)
  create    -user -vendor [-service] [-name] -key
                          validate, encrypt, and store a credential
  delete    -user -id     hard-delete a credential
  test      -user -id     decrypt and live-test a credential against the vendor
`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "vaultctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}
	cmd, cmdArgs := args[0], args[1:]
	if !knownCommands[cmd] {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	// Fail fast on invalid config: a missing or weak master key must
	// never get as far as touching a record.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	svc := vault.NewService(
		store.NewPostgresStore(pool),
		envelope.NewCodec(cfg.Vault.MasterKey),
		keyformat.NewValidator(),
		probe.DefaultRegistry(cfg.Probe.Timeout),
		redisCache,
	)

	switch cmd {
	case "vendors":
		return cmdVendors(ctx, svc)
	case "services":
		return cmdServices(ctx, svc, cmdArgs)
	case "list":
		return cmdList(ctx, svc, cmdArgs)
	case "create":
		return cmdCreate(ctx, svc, cmdArgs)
	case "delete":
		return cmdDelete(ctx, svc, cmdArgs)
	default: // "test", the only remaining known command
		return cmdTest(ctx, svc, cmdArgs)
	}
}

var knownCommands = map[string]bool{
	"vendors":  true,
	"services": true,
	"list":     true,
	"create":   true,
	"delete":   true,
	"test":     true,
}

func cmdVendors(ctx context.Context, svc *vault.Service) error {
	vendors, err := svc.ListVendors(ctx)
	if err != nil {
		return err
	}
	return printJSON(vendors)
}

func cmdServices(ctx context.Context, svc *vault.Service, args []string) error {
	fs := flag.NewFlagSet("services", flag.ContinueOnError)
	vendorID := fs.String("vendor", "", "vendor id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *vendorID == "" {
		return fmt.Errorf("-vendor is required")
	}

	services, err := svc.ListVendorServices(ctx, *vendorID)
	if err != nil {
		return err
	}
	return printJSON(services)
}

func cmdList(ctx context.Context, svc *vault.Service, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("-user is required")
	}

	keys, err := svc.ListUserKeys(ctx, *userID)
	if err != nil {
		return err
	}
	return printJSON(keys)
}

func cmdCreate(ctx context.Context, svc *vault.Service, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	vendorID := fs.String("vendor", "", "vendor id")
	serviceID := fs.String("service", "", "vendor service id (optional)")
	name := fs.String("name", "", "display name (optional)")
	key := fs.String("key", "", "plaintext credential")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *vendorID == "" || *key == "" {
		return fmt.Errorf("-user, -vendor, and -key are required")
	}

	params := vault.CreateKeyParams{
		UserID:   *userID,
		VendorID: *vendorID,
		Key:      *key,
	}
	if *serviceID != "" {
		params.ServiceID = serviceID
	}
	if *name != "" {
		params.DisplayName = name
	}

	meta, err := svc.CreateKey(ctx, params)
	if err != nil {
		return err
	}
	return printJSON(meta)
}

func cmdDelete(ctx context.Context, svc *vault.Service, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	id := fs.String("id", "", "credential record id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *id == "" {
		return fmt.Errorf("-user and -id are required")
	}

	keyID, err := uuid.Parse(*id)
	if err != nil {
		return fmt.Errorf("invalid -id: %w", err)
	}

	if err := svc.DeleteKey(ctx, *userID, keyID); err != nil {
		return err
	}
	fmt.Println("deleted", keyID)
	return nil
}

func cmdTest(ctx context.Context, svc *vault.Service, args []string) error {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	id := fs.String("id", "", "credential record id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" || *id == "" {
		return fmt.Errorf("-user and -id are required")
	}

	keyID, err := uuid.Parse(*id)
	if err != nil {
		return fmt.Errorf("invalid -id: %w", err)
	}

	result, err := svc.TestKey(ctx, *userID, keyID)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
