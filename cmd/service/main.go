package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/cherrizbox/socialverify/internal/account"
	"github.com/cherrizbox/socialverify/internal/cache"
	"github.com/cherrizbox/socialverify/internal/config"
	"github.com/cherrizbox/socialverify/internal/email"
	httpserver "github.com/cherrizbox/socialverify/internal/http"
	"github.com/cherrizbox/socialverify/internal/observability/logger"
	"github.com/cherrizbox/socialverify/internal/store"
	storeappwrite "github.com/cherrizbox/socialverify/internal/store/appwrite"
	storepg "github.com/cherrizbox/socialverify/internal/store/pg"
	"github.com/cherrizbox/socialverify/internal/verify"
)

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func mask(s string) string {
	if s == "" {
		return "NOT_SET"
	}
	return "***masked***"
}

func printConfigSummary(c *config.Config) {
	fmt.Printf(`CONFIG:
  app(env=%s, log_level=%s)
  server.addr=%s
  cors=%v

  storage.driver=%s
  appwrite(endpoint=%s, project=%s, key=%s, db=%s, collection=%s)
  postgres.dsn=%s

  cache.kind=%s
  redis.addr=%s db=%d prefix=%s

  verify(policy=%s, account_cache_ttl=%s)

  email(provider=%s, from=%s, to=%s, templates=%s)
  resend(base_url=%s, key=%s)
  smtp(host=%s, port=%d, user=%s, tls=%s, insecure=%t)
`,
		c.App.Env, c.App.LogLevel,
		c.Server.Addr, c.Server.CORSAllowedOrigins,
		c.Storage.Driver,
		c.Storage.Appwrite.Endpoint, c.Storage.Appwrite.ProjectID, mask(c.Storage.Appwrite.APIKey),
		c.Storage.Appwrite.DatabaseID, c.Storage.Appwrite.CollectionID,
		mask(c.Storage.Postgres.DSN),
		c.Cache.Kind, c.Cache.Redis.Addr, c.Cache.Redis.DB, c.Cache.Redis.Prefix,
		c.Verify.Policy, c.Verify.AccountCacheTTL,
		c.Email.Provider, c.Email.From, c.Email.To, c.Email.TemplatesDir,
		c.Email.Resend.BaseURL, mask(c.Email.Resend.APIKey),
		c.Email.SMTP.Host, c.Email.SMTP.Port, c.Email.SMTP.Username, c.Email.SMTP.TLS, c.Email.SMTP.InsecureSkipVerify,
	)
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvOnly    = flag.Bool("env", false, "usar SOLO env (y .env si se pasa -env-file)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime config efectiva y termina")
	)
	flag.Parse()

	if *flagEnvFile != "" && (fileExists(*flagEnvFile) || *flagEnvOnly) {
		_ = godotenv.Load(*flagEnvFile)
	}

	var cfg *config.Config
	var err error
	if *flagEnvOnly {
		cfg, err = config.FromEnv()
	} else {
		cfgPath := *flagConfigPath
		if cfgPath == "" {
			cfgPath = os.Getenv("CONFIG_PATH")
		}
		if cfgPath == "" {
			if fileExists("configs/config.yaml") {
				cfgPath = "configs/config.yaml"
			} else {
				cfgPath = "configs/config.example.yaml"
			}
		}
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *flagPrint {
		printConfigSummary(cfg)
		return
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "socialverify",
	})
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── Cache ───
	cc, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: config.Duration(cfg.Cache.Memory.DefaultTTL, 2*time.Minute),
	})
	if err != nil {
		log.Fatal("cache", logger.Err(err))
	}
	defer cc.Close()

	// ─── Storage + cuentas, según driver ───
	var (
		profiles  store.Profiles
		accounts  account.Service
		storePing func(ctx context.Context) error
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := storepg.Open(ctx, cfg.Storage.Postgres.DSN,
			int32(cfg.Storage.Postgres.MaxOpenConns),
			int32(cfg.Storage.Postgres.MaxIdleConns),
			config.Duration(cfg.Storage.Postgres.ConnMaxLifetime, 30*time.Minute))
		if err != nil {
			log.Fatal("store open", logger.Err(err))
		}
		defer pgStore.Close()
		profiles = pgStore
		accounts = pgStore
		storePing = pgStore.Ping
	default: // appwrite
		aw := cfg.Storage.Appwrite
		timeout := config.Duration(aw.Timeout, 10*time.Second)
		profiles = storeappwrite.New(aw.Endpoint, aw.ProjectID, aw.APIKey, aw.DatabaseID, aw.CollectionID, timeout)
		accounts = account.NewAppwriteClient(aw.Endpoint, aw.ProjectID, aw.APIKey, timeout)
	}
	accounts = account.NewCached(accounts, cc, config.Duration(cfg.Verify.AccountCacheTTL, time.Minute))

	// ─── Email ───
	var sender email.Sender
	switch cfg.Email.Provider {
	case "smtp":
		s := email.NewSMTPSender(cfg.Email.SMTP.Host, cfg.Email.SMTP.Port,
			cfg.Email.SMTP.Username, cfg.Email.SMTP.Password)
		if cfg.Email.SMTP.TLS != "" {
			s.TLSMode = cfg.Email.SMTP.TLS
		}
		s.InsecureSkipVerify = cfg.Email.SMTP.InsecureSkipVerify
		sender = s
	default: // resend
		sender = email.NewResendSender(cfg.Email.Resend.APIKey, cfg.Email.Resend.BaseURL,
			config.Duration(cfg.Email.Resend.Timeout, 15*time.Second))
	}

	templates := email.DefaultTemplates()
	if cfg.Email.TemplatesDir != "" {
		templates, err = email.LoadTemplates(cfg.Email.TemplatesDir)
		if err != nil {
			log.Fatal("templates", logger.Err(err))
		}
	}

	// ─── Métricas ───
	metricsHandler, err := httpserver.RegisterMetrics(nil)
	if err != nil {
		log.Fatal("metrics", logger.Err(err))
	}
	provider := cfg.Email.Provider
	if provider == "" {
		provider = "resend"
	}

	dispatcher := &verify.Dispatcher{
		Accounts:     accounts,
		Profiles:     profiles,
		Sender:       sender,
		Templates:    templates,
		Policy:       verify.Policy(cfg.Verify.Policy),
		From:         cfg.Email.From,
		To:           cfg.Email.To,
		OnCodeIssued: httpserver.RecordCodeIssued,
		OnEmailSent:  func(ok bool) { httpserver.RecordEmailSent(provider, ok) },
	}

	handler := httpserver.NewRouter(httpserver.RouterConfig{
		Handler:            &httpserver.Handler{Dispatcher: dispatcher, Cache: cc, StorePing: storePing},
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})
	srv := httpserver.NewServer(cfg.Server.Addr, handler)

	log.Info("service up",
		logger.String("addr", cfg.Server.Addr),
		logger.String("driver", cfg.Storage.Driver),
		logger.Policy(cfg.Verify.Policy),
		logger.Provider(provider),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return httpserver.Shutdown(srv, 10*time.Second)
	})
	if err := g.Wait(); err != nil {
		log.Fatal("http", logger.Err(err))
	}
}
