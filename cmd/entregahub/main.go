package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/config"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/engine"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/livetrack"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/locator/mqttgps"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/messaging"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/notify/zapgateway"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/routing/maplink"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "entregahub.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("entregahub", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("entregahub: database open (%s)", cfg.Database.Driver)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	var redisStore *livetrack.RedisStore
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("entregahub: redis not available (%v), serving live data from SQL", err)
	} else {
		log.Printf("entregahub: redis connected (%s)", cfg.Redis.Address)
		redisStore = livetrack.NewRedisStore(redisClient)
	}
	cancel()
	defer redisClient.Close()

	live := livetrack.NewManager(db, redisStore)

	// GPS feed from driver phones
	gps := mqttgps.NewClient(&cfg.Locator)
	if err := gps.Connect(); err != nil {
		log.Printf("entregahub: gps broker not available (%v)", err)
	} else {
		log.Printf("entregahub: gps broker connected (%s)", cfg.Locator.Broker)
	}
	defer gps.Close()

	// Customer messaging gateway
	transport := zapgateway.New(cfg.Notify.BaseURL, cfg.Notify.APIKey, cfg.Notify.Timeout)
	if err := transport.Ping(); err == nil {
		log.Printf("entregahub: notify gateway connected (%s)", cfg.Notify.BaseURL)
	} else {
		log.Printf("entregahub: notify gateway not available (%v)", err)
	}

	// Route planner
	routes := maplink.New(cfg.Routing.BaseURL, cfg.Routing.APIKey, cfg.Routing.Timeout)
	if err := routes.Ping(); err == nil {
		log.Printf("entregahub: route planner connected (%s)", cfg.Routing.BaseURL)
	} else {
		log.Printf("entregahub: route planner not available (%v)", err)
	}

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("entregahub: messaging connect failed (%v)", err)
	} else {
		log.Printf("entregahub: messaging connected (kafka)")
	}
	defer msgClient.Close()

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:     cfg,
		ConfigPath:    *configPath,
		DB:            db,
		Live:          live,
		MsgClient:     msgClient,
		GPS:           gps,
		Transport:     transport,
		RouteProvider: routes,
	})
	eng.Start()
	defer eng.Stop()

	// Web server
	handler, stopWeb := www.NewRouter(eng)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("entregahub: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("entregahub: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("entregahub: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("entregahub: stopped")
}
