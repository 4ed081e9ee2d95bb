package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warungbuyogi/storefront/internal/cart"
	"github.com/warungbuyogi/storefront/internal/catalog"
	"github.com/warungbuyogi/storefront/internal/checkout"
	"github.com/warungbuyogi/storefront/internal/config"
	"github.com/warungbuyogi/storefront/internal/httpx"
	kafkax "github.com/warungbuyogi/storefront/internal/kafka"
	"github.com/warungbuyogi/storefront/internal/orders"
	"github.com/warungbuyogi/storefront/internal/postgres"
	"github.com/warungbuyogi/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: order placed & status changed (dua topic berbeda)
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024)
	pStatus.Start(ctx)

	// Repos & handlers
	catalogRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	kv := cart.NewRedisStorage(rdb)

	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Catalog: catalogRepo}).Register(router)
	(&httpx.CartHandler{KV: kv, Catalog: catalogRepo}).Register(router)
	(&httpx.CheckoutHandler{
		KV: kv,
		Seq: &checkout.Sequencer{
			Orders:         orderRepo,
			StoreName:      cfg.StoreName,
			WhatsAppNumber: cfg.WhatsAppNumber,
		},
		Producer: pPlaced,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}).Register(router)
	(&httpx.AdminHandler{
		Catalog:  catalogRepo,
		Orders:   orderRepo,
		Producer: pStatus,
		Redis:    rdb,
		Token:    cfg.AdminToken,
		Service:  cfg.ServiceName,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close() // tutup inbox -> flush & close writer
	pStatus.Close()
	cancel() // stop producer loop
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
}
