package main

import (
	"os"
	"time"

	"store-service/config"
	"store-service/internal/cache"
	"store-service/internal/database"
	"store-service/internal/handlers"
	"store-service/internal/logger"
	"store-service/internal/producer"
	"store-service/internal/repository"
	"store-service/internal/router"
	"store-service/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	// Kafka опционален: без брокера события просто не публикуются
	var events service.EventBus
	if cfg.Kafka.Enabled {
		p := producer.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()
		events = p
	}

	// Redis тоже опционален: nil-кэш означает чтение остатков из БД
	var stockCache service.StockCache
	if cfg.Redis.Enabled {
		c, err := cache.NewStockCache(
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
		if err != nil {
			log.Fatal("не удалось подключиться к Redis", zap.Error(err))
		}
		defer c.Close()
		stockCache = c
	}

	checkout := service.NewCheckoutService(repos, events, log,
		service.CheckoutOptions{CouponStrict: cfg.Orders.CouponStrict})
	orders := service.NewOrderService(repos, events, log)
	carts := service.NewCartService(repos)
	catalog := service.NewCatalogService(repos)
	inventory := service.NewInventoryService(repos, stockCache, log)
	accounts := service.NewAccountService(repos)

	r := router.Router(db, router.Handlers{
		Orders:   handlers.NewOrderHandler(checkout, orders, log),
		Carts:    handlers.NewCartHandler(carts, log),
		Catalog:  handlers.NewCatalogHandler(catalog, inventory, log),
		Accounts: handlers.NewAccountHandler(accounts, log),
	}, log)

	log.Info("store-service запускается",
		zap.String("addr", cfg.HTTPAddr),
		zap.Bool("kafka", cfg.Kafka.Enabled),
		zap.Bool("redis", cfg.Redis.Enabled))

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("failed to run http server", zap.Error(err))
	}
}
