package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"pulse/api/middleware"
	"pulse/api/routes"
	"pulse/config"
	"pulse/db"
	"pulse/services"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	err = db.ConnectDB()
	if err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	ctx := context.Background()

	// Redis не обязателен: без него ленты строятся из БД
	if err := services.InitRedis(); err != nil {
		log.Printf("WARNING: Redis unavailable, feed cache disabled: %v", err)
	} else {
		defer services.CloseRedis()
		services.QueueServiceInstance.StartWorkers(ctx)
	}

	// RabbitMQ не обязателен: события уйдут напрямую в хаб
	if err := services.InitRabbitMQ(); err != nil {
		log.Printf("WARNING: RabbitMQ unavailable, events delivered in-process: %v", err)
	} else {
		defer services.CloseRabbitMQ()
		if err := services.StartUserEventConsumer(ctx, "user_events_push"); err != nil {
			log.Printf("WARNING: failed to start event consumer: %v", err)
		}
	}

	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("pulse"))

	routes.PublicApi(router)

	addr := fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	if config.AppConfig.Backend.Port == 0 {
		addr = ":8080"
	}
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
