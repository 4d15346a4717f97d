package main

import (
	"log"

	"evsim/internal/config"
	"evsim/internal/tracing"
	"evsim/metrics"
	"evsim/server"
)

func main() {

	tracing.Init()
	conf, err := config.GetConfig()
	if err != nil {
		log.Println("configuration failed:", err)
		return
	}

	centralSystem, err := server.NewCentralSystem(conf)
	if err != nil {
		log.Println("central system initialization failed:", err)
		return
	}

	go func() {
		if err := metrics.Listen(conf); err != nil {
			log.Println("metrics server failed:", err)
		}
	}()

	centralSystem.Start()

}
