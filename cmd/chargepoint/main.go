package main

import (
	"context"
	"log"
	"os"

	"evsim/client"
	"evsim/internal"
	"evsim/internal/config"
	"evsim/internal/tracing"
)

func main() {

	tracing.Init()
	conf, err := config.GetConfig()
	if err != nil {
		log.Println("configuration failed:", err)
		os.Exit(1)
	}

	logService := internal.NewLogger()
	logService.SetDebugMode(conf.IsDebug)

	chargePoint := client.NewChargePoint(conf, logService)
	if err := chargePoint.Run(context.Background()); err != nil {
		log.Println("charging session failed:", err)
		os.Exit(1)
	}
	log.Printf("charging session complete, %d Wh metered", chargePoint.EnergyWh())

}
