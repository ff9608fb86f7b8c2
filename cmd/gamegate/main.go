package main

import (
	"log"

	corecmd "github.com/m3rciful/gamegate/core/cmd"
	"github.com/m3rciful/gamegate/internal/bot"
	"github.com/m3rciful/gamegate/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: bot.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
