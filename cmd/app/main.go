// entry point to app :)
package main

import (
	"github.com/ds124wfegd/digit-ui/config"
	"github.com/ds124wfegd/digit-ui/internal/appServer"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"api_base_url": cfg.API.BaseURL,
		"port":         cfg.Server.Port,
		"events":       cfg.Events.Enabled,
	}).Info("config loaded")

	appServer.NewServer(cfg)
}
