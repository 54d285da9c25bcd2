package server

import (
	"github.com/raysh454/favicond/internal/app"
	"github.com/raysh454/favicond/internal/logging"
)

type Config struct {
	// App supplies the components behind every route. Listen address,
	// timeouts and batch limits are read from App.Config.Server.
	App *app.Application

	Logger logging.Logger
}
