package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/cmis/automation-backend/usecases"
)

type Configuration struct {
	Env            string
	Port           string
	RequestTimeout time.Duration
}

func NewServer(
	router *gin.Engine,
	conf Configuration,
	uc usecases.Usecases,
) *http.Server {
	addRoutes(router, uc)

	// Add a margin over the handler timeout so slow requests get a proper
	// response before the server cuts the connection.
	serverTimeout := conf.RequestTimeout + 5*time.Second

	return &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", conf.Port),
		WriteTimeout: serverTimeout,
		ReadTimeout:  serverTimeout,
		IdleTimeout:  serverTimeout,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
	}
}
