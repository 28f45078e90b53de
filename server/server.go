// Package server exposes a host runtime over HTTP.
package server

import (
	"net/http"

	"kitties-ledger/host"

	"github.com/gin-gonic/gin"
)

func New(rt *host.Runtime) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), logRequests())

	r.GET("/kitties", listKitties(rt))
	r.GET("/kitties/:id", getKitty(rt))
	r.GET("/accounts/:account", getAccount(rt))
	r.GET("/events", getEvents(rt))
	r.POST("/accounts/:account/fund", fundAccount(rt))

	calls := r.Group("/", requireAccount())
	calls.POST("/kitties", createKitty(rt))
	calls.POST("/kitties/:id/transfer", transferKitty(rt))
	calls.POST("/kitties/:id/listing", listKitty(rt))
	calls.POST("/kitties/:id/purchase", purchaseKitty(rt))
	calls.POST("/breed", breedKitty(rt))

	return r
}
