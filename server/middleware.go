package server

import (
	"errors"
	"net/http"
	"time"

	"kitties-ledger/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	AccountHeader = "X-Account"
	accountKey    = "account"
)

// requireAccount resolves the calling account from the X-Account header.
// It stands in for real authentication on development networks.
func requireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AccountHeader)
		if !common.IsHexAddress(header) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + AccountHeader + " header"})
			return
		}
		c.Set(accountKey, common.HexToAddress(header))
		c.Next()
	}
}

func callerOf(c *gin.Context) common.Address {
	return c.MustGet(accountKey).(common.Address)
}

func logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Info("request")
	}
}

var errorStatus = map[error]int{
	model.ErrNotOwner:           http.StatusForbidden,
	model.ErrInvalidIndex:       http.StatusNotFound,
	model.ErrNotListed:          http.StatusNotFound,
	model.ErrInsufficientFunds:  http.StatusPaymentRequired,
	model.ErrSameParent:         http.StatusConflict,
	model.ErrIdentifierOverflow: http.StatusInsufficientStorage,
}

func checkErr(c *gin.Context, err error) {
	for kind, status := range errorStatus {
		if errors.Is(err, kind) {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
