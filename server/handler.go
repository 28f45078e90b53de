package server

import (
	"net/http"
	"strconv"

	"kitties-ledger/core/model"
	"kitties-ledger/host"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
)

type transferRequest struct {
	To string `json:"to"`
}

type breedRequest struct {
	Parent1 uint64 `json:"parent1"`
	Parent2 uint64 `json:"parent2"`
}

type listRequest struct {
	Price string `json:"price"`
}

type fundRequest struct {
	Amount string `json:"amount"`
}

func kittyParam(c *gin.Context) (model.KittyIndex, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kitty id"})
		return 0, false
	}
	return model.KittyIndex(id), true
}

func createKitty(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := rt.Create(callerOf(c))
		if err != nil {
			checkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func transferKitty(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := kittyParam(c)
		if !ok {
			return
		}
		var req transferRequest
		if err := c.BindJSON(&req); err != nil || !common.IsHexAddress(req.To) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := rt.Transfer(callerOf(c), common.HexToAddress(req.To), id); err != nil {
			checkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "owner": common.HexToAddress(req.To)})
	}
}

func breedKitty(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req breedRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		id, err := rt.Breed(callerOf(c), model.KittyIndex(req.Parent1), model.KittyIndex(req.Parent2))
		if err != nil {
			checkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func listKitty(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := kittyParam(c)
		if !ok {
			return
		}
		var req listRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		price, err := uint256.FromDecimal(req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}

		if err := rt.List(callerOf(c), id, price); err != nil {
			checkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "price": price.ToBig().String()})
	}
}

func purchaseKitty(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := kittyParam(c)
		if !ok {
			return
		}

		if err := rt.Purchase(callerOf(c), id); err != nil {
			checkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "owner": callerOf(c)})
	}
}

func listKitties(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := rt.Kitties().All()
		if err != nil {
			checkErr(c, err)
			return
		}
		count, err := rt.Kitties().Count()
		if err != nil {
			checkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count, "kitties": records})
	}
}

func getKitty(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := kittyParam(c)
		if !ok {
			return
		}

		kitty, err := rt.Kitties().Kitty(id)
		if err != nil {
			checkErr(c, err)
			return
		}
		if kitty == nil {
			checkErr(c, model.ErrInvalidIndex)
			return
		}
		owner, _, err := rt.Kitties().Owner(id)
		if err != nil {
			checkErr(c, err)
			return
		}
		price, err := rt.Kitties().Price(id)
		if err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":    id,
			"dna":   kitty.DNA.String(),
			"owner": owner,
			"price": price.ToBig().String(),
		})
	}
}

func getAccount(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !common.IsHexAddress(c.Param("account")) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account"})
			return
		}
		account := common.HexToAddress(c.Param("account"))

		acct, err := rt.Balance(account)
		if err != nil {
			checkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"account":  account,
			"free":     acct.Free.ToBig().String(),
			"reserved": acct.Reserved.ToBig().String(),
		})
	}
}

func fundAccount(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !common.IsHexAddress(c.Param("account")) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account"})
			return
		}
		account := common.HexToAddress(c.Param("account"))

		var req fundRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		amount, err := uint256.FromDecimal(req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}

		if err := rt.Fund(account, amount); err != nil {
			checkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"account": account})
	}
}

func getEvents(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
		if err != nil || from < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		logs := rt.Recorder().Logs(from)
		if logs == nil {
			logs = []*types.Log{}
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs})
	}
}
