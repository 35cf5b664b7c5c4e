package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
)

type rateCardInput struct {
	ID        string                    `json:"id"`
	RoleName  string                    `json:"role_name"`
	RateCents int64                     `json:"rate_cents"`
	Unit      rateledgerdomain.RateUnit `json:"unit"`
}

type upsertRateCardsRequest struct {
	Cards []rateCardInput `json:"cards"`
}

func (s *Server) ListRateCards(c *gin.Context) {
	cards, err := s.rateledgerSvc.ListRateCards(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cards})
}

func (s *Server) UpsertRateCards(c *gin.Context) {
	var req upsertRateCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cards := make([]rateledgerdomain.RateCardInput, 0, len(req.Cards))
	for _, card := range req.Cards {
		cards = append(cards, rateledgerdomain.RateCardInput{
			ID:        card.ID,
			RoleName:  card.RoleName,
			RateCents: card.RateCents,
			Unit:      card.Unit,
		})
	}

	saved, err := s.rateledgerSvc.UpsertRateCards(c.Request.Context(), rateledgerdomain.UpsertRateCardsRequest{
		VendorID: c.Param("id"),
		Cards:    cards,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved})
}

func (s *Server) DeleteRateCard(c *gin.Context) {
	if err := s.rateledgerSvc.DeleteRateCard(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
