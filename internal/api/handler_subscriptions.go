package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"partyroom-backend/internal/model"
	"partyroom-backend/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

type subscriptionResponse struct {
	Endpoint string `json:"endpoint"`
}

func (h *Handler) pushEnabled() bool {
	return h.webpush != nil && h.webpush.VAPIDPublicKey != ""
}

// GetVAPIDPublicKey returns the application server key browsers subscribe with.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if !h.pushEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}

// PutSubscription registers a browser for day-end notifications.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub := model.PushSubscription{
		Endpoint: req.Endpoint,
		UserID:   mw.UserID(c),
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.subs.SaveSubscription(c.Request.Context(), &sub); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subscriptionResponse{Endpoint: sub.Endpoint})
}

// GetSubscriptions lists the caller's registered endpoints.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	subs, err := h.subs.SubscriptionsForUser(c.Request.Context(), mw.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]subscriptionResponse, len(subs))
	for i, s := range subs {
		out[i] = subscriptionResponse{Endpoint: s.Endpoint}
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

// rawQueryParam reads a query value without treating '+' as a space, since
// endpoints are often sent unescaped. Percent-encoded values are decoded.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if !strings.HasPrefix(kv, key+"=") {
			continue
		}
		v := kv[len(key)+1:]
		if strings.Contains(v, "%") {
			if decoded, err := url.PathUnescape(v); err == nil {
				v = decoded
			}
		}
		return v, true
	}
	return "", false
}

// DeleteSubscription removes one endpoint of the caller, or all of them when
// no endpoint is given.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	userID := mw.UserID(c)

	endpoint, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || endpoint == "" {
		if err := h.subs.DeleteUserSubscriptions(ctx, userID); err != nil {
			h.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	subs, err := h.subs.SubscriptionsForUser(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	owned := false
	for _, s := range subs {
		if s.Endpoint == endpoint {
			owned = true
			break
		}
	}
	if !owned {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}

	if err := h.subs.DeleteSubscription(ctx, endpoint); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
