package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/gateway"
	"github.com/iliyamo/cinebook-web/internal/model"
)

// NotificationBackend is the notification part of the gateway.
type NotificationBackend interface {
	List(ctx context.Context, creds gateway.Credentials, page, limit int) gateway.Result
	UnreadCount(ctx context.Context, creds gateway.Credentials) gateway.Result
	MarkRead(ctx context.Context, creds gateway.Credentials, id string) gateway.Result
	MarkAllRead(ctx context.Context, creds gateway.Credentials) gateway.Result
	Delete(ctx context.Context, creds gateway.Credentials, id string) gateway.Result
}

// NotificationHandler relays notification calls. Scripts get the gateway
// result as JSON; form posts are sent back with a flash.
type NotificationHandler struct {
	API  NotificationBackend
	Msgs *errmsg.Catalog
}

func NewNotificationHandler(api NotificationBackend, msgs *errmsg.Catalog) *NotificationHandler {
	return &NotificationHandler{API: api, Msgs: msgs}
}

const defaultNotificationLimit = 20

// Index handles GET /notifications?page=&limit=.
func (h *NotificationHandler) Index(c echo.Context) error {
	pg := positiveInt(c.QueryParam("page"), 1)
	limit := positiveInt(c.QueryParam("limit"), defaultNotificationLimit)
	res := h.API.List(c.Request().Context(), sessionOf(c), pg, limit)
	return page(c, "notifications.index", echo.Map{
		"notifications": notificationList(res),
		"page":          pg,
		"limit":         limit,
	})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	res := h.API.UnreadCount(c.Request().Context(), sessionOf(c))
	return c.JSON(http.StatusOK, echo.Map{"count": unreadCount(res)})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	res := h.API.MarkRead(c.Request().Context(), sessionOf(c), c.Param("id"))
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, res)
	}
	return redirect(c, back(c, "/notifications"))
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	res := h.API.MarkAllRead(c.Request().Context(), sessionOf(c))
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, res)
	}
	return h.settle(c, res, errmsg.CodeNotificationsRead)
}

// Delete handles DELETE /notifications/:id.
func (h *NotificationHandler) Delete(c echo.Context) error {
	res := h.API.Delete(c.Request().Context(), sessionOf(c), c.Param("id"))
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, res)
	}
	return h.settle(c, res, errmsg.CodeNotificationGone)
}

func (h *NotificationHandler) settle(c echo.Context, res gateway.Result, ok errmsg.Code) error {
	to := back(c, "/notifications")
	if !res.Success {
		return redirectWith(c, to, flashError, res.Message())
	}
	return redirectWith(c, to, flashSuccess, h.Msgs.Text(ok))
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// notificationList accepts a bare list or one wrapped under notifications
// or items.
func notificationList(res gateway.Result) []model.Notification {
	out := []model.Notification{}
	if !res.Success {
		return out
	}
	if res.Decode(&out) == nil {
		return out
	}
	var wrapped struct {
		Notifications []model.Notification `json:"notifications"`
		Items         []model.Notification `json:"items"`
	}
	if json.Unmarshal(res.Data, &wrapped) != nil {
		return []model.Notification{}
	}
	switch {
	case len(wrapped.Notifications) > 0:
		return wrapped.Notifications
	case len(wrapped.Items) > 0:
		return wrapped.Items
	}
	return []model.Notification{}
}

// unreadCount reads {"count": n} or a bare number; anything else is 0.
func unreadCount(res gateway.Result) int {
	if !res.Success {
		return 0
	}
	var wrapped struct {
		Count int `json:"count"`
	}
	if json.Unmarshal(res.Data, &wrapped) == nil {
		return wrapped.Count
	}
	var n int
	if json.Unmarshal(res.Data, &n) == nil {
		return n
	}
	return 0
}
