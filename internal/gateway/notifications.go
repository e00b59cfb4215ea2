package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type NotificationAPI struct{ c *Client }

func (c *Client) Notifications() NotificationAPI { return NotificationAPI{c: c} }

func (n NotificationAPI) List(ctx context.Context, creds Credentials, page, limit int) Result {
	q := url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}
	return n.c.Do(ctx, creds, Request{Method: http.MethodGet, Path: n.c.Endpoint("notifications.list"), Query: q, Auth: true})
}

func (n NotificationAPI) UnreadCount(ctx context.Context, creds Credentials) Result {
	return n.c.Do(ctx, creds, Request{Method: http.MethodGet, Path: n.c.Endpoint("notifications.unread_count"), Auth: true})
}

func (n NotificationAPI) MarkRead(ctx context.Context, creds Credentials, id string) Result {
	return n.c.Do(ctx, creds, Request{Method: http.MethodPost, Path: n.c.Endpoint("notifications.mark_read", id), Auth: true})
}

func (n NotificationAPI) MarkAllRead(ctx context.Context, creds Credentials) Result {
	return n.c.Do(ctx, creds, Request{Method: http.MethodPost, Path: n.c.Endpoint("notifications.mark_all_read"), Auth: true})
}

func (n NotificationAPI) Delete(ctx context.Context, creds Credentials, id string) Result {
	return n.c.Do(ctx, creds, Request{Method: http.MethodDelete, Path: n.c.Endpoint("notifications.delete", id), Auth: true})
}
