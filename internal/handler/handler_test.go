package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/gateway"
)

func TestBackStaysOnSite(t *testing.T) {
	cases := []struct {
		name, referer, want string
	}{
		{"empty", "", "/fallback"},
		{"same host", "http://example.com/movies?type=now-showing", "/movies?type=now-showing"},
		{"relative", "/profile", "/profile"},
		{"other host", "http://evil.test/phish", "/fallback"},
		{"garbage", "::nope", "/fallback"},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}
			c := e.NewContext(req, httptest.NewRecorder())
			assert.Equal(t, tc.want, back(c, "/fallback"))
		})
	}
}

func TestFieldErrorsUseFormNames(t *testing.T) {
	msgs := errmsg.New("en")
	v := NewFormValidator()

	err := v.Validate(&registerForm{Name: "An", Email: "bad", Phone: "0901", Password: "secret1", PasswordConfirmation: "other"})
	require.Error(t, err)
	errs := fieldErrors(err, msgs)
	assert.Equal(t, msgs.Field("email", ""), errs["email"])
	assert.Equal(t, msgs.Field("eqfield", "Password"), errs["password_confirmation"])
	assert.NotContains(t, errs, "name")

	assert.NoError(t, v.Validate(&loginForm{Email: "an@example.vn", Password: "secret1"}))
	assert.Nil(t, fieldErrors(assert.AnError, msgs))
}

func TestNotificationListShapes(t *testing.T) {
	ok := func(raw string) gateway.Result { return gateway.Result{Success: true, Data: json.RawMessage(raw)} }

	assert.Len(t, notificationList(ok(`[{"id":1,"title":"a"}]`)), 1)
	assert.Len(t, notificationList(ok(`{"notifications":[{"id":1},{"id":2}]}`)), 2)
	assert.Len(t, notificationList(ok(`{"items":[{"id":1}]}`)), 1)

	empty := notificationList(gateway.Result{Success: false, Error: "boom"})
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Empty(t, notificationList(ok(`"odd"`)))
}

func TestUnreadCountShapes(t *testing.T) {
	ok := func(raw string) gateway.Result { return gateway.Result{Success: true, Data: json.RawMessage(raw)} }
	assert.Equal(t, 4, unreadCount(ok(`{"count":4}`)))
	assert.Equal(t, 2, unreadCount(ok(`2`)))
	assert.Equal(t, 0, unreadCount(ok(`"x"`)))
	assert.Equal(t, 0, unreadCount(gateway.Result{}))
}

func TestPositiveInt(t *testing.T) {
	assert.Equal(t, 3, positiveInt("3", 1))
	assert.Equal(t, 1, positiveInt("0", 1))
	assert.Equal(t, 20, positiveInt("abc", 20))
}
