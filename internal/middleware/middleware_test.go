package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"storefront/app"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeadersRejectsMissingHeaders(t *testing.T) {
	server := fiber.New()
	server.Use(NewSecurityHeadersMiddleware())
	server.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-ID", "1")

	res, err := server.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestSecurityHeadersStoresUser(t *testing.T) {
	server := fiber.New()
	server.Use(NewSecurityHeadersMiddleware())
	server.Get("/", func(c *fiber.Ctx) error {
		userID, _ := app.UserIDFrom(c.UserContext())
		return c.SendString(userID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-ID", "42")
	req.Header.Set("User-Email", "guest@example.com")
	req.Header.Set("Authorization", "Bearer token")

	res, err := server.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "42", string(body))
}

func TestCartSessionIssuesAndReusesCookie(t *testing.T) {
	server := fiber.New()
	server.Use(NewCartSessionMiddleware(time.Hour))
	server.Get("/", func(c *fiber.Ctx) error {
		cartID, _ := app.CartIDFrom(c.UserContext())
		return c.SendString(cartID)
	})

	res, err := server.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	var issued *http.Cookie
	for _, cookie := range res.Cookies() {
		if cookie.Name == CartCookie {
			issued = cookie
		}
	}
	require.NotNil(t, issued)
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, issued.Value, string(body))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: issued.Value})
	res, err = server.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	assert.Equal(t, issued.Value, string(body))
}

func TestCartSessionReplacesForgedCookie(t *testing.T) {
	server := fiber.New()
	server.Use(NewCartSessionMiddleware(0))
	server.Get("/", func(c *fiber.Ctx) error {
		cartID, _ := app.CartIDFrom(c.UserContext())
		return c.SendString(cartID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: "../../etc"})
	res, err := server.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(res.Body)
	assert.NotEqual(t, "../../etc", string(body))
	assert.Len(t, string(body), 36)
}
