package middleware

import (
	"storefront/app"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const CartCookie = "storefront_cart"

// NewCartSessionMiddleware assigns every visitor a cart id kept in a cookie.
func NewCartSessionMiddleware(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cartID := c.Cookies(CartCookie)
		if _, err := uuid.Parse(cartID); err != nil {
			cartID = uuid.New().String()
		}

		cookie := &fiber.Cookie{
			Name:     CartCookie,
			Value:    cartID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		}
		if ttl > 0 {
			cookie.Expires = time.Now().Add(ttl)
		}
		c.Cookie(cookie)

		c.SetUserContext(app.WithCartID(c.UserContext(), cartID))
		return c.Next()
	}
}
