// Package web renders the storefront HTML pages.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"storefront/app"
	"storefront/domain"
	"storefront/pkg/httperror"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

//go:embed templates
var templatesFS embed.FS

const layout = "layouts/main"

// NewEngine builds the template engine over the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("currency", func(item domain.Item) string {
		return "$" + item.Currency().StringFixed(2)
	})
	engine.AddFunc("domID", domID)
	return engine
}

// domID turns a category name into an element id. HTML ids cannot hold
// whitespace, so "Main Course" becomes "Main-Course".
func domID(name string) string {
	return strings.Join(strings.Fields(name), "-")
}

type Pages struct {
	repository app.Repository
	carts      app.CartStore
	addToCart  *app.AddToCartHandler
	removeItem *app.RemoveFromCartHandler
}

func NewPages(repository app.Repository, carts app.CartStore) *Pages {
	return &Pages{
		repository: repository,
		carts:      carts,
		addToCart:  app.NewAddToCartHandler(repository, carts),
		removeItem: app.NewRemoveFromCartHandler(carts),
	}
}

// Register mounts the pages on router. The cart session middleware must already be installed.
func (p *Pages) Register(router fiber.Router) {
	router.Get("/", p.root)
	router.Get("/items", p.items)
	router.Get("/categories", p.categories)
	router.Post("/cart/items/:id", p.addItem)
	router.Post("/cart/items/:id/remove", p.removeCartItem)
}

func (p *Pages) root(c *fiber.Ctx) error {
	return p.render(c, "index", fiber.Map{"Title": "Home"})
}

func (p *Pages) items(c *fiber.Ctx) error {
	items, err := p.repository.GetItems(c.UserContext(), app.ItemFilter{Status: domain.ItemStatusActive}, 0, 0)
	if err != nil {
		return p.renderError(c, err)
	}

	return p.render(c, "items", fiber.Map{"Title": "Items", "Items": items})
}

func (p *Pages) categories(c *fiber.Ctx) error {
	categories, err := p.repository.GetCategoriesWithItems(c.UserContext(), domain.ItemStatusActive)
	if err != nil {
		return p.renderError(c, err)
	}

	return p.render(c, "categories", fiber.Map{"Title": "Categories", "Categories": categories})
}

func (p *Pages) addItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil {
		return p.renderError(c, httperror.BadRequest("cart.add.invalid_id", "Invalid item id", nil))
	}

	if _, err := p.addToCart.Handle(c.UserContext(), &app.AddToCartRequest{ItemID: int64(itemID)}); err != nil {
		return p.renderError(c, err)
	}

	return c.Redirect(backTo(c), fiber.StatusSeeOther)
}

func (p *Pages) removeCartItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil {
		return p.renderError(c, httperror.BadRequest("cart.remove.invalid_id", "Invalid item id", nil))
	}

	if _, err := p.removeItem.Handle(c.UserContext(), &app.RemoveFromCartRequest{ItemID: int64(itemID)}); err != nil {
		return p.renderError(c, err)
	}

	return c.Redirect(backTo(c), fiber.StatusSeeOther)
}

func (p *Pages) render(c *fiber.Ctx, view string, data fiber.Map) error {
	data["CartCount"] = p.cartCount(c.UserContext())
	return c.Render(view, data, layout)
}

func (p *Pages) renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Something went wrong."

	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		status = httpErr.Status
		message = httpErr.Message
	}

	if status >= fiber.StatusInternalServerError {
		zap.L().Error("Page failed", zap.String("path", c.Path()), zap.Error(err))
	}

	c.Status(status)
	return p.render(c, "error", fiber.Map{"Title": "Error", "Status": status, "Message": message})
}

func (p *Pages) cartCount(ctx context.Context) int {
	cartID, ok := app.CartIDFrom(ctx)
	if !ok {
		return 0
	}

	cart, err := p.carts.Get(ctx, cartID)
	if err != nil {
		zap.L().Warn("Failed to load cart for page", zap.String("cartId", cartID), zap.Error(err))
		return 0
	}
	return cart.Count()
}

// backTo returns the local path of the referring page, defaulting to the category listing.
func backTo(c *fiber.Ctx) string {
	ref, err := url.Parse(c.Get(fiber.HeaderReferer))
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Hostname()) {
		return "/categories"
	}
	return ref.Path
}
