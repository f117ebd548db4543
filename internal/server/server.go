package server

import (
	"storefront/app"
	"storefront/internal/middleware"
	"storefront/internal/web"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Dependencies struct {
	Repository app.Repository
	Carts      app.CartStore
	Images     app.ImageStore
	Publisher  events.Publisher
	CartTTL    time.Duration
}

// New builds the fiber app with the HTML pages and the JSON API mounted.
func New(deps Dependencies) *fiber.App {
	server := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
		BodyLimit:    6 * 1024 * 1024,
		Views:        web.NewEngine(),
	})

	server.Use(recover.New())
	server.Use(middleware.NewCartSessionMiddleware(deps.CartTTL))

	web.NewPages(deps.Repository, deps.Carts).Register(server)

	registerAPI(server, deps)

	return server
}

func registerAPI(server *fiber.App, deps Dependencies) {
	repository := deps.Repository
	security := middleware.NewSecurityHeadersMiddleware()

	getItemsHandler := app.NewGetItemsHandler(repository)
	getItemHandler := app.NewGetItemHandler(repository)
	createItemHandler := app.NewCreateItemHandler(repository, deps.Publisher)
	updateItemHandler := app.NewUpdateItemHandler(repository, deps.Publisher)
	deleteItemHandler := app.NewDeleteItemHandler(repository, deps.Publisher)
	uploadItemImageHandler := app.NewUploadItemImageHandler(repository, deps.Images, deps.Publisher)
	getItemOrdersHandler := app.NewGetItemOrdersHandler(repository)

	getCategoriesHandler := app.NewGetCategoriesHandler(repository)
	getCategoryHandler := app.NewGetCategoryHandler(repository)
	createCategoryHandler := app.NewCreateCategoryHandler(repository)

	getCartHandler := app.NewGetCartHandler(repository, deps.Carts)
	addToCartHandler := app.NewAddToCartHandler(repository, deps.Carts)
	removeFromCartHandler := app.NewRemoveFromCartHandler(deps.Carts)
	checkoutHandler := app.NewCheckoutHandler(repository, deps.Carts, deps.Publisher)

	createOrderHandler := app.NewCreateOrderHandler(repository, deps.Publisher)
	getOrderHandler := app.NewGetOrderHandler(repository)

	api := server.Group("/api/v1")

	api.Get("/items", handle[app.GetItemsRequest, app.GetItemsResponse](getItemsHandler))
	api.Get("/items/:id", handle[app.GetItemRequest, app.GetItemResponse](getItemHandler))
	api.Post("/items", handle[app.CreateItemRequest, app.CreateItemResponse](createItemHandler))
	api.Put("/items/:id", handle[app.UpdateItemRequest, app.UpdateItemResponse](updateItemHandler))
	api.Delete("/items/:id", handle[app.DeleteItemRequest, app.DeleteItemResponse](deleteItemHandler))
	api.Post("/items/:id/image", uploadImage(uploadItemImageHandler))
	api.Get("/items/:id/orders", handle[app.GetItemOrdersRequest, app.GetItemOrdersResponse](getItemOrdersHandler))

	api.Get("/categories", handle[app.GetCategoriesRequest, app.GetCategoriesResponse](getCategoriesHandler))
	api.Get("/categories/:id", handle[app.GetCategoryRequest, app.GetCategoryResponse](getCategoryHandler))
	api.Post("/categories", handle[app.CreateCategoryRequest, app.CreateCategoryResponse](createCategoryHandler))

	api.Get("/cart", handle[app.GetCartRequest, app.GetCartResponse](getCartHandler))
	api.Post("/cart/items/:id", handle[app.AddToCartRequest, app.CartCountResponse](addToCartHandler))
	api.Delete("/cart/items/:id", handle[app.RemoveFromCartRequest, app.CartCountResponse](removeFromCartHandler))
	api.Post("/cart/checkout", security, handle[app.CheckoutRequest, app.OrderResponse](checkoutHandler))

	orders := api.Group("/orders", security)
	orders.Post("/", handle[app.CreateOrderRequest, app.OrderResponse](createOrderHandler))
	orders.Get("/:id", handle[app.GetOrderRequest, app.OrderResponse](getOrderHandler))
}

func uploadImage(handler *app.UploadItemImageHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		file, err := c.FormFile("image")
		if err != nil {
			return writeError(c, httperror.BadRequest(
				"upload_item_image.missing_file",
				"Image file is required (use 'image' field)",
				fiber.Map{"error": err.Error()},
			))
		}

		data, err := readFormFile(file)
		if err != nil {
			return writeError(c, httperror.InternalServerError(
				"upload_item_image.file_read_error",
				"Failed to read file content",
				err.Error(),
			))
		}

		res, err := handler.Handle(c.UserContext(), &app.UploadItemImageRequest{
			ItemID:      int64(itemID),
			ContentType: file.Header.Get(fiber.HeaderContentType),
			Data:        data,
		})
		if err != nil {
			return writeError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
