package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"storefront/domain"
	"storefront/infra/memory"
	"storefront/pkg/events"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event *events.Event, _ events.Headers) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.events))
	for _, event := range p.events {
		names = append(names, event.Event)
	}
	return names
}

type memoryImages struct {
	objects map[string][]byte
}

func (m *memoryImages) Upload(key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func (m *memoryImages) Delete(key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryImages) URL(key string) string {
	return "https://images.test/" + key
}

type apiFixture struct {
	*fixture
	publisher *recordingPublisher
	images    *memoryImages
}

func newAPIFixture(t *testing.T) *apiFixture {
	f := newFixture(t)
	publisher := &recordingPublisher{}
	images := &memoryImages{objects: map[string][]byte{}}

	f.server = New(Dependencies{
		Repository: f.repo,
		Carts:      memory.NewCartStore(0),
		Images:     images,
		Publisher:  publisher,
	})
	return &apiFixture{fixture: f, publisher: publisher, images: images}
}

func (f *apiFixture) request(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	res, err := f.server.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var payload map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return res, payload
}

func identity(userID string) map[string]string {
	return map[string]string{
		"User-ID":       userID,
		"User-Email":    userID + "@example.com",
		"Authorization": "Bearer token",
	}
}

func fieldErrors(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()

	details, ok := payload["details"].(map[string]any)
	require.True(t, ok, "expected validation details, got %v", payload)
	return details
}

func TestCreateItem(t *testing.T) {
	f := newAPIFixture(t)

	res, payload := f.request(t, http.MethodPost, "/api/v1/items", map[string]any{
		"title":       "Pancakes",
		"description": "Stacked high",
		"price":       850,
		"categoryId":  f.breakfast.ID,
	}, nil)

	require.Equal(t, http.StatusOK, res.StatusCode)
	item := payload["item"].(map[string]any)
	assert.Equal(t, "Pancakes", item["title"])
	assert.Equal(t, domain.ItemStatusActive, item["status"])
	assert.Equal(t, []string{events.ItemCreatedEvent}, f.publisher.names())
}

func TestCreateItemValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
		msg   string
	}{
		{
			name:  "blank title",
			body:  map[string]any{"title": "", "description": "desc", "price": 100},
			field: "title",
			msg:   "can't be blank",
		},
		{
			name:  "blank description",
			body:  map[string]any{"title": "Waffles", "description": "   ", "price": 100},
			field: "description",
			msg:   "can't be blank",
		},
		{
			name:  "zero price",
			body:  map[string]any{"title": "Waffles", "description": "desc", "price": 0},
			field: "price",
		},
		{
			name:  "negative price",
			body:  map[string]any{"title": "Waffles", "description": "desc", "price": -5},
			field: "price",
		},
		{
			name:  "fractional price",
			body:  map[string]any{"title": "Waffles", "description": "desc", "price": 1.5},
			field: "price",
			msg:   "is not a number",
		},
		{
			name:  "empty status",
			body:  map[string]any{"title": "Waffles", "description": "desc", "price": 100, "status": ""},
			field: "status",
		},
		{
			name:  "duplicate title",
			body:  map[string]any{"title": "BLT", "description": "desc", "price": 100},
			field: "title",
			msg:   "has already been taken",
		},
		{
			name:  "unknown category",
			body:  map[string]any{"title": "Waffles", "description": "desc", "price": 100, "categoryId": 42},
			field: "categoryId",
			msg:   "does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)

			res, payload := f.request(t, http.MethodPost, "/api/v1/items", tt.body, nil)

			require.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, "item.create.validation_failed", payload["code"])
			fields := fieldErrors(t, payload)
			require.Contains(t, fields, tt.field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, fields[tt.field])
			}
			assert.Empty(t, f.publisher.names())
		})
	}
}

func TestCreateItemRejectsNonNumericFormPrice(t *testing.T) {
	f := newAPIFixture(t)

	form := url.Values{}
	form.Set("title", "Waffles")
	form.Set("description", "Crispy")
	form.Set("price", "werwsd")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	res, err := f.server.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, "is not a number", fieldErrors(t, payload)["price"])
}

func TestListItemsExcludesHiddenByDefault(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.repo.UpdateItemStatus(context.Background(), f.blt.ID, domain.ItemStatusHidden))

	res, payload := f.request(t, http.MethodGet, "/api/v1/items", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, payload["items"], 1)
	assert.EqualValues(t, 1, payload["totalItems"])

	res, payload = f.request(t, http.MethodGet, "/api/v1/items?status=hidden", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1, payload["totalItems"])

	res, payload = f.request(t, http.MethodGet, "/api/v1/items?status=all", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 2, payload["totalItems"])
}

func TestListItemsFarPastTheLastPage(t *testing.T) {
	f := newAPIFixture(t)

	res, payload := f.request(t, http.MethodGet, "/api/v1/items?page=100000000000000000&pageSize=100", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, payload["items"])
	assert.EqualValues(t, 2, payload["totalItems"])
}

func TestGetItemReturnsCurrency(t *testing.T) {
	f := newAPIFixture(t)

	res, payload := f.request(t, http.MethodGet, "/api/v1/items/1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "10.00", payload["currency"])

	res, payload = f.request(t, http.MethodGet, "/api/v1/items/99", nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "item.show.not_found", payload["code"])
}

func TestUpdateItemKeepsOwnTitle(t *testing.T) {
	f := newAPIFixture(t)

	res, payload := f.request(t, http.MethodPut, "/api/v1/items/1", map[string]any{
		"title": "Bacon and Eggs",
		"price": 1200,
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 1200, payload["item"].(map[string]any)["price"])

	res, payload = f.request(t, http.MethodPut, "/api/v1/items/1", map[string]any{"title": "BLT"}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "has already been taken", fieldErrors(t, payload)["title"])
}

func TestDeleteItem(t *testing.T) {
	f := newAPIFixture(t)

	res, _ := f.request(t, http.MethodDelete, "/api/v1/items/2", nil, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = f.request(t, http.MethodGet, "/api/v1/items/2", nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDeleteOrderedItemConflicts(t *testing.T) {
	f := newAPIFixture(t)

	res, _ := f.request(t, http.MethodPost, "/api/v1/orders", map[string]any{"itemIds": []int64{f.eggs.ID}}, identity("u-1"))
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, payload := f.request(t, http.MethodDelete, "/api/v1/items/1", nil, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "item.destroy.has_orders", payload["code"])
}

func TestCategories(t *testing.T) {
	f := newAPIFixture(t)

	res, payload := f.request(t, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Dinner"}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Dinner", payload["category"].(map[string]any)["name"])

	res, payload = f.request(t, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Dinner"}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "has already been taken", fieldErrors(t, payload)["name"])

	res, payload = f.request(t, http.MethodGet, "/api/v1/categories", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.EqualValues(t, 3, payload["totalItems"])

	res, payload = f.request(t, http.MethodGet, "/api/v1/categories/1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, payload["items"], 1)
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	f := newAPIFixture(t)

	res, _ := f.request(t, http.MethodPost, "/api/v1/cart/items/1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	cookie := res.Header.Get(fiber.HeaderSetCookie)
	require.NotEmpty(t, cookie)
	withCart := func(headers map[string]string) map[string]string {
		if headers == nil {
			headers = map[string]string{}
		}
		headers[fiber.HeaderCookie] = strings.SplitN(cookie, ";", 2)[0]
		return headers
	}

	_, payload := f.request(t, http.MethodPost, "/api/v1/cart/items/1", nil, withCart(nil))
	assert.EqualValues(t, 2, payload["count"])
	_, payload = f.request(t, http.MethodPost, "/api/v1/cart/items/2", nil, withCart(nil))
	assert.EqualValues(t, 3, payload["count"])

	res, _ = f.request(t, http.MethodPost, "/api/v1/cart/checkout", nil, withCart(nil))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, payload = f.request(t, http.MethodPost, "/api/v1/cart/checkout", nil, withCart(identity("u-1")))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "30.00", payload["total"])
	order := payload["order"].(map[string]any)
	assert.Equal(t, "u-1", order["userId"])
	assert.Len(t, order["items"], 2)
	assert.Contains(t, f.publisher.names(), events.OrderCreatedEvent)

	_, payload = f.request(t, http.MethodGet, "/api/v1/cart", nil, withCart(nil))
	assert.EqualValues(t, 0, payload["count"])

	res, payload = f.request(t, http.MethodPost, "/api/v1/cart/checkout", nil, withCart(identity("u-1")))
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, "cart.checkout.empty", payload["code"])
}

func TestOrdersBelongToTheirUser(t *testing.T) {
	f := newAPIFixture(t)

	res, _ := f.request(t, http.MethodPost, "/api/v1/orders", map[string]any{"itemIds": []int64{1}}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, payload := f.request(t, http.MethodPost, "/api/v1/orders",
		map[string]any{"itemIds": []int64{1, 2, 1}}, identity("u-1"))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "30.00", payload["total"])

	res, _ = f.request(t, http.MethodGet, "/api/v1/orders/1", nil, identity("u-1"))
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = f.request(t, http.MethodGet, "/api/v1/orders/1", nil, identity("u-2"))
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, payload = f.request(t, http.MethodGet, "/api/v1/items/2/orders", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, payload["orders"], 1)

	res, payload = f.request(t, http.MethodPost, "/api/v1/orders",
		map[string]any{"itemIds": []int64{}}, identity("u-1"))
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, fieldErrors(t, payload), "itemIds")
}

func imageUpload(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadItemImage(t *testing.T) {
	f := newAPIFixture(t)

	body, contentType := imageUpload(t, "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/1/image", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	res, err := f.server.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	imageURL := payload["imageUrl"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "https://images.test/items/1/"))
	assert.True(t, strings.HasSuffix(imageURL, ".png"))
	assert.Len(t, f.images.objects, 1)

	item, err := f.repo.GetItem(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, item.ImageURL)
	assert.Equal(t, imageURL, *item.ImageURL)
	assert.Contains(t, f.publisher.names(), events.ItemImageUploadedEvent)
}

func TestUploadItemImageRejectsOtherTypes(t *testing.T) {
	f := newAPIFixture(t)

	body, contentType := imageUpload(t, "image/gif", []byte("gif-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/1/image", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	res, err := f.server.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Empty(t, f.images.objects)
}
