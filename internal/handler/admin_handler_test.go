package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"
	"storefront/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type adminFixture struct {
	tenants *MockTenantService
	menu    *MockMenuItemService
	hours   *MockOpeningHourService
	info    *MockRestaurantInfoService
	promos  *MockPromoBannerService
	cdn     *MockImageUploader
	handler *AdminHandler
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		tenants: new(MockTenantService),
		menu:    new(MockMenuItemService),
		hours:   new(MockOpeningHourService),
		info:    new(MockRestaurantInfoService),
		promos:  new(MockPromoBannerService),
		cdn:     new(MockImageUploader),
	}
	pipeline := upload.NewPipeline(f.cdn, nil, 1<<20, zerolog.Nop())
	f.handler = NewAdminHandler(f.tenants, f.menu, f.hours, f.info, f.promos, pipeline, zerolog.Nop())
	return f
}

func TestAdminHandler_TenantAccess(t *testing.T) {
	owner := &model.Profile{ID: uuid.New(), Email: "owner@example.com"}
	stranger := &model.Profile{ID: uuid.New(), Email: "stranger@example.com"}
	tenant := &model.Tenant{ID: uuid.New(), Slug: "mama-put", OwnerID: owner.ID}

	tests := []struct {
		name           string
		profile        *model.Profile
		privileged     bool
		mockReturn     *model.Tenant
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Owner passes",
			profile:        owner,
			mockReturn:     tenant,
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Privileged passes",
			profile:        stranger,
			privileged:     true,
			mockReturn:     tenant,
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Other profile forbidden",
			profile:        stranger,
			mockError:      model.ErrForbidden,
			expectService:  true,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Unknown tenant",
			profile:        owner,
			mockError:      model.ErrTenantNotFound,
			expectService:  true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "No session",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			if tt.expectService {
				f.tenants.On("Authorize", mock.Anything, "mama-put", tt.profile.ID, tt.privileged).
					Return(tt.mockReturn, tt.mockError)
			}

			var seen *model.Tenant
			r := chi.NewRouter()
			r.With(f.handler.TenantAccess).Get("/api/admin/{slug}/menu-items", func(w http.ResponseWriter, r *http.Request) {
				seen = tenantFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/mama-put/menu-items", nil)
			if tt.profile != nil {
				req = withProfile(req, tt.profile, tt.privileged)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tenant, seen)
			} else {
				assert.Nil(t, seen)
			}
			f.tenants.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_CreateMenuItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Created",
			body:           `{"name":"Suya Platter","price":2500,"category":"specials"}`,
			expectService:  true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid category",
			body:           `{"name":"Suya Platter","price":2500,"category":"mains"}`,
			mockError:      model.ErrInvalidCategory,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			if tt.expectService {
				var ret *model.MenuItem
				if tt.mockError == nil {
					ret = &model.MenuItem{ID: uuid.New(), Name: "Suya Platter", Price: 2500, Category: model.CategorySpecials, Available: true}
				}
				f.menu.On("Create", mock.Anything, "mama-put", mock.MatchedBy(func(in *model.MenuItemInput) bool {
					return in.Name != nil && *in.Name == "Suya Platter" && in.Price != nil && *in.Price == 2500
				})).Return(ret, tt.mockError)
			}

			req := jsonRequest(http.MethodPost, "/api/admin/mama-put/menu-items", tt.body)
			w := route(http.MethodPost, "/api/admin/{slug}/menu-items", f.handler.CreateMenuItem, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				f.menu.AssertExpectations(t)
			} else {
				f.menu.AssertNotCalled(t, "Create")
			}
		})
	}
}

func TestAdminHandler_UpdateAndDeleteMenuItem(t *testing.T) {
	f := newAdminFixture()
	id := uuid.New()

	f.menu.On("Update", mock.Anything, "mama-put", id, mock.MatchedBy(func(in *model.MenuItemInput) bool {
		return in.Available != nil && !*in.Available
	})).Return(&model.MenuItem{ID: id, Name: "Suya Platter", Available: false}, nil)
	f.menu.On("Get", mock.Anything, "mama-put", id).Return(&model.MenuItem{ID: id, Name: "Suya Platter"}, nil)
	f.menu.On("Delete", mock.Anything, "mama-put", id).Return(nil)

	req := jsonRequest(http.MethodPut, "/api/admin/mama-put/menu-items/"+id.String(), `{"available":false}`)
	w := route(http.MethodPut, "/api/admin/{slug}/menu-items/{id}", f.handler.UpdateMenuItem, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available":false`)

	req = jsonRequest(http.MethodDelete, "/api/admin/mama-put/menu-items/"+id.String(), "")
	w = route(http.MethodDelete, "/api/admin/{slug}/menu-items/{id}", f.handler.DeleteMenuItem, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = jsonRequest(http.MethodDelete, "/api/admin/mama-put/menu-items/nope", "")
	w = route(http.MethodDelete, "/api/admin/{slug}/menu-items/{id}", f.handler.DeleteMenuItem, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.menu.AssertExpectations(t)
	f.cdn.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
}

func TestAdminHandler_DeleteMenuItem_DiscardsImage(t *testing.T) {
	id := uuid.New()
	publicID := "menu/mama-put/" + id.String()
	withImage := &model.MenuItem{ID: id, Name: "Suya Platter", ImageURL: "https://res.cloudinary.com/demo/image/upload/" + publicID + ".png"}

	tests := []struct {
		name           string
		destroyError   error
		deleteError    error
		expectDestroy  bool
		expectedStatus int
	}{
		{
			name:           "Image destroyed",
			expectDestroy:  true,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "CDN failure does not fail the delete",
			destroyError:   &upload.CDNError{StatusCode: http.StatusBadGateway, Message: "upstream"},
			expectDestroy:  true,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "Item kept when delete fails",
			deleteError:    model.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			f.menu.On("Get", mock.Anything, "mama-put", id).Return(withImage, nil)
			f.menu.On("Delete", mock.Anything, "mama-put", id).Return(tt.deleteError)
			if tt.expectDestroy {
				f.cdn.On("Destroy", mock.Anything, publicID).Return(tt.destroyError)
			}

			req := jsonRequest(http.MethodDelete, "/api/admin/mama-put/menu-items/"+id.String(), "")
			w := route(http.MethodDelete, "/api/admin/{slug}/menu-items/{id}", f.handler.DeleteMenuItem, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			f.menu.AssertExpectations(t)
			if tt.expectDestroy {
				f.cdn.AssertExpectations(t)
			} else {
				f.cdn.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAdminHandler_DeleteMenuItem_UnknownItem(t *testing.T) {
	f := newAdminFixture()
	id := uuid.New()
	f.menu.On("Get", mock.Anything, "mama-put", id).Return(nil, model.ErrNotFound)

	req := jsonRequest(http.MethodDelete, "/api/admin/mama-put/menu-items/"+id.String(), "")
	w := route(http.MethodDelete, "/api/admin/{slug}/menu-items/{id}", f.handler.DeleteMenuItem, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.menu.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	f.cdn.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAdminHandler_UploadMenuItemImage(t *testing.T) {
	f := newAdminFixture()
	id := uuid.New()
	imageURL := "https://res.cloudinary.com/demo/image/upload/menu/mama-put/" + id.String() + ".png"

	f.menu.On("Get", mock.Anything, "mama-put", id).Return(&model.MenuItem{ID: id, Name: "Suya Platter"}, nil)
	f.cdn.On("Upload", mock.Anything, upload.UploadOptions{PublicID: id.String(), Folder: "menu/mama-put"}).
		Return(&upload.UploadResult{PublicID: "menu/mama-put/" + id.String(), SecureURL: imageURL}, nil)
	f.menu.On("Update", mock.Anything, "mama-put", id, mock.MatchedBy(func(in *model.MenuItemInput) bool {
		return in.ImageURL != nil && *in.ImageURL == imageURL
	})).Return(&model.MenuItem{ID: id, Name: "Suya Platter", ImageURL: imageURL}, nil)

	body, contentType := multipartBody(t, "file", "suya.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/mama-put/menu-items/"+id.String()+"/image", body)
	req.Header.Set("Content-Type", contentType)
	w := route(http.MethodPost, "/api/admin/{slug}/menu-items/{id}/image", f.handler.UploadMenuItemImage, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), imageURL)
	f.menu.AssertExpectations(t)
	f.cdn.AssertExpectations(t)
}

func TestAdminHandler_UploadMenuItemImage_Rejected(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		field          string
		data           []byte
		expectedStatus int
	}{
		{name: "Not an image", field: "file", data: []byte("just some text"), expectedStatus: http.StatusUnsupportedMediaType},
		{name: "Missing file", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			f.menu.On("Get", mock.Anything, "mama-put", id).Return(&model.MenuItem{ID: id}, nil)

			body, contentType := multipartBody(t, tt.field, "notes.txt", tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/admin/mama-put/menu-items/"+id.String()+"/image", body)
			req.Header.Set("Content-Type", contentType)
			w := route(http.MethodPost, "/api/admin/{slug}/menu-items/{id}/image", f.handler.UploadMenuItemImage, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			f.cdn.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
			f.menu.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAdminHandler_UploadMenuItemImage_BodyTooLarge(t *testing.T) {
	f := newAdminFixture()
	id := uuid.New()
	f.menu.On("Get", mock.Anything, "mama-put", id).Return(&model.MenuItem{ID: id}, nil)

	// The fixture pipeline accepts 1 MiB; the body cap adds 1 MiB of envelope.
	oversized := append(append([]byte(nil), pngBytes...), bytes.Repeat([]byte{0}, 3<<20)...)
	body, contentType := multipartBody(t, "file", "huge.png", oversized)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/mama-put/menu-items/"+id.String()+"/image", body)
	req.Header.Set("Content-Type", contentType)
	w := route(http.MethodPost, "/api/admin/{slug}/menu-items/{id}/image", f.handler.UploadMenuItemImage, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, model.ErrCodeTooLarge, decodeError(t, w).Error)
	f.cdn.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestAdminHandler_Hours(t *testing.T) {
	f := newAdminFixture()
	id := uuid.New()
	hour := &model.OpeningHour{ID: id, DayOfWeek: 5, OpenTime: "10:00", CloseTime: "23:00"}

	f.hours.On("Create", mock.Anything, "mama-put", mock.AnythingOfType("*model.OpeningHourInput")).Return(hour, nil)
	f.hours.On("Update", mock.Anything, "mama-put", id, mock.AnythingOfType("*model.OpeningHourInput")).
		Return(nil, model.ErrInvalidTime)
	f.hours.On("Delete", mock.Anything, "mama-put", id).Return(model.ErrNotFound)

	w := route(http.MethodPost, "/api/admin/{slug}/hours", f.handler.CreateHour,
		jsonRequest(http.MethodPost, "/api/admin/mama-put/hours", `{"dayOfWeek":5,"openTime":"10:00","closeTime":"23:00"}`))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = route(http.MethodPut, "/api/admin/{slug}/hours/{id}", f.handler.UpdateHour,
		jsonRequest(http.MethodPut, "/api/admin/mama-put/hours/"+id.String(), `{"openTime":"25:00"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeInvalidTime, decodeError(t, w).Error)

	w = route(http.MethodDelete, "/api/admin/{slug}/hours/{id}", f.handler.DeleteHour,
		jsonRequest(http.MethodDelete, "/api/admin/mama-put/hours/"+id.String(), ""))
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.hours.AssertExpectations(t)
}

func TestAdminHandler_UpsertInfo(t *testing.T) {
	f := newAdminFixture()

	f.info.On("Upsert", mock.Anything, "mama-put", mock.MatchedBy(func(in *model.RestaurantInfoInput) bool {
		return in.WhatsApp != nil && *in.WhatsApp == "+2348012345678" && in.Hero != nil && in.Hero.Title == "Mama Put"
	})).Return(&model.RestaurantInfo{WhatsApp: "+2348012345678", Hero: model.Section{Title: "Mama Put"}}, nil)

	w := route(http.MethodPut, "/api/admin/{slug}/info", f.handler.UpsertInfo,
		jsonRequest(http.MethodPut, "/api/admin/mama-put/info", `{"whatsapp":"+2348012345678","hero":{"title":"Mama Put"}}`))

	assert.Equal(t, http.StatusOK, w.Code)
	f.info.AssertExpectations(t)
}

func TestAdminHandler_Promos(t *testing.T) {
	f := newAdminFixture()

	f.promos.On("Create", mock.Anything, "mama-put", mock.MatchedBy(func(in *model.PromoBannerInput) bool {
		return in.Action != nil && in.Action.Type == model.ActionWhatsApp
	})).Return(&model.PromoBanner{ID: uuid.New(), Title: "Free drink", Active: true}, nil)
	f.promos.On("List", mock.Anything, "mama-put").Return([]model.PromoBanner{}, nil)

	w := route(http.MethodPost, "/api/admin/{slug}/promos", f.handler.CreatePromo,
		jsonRequest(http.MethodPost, "/api/admin/mama-put/promos", `{"title":"Free drink","action":{"type":"whatsapp","value":"+2348012345678"}}`))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = route(http.MethodGet, "/api/admin/{slug}/promos", f.handler.ListPromos,
		jsonRequest(http.MethodGet, "/api/admin/mama-put/promos", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	f.promos.AssertExpectations(t)
}

func TestTenantFrom_Empty(t *testing.T) {
	assert.Nil(t, tenantFrom(context.Background()))
}
