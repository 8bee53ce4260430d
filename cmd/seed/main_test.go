package main

import (
	"context"
	"testing"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTenants struct {
	service.TenantService
	mock.Mock
}

func (m *mockTenants) Register(ctx context.Context, in *model.RegisterInput) (*model.Tenant, *model.Profile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Tenant), args.Get(1).(*model.Profile), args.Error(2)
}

type mockMenu struct {
	service.MenuItemService
	created []model.MenuItemInput
}

func (m *mockMenu) Create(_ context.Context, _ string, in *model.MenuItemInput) (*model.MenuItem, error) {
	m.created = append(m.created, *in)
	return &model.MenuItem{ID: uuid.New(), Name: *in.Name}, nil
}

type mockHours struct {
	service.OpeningHourService
	count int
}

func (m *mockHours) Create(_ context.Context, _ string, in *model.OpeningHourInput) (*model.OpeningHour, error) {
	m.count++
	return &model.OpeningHour{DayOfWeek: *in.DayOfWeek}, nil
}

type mockInfo struct {
	service.RestaurantInfoService
	saved *model.RestaurantInfoInput
}

func (m *mockInfo) Upsert(_ context.Context, _ string, in *model.RestaurantInfoInput) (*model.RestaurantInfo, error) {
	m.saved = in
	return &model.RestaurantInfo{}, nil
}

type mockPromos struct {
	service.PromoBannerService
	created []model.PromoBannerInput
}

func (m *mockPromos) Create(_ context.Context, _ string, in *model.PromoBannerInput) (*model.PromoBanner, error) {
	m.created = append(m.created, *in)
	return &model.PromoBanner{Title: *in.Title}, nil
}

func TestParseFixture_Demo(t *testing.T) {
	f, err := parseFixture(demoFixture)
	require.NoError(t, err)

	assert.Equal(t, "Mama Put Kitchen", f.Restaurant)
	assert.Equal(t, "+2348012345678", f.Info.WhatsApp)
	assert.Equal(t, "Home cooking in Yaba, served hot", f.Info.Hero.Subtitle)
	assert.Len(t, f.Menu, 7)
	assert.Len(t, f.Hours, 7)
	require.Len(t, f.Promos, 2)
	assert.Equal(t, model.ActionWhatsApp, f.Promos[0].Action.Type)
	assert.Equal(t, "Hi Mama Put, I'd like the Friday special", f.Promos[0].Action.Metadata["message"])

	for _, m := range f.Menu {
		assert.True(t, m.Category.Valid(), m.Name)
	}
}

func TestParseFixture_Invalid(t *testing.T) {
	_, err := parseFixture([]byte("menu: ["))
	assert.Error(t, err)

	_, err = parseFixture([]byte("restaurant: Bukka Hut"))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	f, err := parseFixture(demoFixture)
	require.NoError(t, err)

	tenants := new(mockTenants)
	tenants.On("Register", mock.Anything, mock.MatchedBy(func(in *model.RegisterInput) bool {
		return in.RestaurantName == "Mama Put Kitchen" && in.Email == "demo@mamaput.ng"
	})).Return(&model.Tenant{ID: uuid.New(), Slug: "mama-put-kitchen"}, &model.Profile{ID: uuid.New()}, nil)

	menu, hours, info, promos := &mockMenu{}, &mockHours{}, &mockInfo{}, &mockPromos{}
	s := services{tenants: tenants, menu: menu, hours: hours, info: info, promos: promos}

	require.NoError(t, seed(context.Background(), s, f, zerolog.Nop()))

	require.Len(t, menu.created, 7)
	assert.True(t, *menu.created[0].Available)
	assert.False(t, *menu.created[6].Available)
	assert.True(t, *menu.created[2].Featured)
	assert.Equal(t, 7, hours.count)
	require.NotNil(t, info.saved)
	assert.Equal(t, "Mama Put Kitchen", info.saved.Hero.Title)
	require.Len(t, promos.created, 2)
	assert.True(t, *promos.created[0].Active)
	tenants.AssertExpectations(t)
}

func TestSeed_AlreadySeeded(t *testing.T) {
	f, err := parseFixture(demoFixture)
	require.NoError(t, err)

	tenants := new(mockTenants)
	tenants.On("Register", mock.Anything, mock.Anything).Return(nil, nil, model.ErrConflict)
	menu := &mockMenu{}

	err = seed(context.Background(), services{tenants: tenants, menu: menu}, f, zerolog.Nop())

	require.NoError(t, err)
	assert.Empty(t, menu.created)
}
