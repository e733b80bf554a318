package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frozenfood/server/internal/module/catalog"
	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment"
)

func TestBuildCategoryFilter_ActiveSortedPlusAll(t *testing.T) {
	first := &catalog.Category{ID: uuid.New(), Name: "Пельмени", IsActive: true, SortOrder: 2}
	second := &catalog.Category{ID: uuid.New(), Name: "Вареники", IsActive: true, SortOrder: 1}
	inactive := &catalog.Category{ID: uuid.New(), Name: "Архив", IsActive: false, SortOrder: 0}

	view := BuildCategoryFilter([]*catalog.Category{first, second, inactive}, "", false, false)

	require.Len(t, view.Options, 3)
	assert.Equal(t, AllCategoriesID, view.Options[0].ID)
	assert.True(t, view.Options[0].Selected)
	assert.Equal(t, second.ID.String(), view.Options[1].ID)
	assert.Equal(t, first.ID.String(), view.Options[2].ID)
	assert.False(t, view.Disabled)
	assert.False(t, view.Skeleton)
	assert.Empty(t, view.EmptyMessage)
}

func TestBuildCategoryFilter_SelectionHighlight(t *testing.T) {
	c := &catalog.Category{ID: uuid.New(), Name: "Пельмени", IsActive: true}

	view := BuildCategoryFilter([]*catalog.Category{c}, c.ID.String(), false, false)

	require.Len(t, view.Options, 2)
	assert.False(t, view.Options[0].Selected)
	assert.True(t, view.Options[1].Selected)
}

func TestBuildCategoryFilter_SkeletonWhileLoadingWithoutData(t *testing.T) {
	view := BuildCategoryFilter(nil, "", true, false)

	assert.True(t, view.Skeleton)
	assert.True(t, view.Disabled)
	assert.Empty(t, view.Options)
}

func TestBuildCategoryFilter_EmptyStateAfterLoading(t *testing.T) {
	inactive := &catalog.Category{ID: uuid.New(), Name: "Архив", IsActive: false}

	view := BuildCategoryFilter([]*catalog.Category{inactive}, "", false, false)

	assert.False(t, view.Skeleton)
	assert.NotEmpty(t, view.EmptyMessage)
	assert.Empty(t, view.Options)
}

func TestBuildCategoryFilter_DisabledWhileLoading(t *testing.T) {
	c := &catalog.Category{ID: uuid.New(), Name: "Пельмени", IsActive: true}

	view := BuildCategoryFilter([]*catalog.Category{c}, "", true, false)
	assert.True(t, view.Disabled)

	view = BuildCategoryFilter([]*catalog.Category{c}, "", false, true)
	assert.True(t, view.Disabled)
}

func selectorMethods() []payment.Method {
	return []payment.Method{
		{ID: order.PaymentMethodTelegram, Name: "Оплата через Telegram", Enabled: true},
		{ID: order.PaymentMethodCard, Name: "Перевод на карту", Enabled: false},
		{ID: order.PaymentMethodCash, Name: "Наличными при получении", Enabled: true},
	}
}

func TestBuildMethodSelector_EnabledOnly(t *testing.T) {
	view := BuildMethodSelector(selectorMethods(), order.PaymentMethodTelegram, false)

	require.Len(t, view.Options, 2)
	assert.Equal(t, order.PaymentMethodTelegram, view.Options[0].ID)
	assert.True(t, view.Options[0].Selected)
	assert.Equal(t, order.PaymentMethodCash, view.Options[1].ID)
	assert.False(t, view.Options[1].Selected)
	assert.NotEmpty(t, view.TrustCopy)
}

func TestBuildMethodSelector_TrustCopyFollowsSelection(t *testing.T) {
	tg := BuildMethodSelector(selectorMethods(), order.PaymentMethodTelegram, false)
	cash := BuildMethodSelector(selectorMethods(), order.PaymentMethodCash, false)

	assert.NotEqual(t, tg.TrustCopy, cash.TrustCopy)
	assert.Contains(t, cash.TrustCopy, "наличными")
}

func TestMethodSelector_DisabledSuppressesSelection(t *testing.T) {
	view := BuildMethodSelector(selectorMethods(), order.PaymentMethodTelegram, true)

	for _, opt := range view.Options {
		_, ok := view.Select(opt.ID)
		assert.False(t, ok)
	}
}

func TestMethodSelector_SelectEnabledOption(t *testing.T) {
	view := BuildMethodSelector(selectorMethods(), order.PaymentMethodTelegram, false)

	chosen, ok := view.Select(order.PaymentMethodCash)
	require.True(t, ok)
	assert.Equal(t, order.PaymentMethodCash, chosen)

	// Disabled methods are not rendered and cannot be chosen.
	_, ok = view.Select(order.PaymentMethodCard)
	assert.False(t, ok)
}

func TestBuildPaymentButton_BelowMinimumShowsShortfall(t *testing.T) {
	btn := BuildPaymentButton(1200, order.PaymentMethodTelegram, false, 1500)

	assert.False(t, btn.Enabled)
	assert.False(t, btn.Busy)
	assert.Contains(t, btn.Label, "300₽")
}

func TestBuildPaymentButton_AtMinimumEnabled(t *testing.T) {
	btn := BuildPaymentButton(1500, order.PaymentMethodTelegram, false, 1500)

	assert.True(t, btn.Enabled)
	assert.Contains(t, btn.Label, "Оплатить")
	assert.Contains(t, btn.Label, "1500₽")
}

func TestBuildPaymentButton_LabelByMethod(t *testing.T) {
	pay := BuildPaymentButton(2000, order.PaymentMethodTelegram, false, 1500)
	place := BuildPaymentButton(2000, order.PaymentMethodCash, false, 1500)

	assert.Contains(t, pay.Label, "Оплатить")
	assert.Contains(t, place.Label, "Оформить заказ")
}

func TestBuildPaymentButton_Busy(t *testing.T) {
	btn := BuildPaymentButton(2000, order.PaymentMethodTelegram, true, 1500)

	assert.True(t, btn.Busy)
	assert.False(t, btn.Enabled)
	assert.Equal(t, "Обработка...", btn.Label)
}
