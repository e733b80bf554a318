package checkout

import (
	"fmt"
	"sort"

	"github.com/frozenfood/server/internal/module/catalog"
	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment"
)

// AllCategoriesID is the synthetic identifier of the "all categories"
// filter entry.
const AllCategoriesID = "all"

// CategoryOption is one selectable entry of the category filter.
type CategoryOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// CategoryFilter is the view model of the storefront category filter.
type CategoryFilter struct {
	Options  []CategoryOption `json:"options"`
	Disabled bool             `json:"disabled"`

	// Skeleton asks the client to render a loading placeholder instead
	// of options.
	Skeleton bool `json:"skeleton"`

	// EmptyMessage is non-empty when there is nothing to filter by.
	EmptyMessage string `json:"empty_message,omitempty"`
}

const emptyCategoriesMessage = "Категории пока не добавлены"

// BuildCategoryFilter renders the "all" entry plus the active categories
// ordered by sort key. Inactive categories never appear.
func BuildCategoryFilter(categories []*catalog.Category, selected string, loading, disabled bool) CategoryFilter {
	active := make([]*catalog.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].SortOrder != active[j].SortOrder {
			return active[i].SortOrder < active[j].SortOrder
		}
		return active[i].Name < active[j].Name
	})

	view := CategoryFilter{
		Disabled: loading || disabled,
	}
	if loading && len(categories) == 0 {
		view.Skeleton = true
		return view
	}
	if len(active) == 0 && !loading {
		view.EmptyMessage = emptyCategoriesMessage
		return view
	}

	view.Options = make([]CategoryOption, 0, len(active)+1)
	view.Options = append(view.Options, CategoryOption{
		ID:       AllCategoriesID,
		Name:     "Все категории",
		Selected: selected == AllCategoriesID || selected == "",
	})
	for _, c := range active {
		view.Options = append(view.Options, CategoryOption{
			ID:       c.ID.String(),
			Name:     c.Name,
			Selected: selected == c.ID.String(),
		})
	}
	return view
}

// MethodOption is one selectable payment method entry.
type MethodOption struct {
	ID          order.PaymentMethod `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Selected    bool                `json:"selected"`
}

// MethodSelector is the view model of the payment method picker.
type MethodSelector struct {
	Options  []MethodOption `json:"options"`
	Disabled bool           `json:"disabled"`

	// TrustCopy is the reassurance line shown under the list for the
	// selected method.
	TrustCopy string `json:"trust_copy,omitempty"`
}

func trustCopy(method order.PaymentMethod) string {
	switch method {
	case order.PaymentMethodTelegram:
		return "Безопасная оплата через Telegram Payments"
	case order.PaymentMethodCard:
		return "Реквизиты для перевода пришлём после оформления заказа"
	case order.PaymentMethodCash:
		return "Оплата наличными курьеру при получении"
	default:
		return ""
	}
}

// BuildMethodSelector renders only the enabled methods, marking the
// selected one.
func BuildMethodSelector(methods []payment.Method, selected order.PaymentMethod, disabled bool) MethodSelector {
	view := MethodSelector{Disabled: disabled}
	for _, m := range methods {
		if !m.Enabled {
			continue
		}
		view.Options = append(view.Options, MethodOption{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Selected:    m.ID == selected,
		})
		if m.ID == selected {
			view.TrustCopy = trustCopy(m.ID)
		}
	}
	return view
}

// Select resolves a click on the selector. It reports false when the
// selector is disabled or the identifier is not among the rendered
// options, in which case no selection must be made.
func (v MethodSelector) Select(id order.PaymentMethod) (order.PaymentMethod, bool) {
	if v.Disabled {
		return "", false
	}
	for _, opt := range v.Options {
		if opt.ID == id {
			return opt.ID, true
		}
	}
	return "", false
}

// PaymentButton is the view model of the checkout button.
type PaymentButton struct {
	Enabled bool   `json:"enabled"`
	Busy    bool   `json:"busy"`
	Label   string `json:"label"`
}

const busyLabel = "Обработка..."

// BuildPaymentButton renders the checkout button. Below the minimum
// order amount the button is disabled and the label names the shortfall.
// The threshold comes from configuration, independent of the advisory
// validator.
func BuildPaymentButton(amount int64, method order.PaymentMethod, loading bool, minOrderAmount int64) PaymentButton {
	if amount < minOrderAmount {
		shortfall := minOrderAmount - amount
		return PaymentButton{
			Label: fmt.Sprintf("Добавьте товаров ещё на %s", payment.FormatAmount(shortfall)),
		}
	}
	if loading {
		return PaymentButton{Busy: true, Label: busyLabel}
	}
	if method == order.PaymentMethodTelegram {
		return PaymentButton{
			Enabled: true,
			Label:   fmt.Sprintf("Оплатить %s", payment.FormatAmount(amount)),
		}
	}
	return PaymentButton{
		Enabled: true,
		Label:   fmt.Sprintf("Оформить заказ на %s", payment.FormatAmount(amount)),
	}
}
