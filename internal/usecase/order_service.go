package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/taabalselect/storefront/internal/domain"
)

// hiddenAmount stands in for the subtotal when prices are not shown
const hiddenAmount = "—"

// OrderServiceConfig holds configuration for order summaries
type OrderServiceConfig struct {
	Title          string
	Footer         string
	WhatsAppNumber string
	EmailTo        string
	Locale         language.Tag
	Currency       currency.Unit
	CurrencySymbol string

	// FormatMoney overrides the locale formatter
	FormatMoney func(float64) string
}

// OrderService renders the cart as an order message and builds the
// WhatsApp and e-mail links that carry it
type OrderService struct {
	config OrderServiceConfig
	format func(float64) string
}

// NewOrderService creates an order service
func NewOrderService(config OrderServiceConfig) *OrderService {
	if config.Title == "" {
		config.Title = "Pedido"
	}
	if config.Locale == language.Und {
		config.Locale = language.MustParse("es-MX")
	}
	if config.Currency == (currency.Unit{}) {
		config.Currency = currency.MXN
	}
	if config.CurrencySymbol == "" {
		config.CurrencySymbol = "$"
	}

	format := config.FormatMoney
	if format == nil {
		format = localeMoneyFormatter(config.Locale, config.Currency, config.CurrencySymbol)
	}
	return &OrderService{config: config, format: format}
}

// localeMoneyFormatter formats amounts with the locale's grouping and
// decimal marks and the currency's cash precision
func localeMoneyFormatter(tag language.Tag, unit currency.Unit, symbol string) func(float64) string {
	scale, _ := currency.Cash.Rounding(unit)
	return func(v float64) string {
		p := message.NewPrinter(tag)
		return symbol + p.Sprint(number.Decimal(v, number.Scale(scale)))
	}
}

// FormatMoney formats an amount in the configured currency
func (s *OrderService) FormatMoney(v float64) string {
	return s.format(v)
}

// VisibleSubtotal is the subtotal when prices are shown and 0 otherwise
func (s *OrderService) VisibleSubtotal(subtotal float64, vis domain.VisibilityFlags) float64 {
	if !vis.ShowPrice {
		return 0
	}
	return subtotal
}

// Text renders the order summary. Amounts are left out entirely when
// prices are hidden.
func (s *OrderService) Text(items []domain.LineItem, subtotal float64, vis domain.VisibilityFlags) string {
	lines := make([]string, 0, len(items)+6)
	lines = append(lines, s.config.Title, "")

	for _, it := range items {
		amount := ""
		if vis.ShowPrice {
			amount = " = " + s.format(float64(it.Qty)*it.Price)
		}
		lines = append(lines, fmt.Sprintf("• %s x %d%s", it.Name, it.Qty, amount))
	}

	total := hiddenAmount
	if vis.ShowPrice {
		total = s.format(subtotal)
	}
	lines = append(lines, "", "Subtotal: "+total)

	if s.config.Footer != "" {
		lines = append(lines, "", s.config.Footer)
	}
	return strings.Join(lines, "\n")
}

// Build renders the order text and both deep links
func (s *OrderService) Build(items []domain.LineItem, subtotal float64, vis domain.VisibilityFlags) domain.Order {
	text := s.Text(items, subtotal, vis)
	return domain.Order{
		Text:        text,
		WhatsAppURL: s.whatsAppURL(text),
		MailtoURL:   s.mailtoURL(text),
	}
}

func (s *OrderService) whatsAppURL(text string) string {
	return "https://wa.me/" + escapeComponent(s.config.WhatsAppNumber) + "?text=" + escapeComponent(text)
}

func (s *OrderService) mailtoURL(text string) string {
	return "mailto:" + escapeComponent(s.config.EmailTo) +
		"?subject=" + escapeComponent(s.config.Title) +
		"&body=" + escapeComponent(text)
}

// escapeComponent percent-encodes v for use inside a URL, spaces as %20
func escapeComponent(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
