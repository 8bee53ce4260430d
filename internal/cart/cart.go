// Package cart holds the customer's order basket and turns it into a
// WhatsApp checkout message.
package cart

import (
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// MaxQuantity caps a single line.
const MaxQuantity = 99

// Line is one menu item in the cart.
type Line struct {
	ItemID    uuid.UUID `json:"itemId"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
}

// Subtotal returns UnitPrice * Quantity.
func (l Line) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Cart is an ordered set of lines keyed by menu item. It is not safe for
// concurrent use.
type Cart struct {
	lines []Line
	index map[uuid.UUID]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[uuid.UUID]int)}
}

// Add puts qty of item in the cart, merging with an existing line.
// Non-positive quantities are ignored.
func (c *Cart) Add(item model.MenuItem, qty int) {
	if qty <= 0 {
		return
	}
	if i, ok := c.index[item.ID]; ok {
		c.lines[i].Quantity = min(c.lines[i].Quantity+qty, MaxQuantity)
		return
	}
	c.index[item.ID] = len(c.lines)
	c.lines = append(c.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  min(qty, MaxQuantity),
	})
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Count returns the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total returns the sum of all line subtotals.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// LineRequest is a client-side cart line; prices come from the menu.
type LineRequest struct {
	ItemID   uuid.UUID `json:"itemId"`
	Quantity int       `json:"quantity"`
}

// CheckoutRequest is the body of a checkout call.
type CheckoutRequest struct {
	Items        []LineRequest `json:"items"`
	CustomerName string        `json:"customerName"`
	Note         string        `json:"note"`
}

// Checkout is a priced cart with its WhatsApp order link.
type Checkout struct {
	Lines       []Line  `json:"lines"`
	Count       int     `json:"count"`
	Total       float64 `json:"total"`
	Message     string  `json:"message"`
	WhatsAppURL string  `json:"whatsappUrl"`
}

// Message renders the order text sent to the restaurant.
func Message(restaurant string, c *Cart, customer, note string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s, I would like to order:\n", restaurant)
	for _, l := range c.lines {
		fmt.Fprintf(&b, "- %dx %s (%s)\n", l.Quantity, l.Name, FormatPrice(l.Subtotal()))
	}
	fmt.Fprintf(&b, "Total: %s", FormatPrice(c.Total()))

	if customer = strings.TrimSpace(customer); customer != "" {
		fmt.Fprintf(&b, "\nName: %s", customer)
	}
	if note = strings.TrimSpace(note); note != "" {
		fmt.Fprintf(&b, "\nNote: %s", note)
	}
	return b.String()
}

// WhatsAppURL builds a wa.me link to number carrying message.
func WhatsAppURL(number, message string) string {
	return "https://wa.me/" + model.DigitsOnly(number) + "?text=" + url.QueryEscape(message)
}

// FormatPrice renders an amount in naira with thousands separators, e.g.
// ₦2,500 or ₦1,250.50.
func FormatPrice(amount float64) string {
	cents := int64(amount*100 + 0.5)
	if amount < 0 {
		cents = int64(amount*100 - 0.5)
	}

	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	whole := fmt.Sprintf("%d", cents/100)
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	out := sign + "₦" + grouped.String()
	if frac := cents % 100; frac != 0 {
		out += fmt.Sprintf(".%02d", frac)
	}
	return out
}
