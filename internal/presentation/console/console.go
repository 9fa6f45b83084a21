package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	appcatalog "github.com/marchworks/stockroom/internal/application/catalog"
	apporder "github.com/marchworks/stockroom/internal/application/order"
	"github.com/marchworks/stockroom/internal/application/session"
	domcatalog "github.com/marchworks/stockroom/internal/domain/catalog"
	domorder "github.com/marchworks/stockroom/internal/domain/order"
	"github.com/marchworks/stockroom/internal/domain/user"
	"github.com/marchworks/stockroom/internal/pkg/logging"
	"go.uber.org/zap"
)

const (
	sentinelCancel = "back"
	sentinelDone   = "done"
)

// Console is a thin adapter over the application services: each menu
// action maps to exactly one service call. It reads line-based input from
// the injected reader, so tests can script full sessions.
type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	sessions *session.Service
	catalog  *appcatalog.Service
	orders   *apporder.Service
	log      *zap.Logger
}

func New(in io.Reader, out io.Writer, sessions *session.Service, catalogSvc *appcatalog.Service, orderSvc *apporder.Service, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.L()
	}
	return &Console{
		in:       bufio.NewScanner(in),
		out:      out,
		sessions: sessions,
		catalog:  catalogSvc,
		orders:   orderSvc,
		log:      logger.With(zap.String("component", "console")),
	}
}

// Run drives one login session to completion: prompt for credentials,
// dispatch on the role menu until logout or end of input.
func (c *Console) Run(ctx context.Context) error {
	ctx = logging.ContextWithLogger(ctx, c.log)

	u, ok := c.login(ctx)
	if !ok {
		return nil
	}

	switch u.Role {
	case user.RoleAdministrator:
		c.adminMenu(ctx)
	case user.RoleRegularUser:
		c.userMenu(ctx)
	}
	return nil
}

func (c *Console) login(ctx context.Context) (user.User, bool) {
	for {
		username, ok := c.prompt("Enter username: ")
		if !ok {
			return user.User{}, false
		}
		secret, ok := c.prompt("Enter password: ")
		if !ok {
			return user.User{}, false
		}
		u, err := c.sessions.Login(ctx, username, secret)
		if err != nil {
			c.printf("Invalid credentials. Try again.\n")
			continue
		}
		c.printf("Welcome, %s!\n", u.Username)
		return u, true
	}
}

func (c *Console) adminMenu(ctx context.Context) {
	for {
		if _, err := c.sessions.RequireRole(user.RoleAdministrator); err != nil {
			return
		}
		c.printf("\nAdmin Menu\n")
		c.printf("1. Add Product\n")
		c.printf("2. Update Product\n")
		c.printf("3. Delete Product\n")
		c.printf("4. View All Products\n")
		c.printf("5. View Orders\n")
		c.printf("6. Confirm Order\n")
		c.printf("7. Reject Order\n")
		c.printf("8. Logout\n")

		choice, ok := c.prompt("Select an option: ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			c.addProduct(ctx)
		case "2":
			c.updateProduct(ctx)
		case "3":
			c.deleteProduct(ctx)
		case "4":
			c.viewAllProducts(ctx)
		case "5":
			c.viewOrders(ctx, "")
		case "6":
			c.resolveOrder(ctx, "confirm")
		case "7":
			c.resolveOrder(ctx, "reject")
		case "8":
			c.logout(ctx)
			return
		}
	}
}

func (c *Console) userMenu(ctx context.Context) {
	for {
		if _, err := c.sessions.RequireRole(user.RoleRegularUser); err != nil {
			return
		}
		c.printf("\nUser Menu\n")
		c.printf("1. Place Order\n")
		c.printf("2. View Orders\n")
		c.printf("3. Remove Order\n")
		c.printf("4. Logout\n")

		choice, ok := c.prompt("Select an option: ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			c.placeOrder(ctx)
		case "2":
			u, _ := c.sessions.Current()
			c.viewOrders(ctx, u.Username)
		case "3":
			c.removeOrder(ctx)
		case "4":
			c.logout(ctx)
			return
		}
	}
}

func (c *Console) logout(ctx context.Context) {
	if err := c.sessions.Logout(ctx); err == nil {
		c.printf("Logged out successfully.\n")
	}
}

func (c *Console) addProduct(ctx context.Context) {
	c.printf("\nAdd Product Menu\n")
	for {
		id, ok := c.prompt("Enter product ID (leave blank for auto-assign, 'back' to cancel): ")
		if !ok || isCancel(id) {
			return
		}
		name, ok := c.prompt("Enter product name (or 'back' to cancel): ")
		if !ok || isCancel(name) {
			return
		}
		category, ok := c.prompt("Enter product category (or 'back' to cancel): ")
		if !ok || isCancel(category) {
			return
		}
		priceText, ok := c.prompt("Enter product price (or 'back' to cancel): ")
		if !ok || isCancel(priceText) {
			return
		}
		stockText, ok := c.prompt("Enter stock quantity (or 'back' to cancel): ")
		if !ok || isCancel(stockText) {
			return
		}

		price, perr := strconv.ParseFloat(priceText, 64)
		stock, serr := strconv.Atoi(stockText)
		if perr != nil || serr != nil {
			c.printf("Invalid input. Please enter correct values.\n")
			continue
		}

		p, err := c.catalog.AddProduct(ctx, appcatalog.AddProductInput{
			ID:       id,
			Name:     name,
			Category: category,
			Price:    price,
			Stock:    stock,
		})
		if err != nil {
			c.printError(err)
			return
		}
		c.printf("Product added successfully! Details: %s\n", formatProduct(p))
		return
	}
}

func (c *Console) updateProduct(ctx context.Context) {
	c.printf("\nUpdate Product Menu\n")
	for {
		id, ok := c.prompt("Enter product ID to update (or 'back' to cancel): ")
		if !ok || isCancel(id) {
			return
		}

		var upd domcatalog.FieldUpdate
		name, ok := c.prompt("Enter new product name (leave blank to keep unchanged, 'back' to cancel): ")
		if !ok || isCancel(name) {
			return
		}
		if name != "" {
			upd.Name = &name
		}
		category, ok := c.prompt("Enter new product category (leave blank to keep unchanged, 'back' to cancel): ")
		if !ok || isCancel(category) {
			return
		}
		if category != "" {
			upd.Category = &category
		}
		priceText, ok := c.prompt("Enter new product price (leave blank to keep unchanged, 'back' to cancel): ")
		if !ok || isCancel(priceText) {
			return
		}
		deltaText, ok := c.prompt("Enter stock adjustment (leave blank to keep unchanged, 'back' to cancel): ")
		if !ok || isCancel(deltaText) {
			return
		}

		if priceText != "" {
			price, err := strconv.ParseFloat(priceText, 64)
			if err != nil {
				c.printf("Invalid input. Please enter valid values.\n")
				continue
			}
			upd.Price = &price
		}
		if deltaText != "" {
			delta, err := strconv.Atoi(deltaText)
			if err != nil {
				c.printf("Invalid input. Please enter valid values.\n")
				continue
			}
			upd.StockDelta = &delta
		}

		if _, err := c.catalog.UpdateProduct(ctx, id, upd); err != nil {
			c.printError(err)
			return
		}
		c.printf("Product updated successfully.\n")
		return
	}
}

func (c *Console) deleteProduct(ctx context.Context) {
	c.printf("\nDelete Product Menu\n")
	id, ok := c.prompt("Enter product ID to delete (or 'back' to cancel): ")
	if !ok || isCancel(id) {
		return
	}
	if err := c.catalog.DeleteProduct(ctx, id); err != nil {
		c.printError(err)
		return
	}
	c.printf("Product ID %s deleted successfully.\n", id)
}

func (c *Console) viewAllProducts(ctx context.Context) {
	products := c.catalog.ListProducts(ctx)
	if len(products) == 0 {
		c.printf("No products in inventory.\n")
		return
	}
	threshold := c.catalog.LowStockThreshold()
	for _, p := range products {
		c.printf("%s\n", formatProduct(p))
		if p.Stock < threshold {
			c.printf("*** Low stock alert for %s! ***\n", p.Name)
		}
	}
}

func (c *Console) placeOrder(ctx context.Context) {
	c.printf("\nPlace Order Menu\n")
	var reqs []apporder.LineRequest
	for {
		c.viewAllProducts(ctx)
		id, ok := c.prompt("Enter product ID to order (or 'done' to finish, 'back' to cancel): ")
		if !ok || isCancel(id) {
			return
		}
		if strings.EqualFold(id, sentinelDone) {
			if len(reqs) == 0 {
				c.printf("You need to add at least one product to the order.\n")
				continue
			}
			break
		}

		qtyText, ok := c.prompt(fmt.Sprintf("Enter quantity for product %s: ", id))
		if !ok || isCancel(qtyText) {
			return
		}
		qty, err := strconv.Atoi(qtyText)
		if err != nil || qty <= 0 {
			c.printf("Invalid input for quantity.\n")
			continue
		}

		p, err := c.catalog.GetProduct(ctx, id)
		if err != nil || p.Stock < qty+pendingQuantity(reqs, id) {
			c.printf("Insufficient stock!\n")
			continue
		}
		reqs = append(reqs, apporder.LineRequest{ProductID: id, Quantity: qty})
		c.printf("Added %d of %s to the order.\n", qty, id)
	}

	u, _ := c.sessions.Current()
	placed, err := c.orders.PlaceOrder(ctx, u.Username, reqs)
	if err != nil && placed == nil {
		c.printError(err)
		return
	}
	c.printf("Order placed successfully! %s\n", formatOrder(placed))
	if err != nil {
		c.printError(err)
	}
}

func (c *Console) viewOrders(ctx context.Context, username string) {
	var orders []*domorder.Order
	if username == "" {
		orders = c.orders.ListOrders(ctx)
	} else {
		orders = c.orders.ListOrdersFor(ctx, username)
	}
	if len(orders) == 0 {
		c.printf("No orders placed.\n")
		return
	}
	for _, o := range orders {
		c.printf("%s\n", formatOrder(o))
	}
}

func (c *Console) removeOrder(ctx context.Context) {
	u, _ := c.sessions.Current()
	orders := c.orders.ListOrdersFor(ctx, u.Username)
	if len(orders) == 0 {
		c.printf("No orders to remove.\n")
		return
	}
	c.printf("\nYour Orders:\n")
	for _, o := range orders {
		c.printf("%s\n", formatOrder(o))
	}

	id, ok := c.promptOrderID("Enter the order ID to remove: ")
	if !ok {
		return
	}
	if err := c.orders.RemoveOrder(ctx, id); err != nil {
		c.printError(err)
		return
	}
	c.printf("Order %d removed!\n", id)
}

func (c *Console) resolveOrder(ctx context.Context, action string) {
	orders := c.orders.ListOrders(ctx)
	if len(orders) == 0 {
		c.printf("No orders to %s.\n", action)
		return
	}
	c.printf("\nPending Orders:\n")
	for _, o := range orders {
		c.printf("%s\n", formatOrder(o))
	}

	id, ok := c.promptOrderID(fmt.Sprintf("Enter the order ID to %s: ", action))
	if !ok {
		return
	}

	var err error
	if action == "confirm" {
		err = c.orders.ConfirmOrder(ctx, id)
	} else {
		err = c.orders.RejectOrder(ctx, id)
	}
	if err != nil {
		c.printError(err)
		return
	}
	c.printf("Order %d %sed!\n", id, action)
}

func (c *Console) promptOrderID(label string) (int64, bool) {
	text, ok := c.prompt(label)
	if !ok || isCancel(text) {
		return 0, false
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		c.printf("Invalid order ID.\n")
		return 0, false
	}
	return id, true
}

func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) printError(err error) {
	switch {
	case errors.Is(err, domcatalog.ErrNotFound):
		c.printf("Error: product not found.\n")
	case errors.Is(err, domcatalog.ErrConflict):
		c.printf("Error: product ID already exists.\n")
	case errors.Is(err, domcatalog.ErrInsufficientStock):
		c.printf("Insufficient stock!\n")
	case errors.Is(err, domcatalog.ErrInvalidInput):
		c.printf("Invalid input. Please enter correct values.\n")
	case errors.Is(err, domorder.ErrNotFound):
		c.printf("Order ID not found.\n")
	case errors.Is(err, domcatalog.ErrPersistence):
		c.printf("Warning: inventory could not be saved to disk.\n")
	default:
		c.printf("Error: %v\n", err)
	}
}

func pendingQuantity(reqs []apporder.LineRequest, productID string) int {
	total := 0
	for _, r := range reqs {
		if r.ProductID == productID {
			total += r.Quantity
		}
	}
	return total
}

func isCancel(s string) bool { return strings.EqualFold(s, sentinelCancel) }

func formatProduct(p *domcatalog.Product) string {
	return fmt.Sprintf("ID: %s, Name: %s, Category: %s, Price: $%.2f, Stock: %d",
		p.ID, p.Name, p.Category, p.Price, p.Stock)
}

func formatOrder(o *domorder.Order) string {
	details := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		details = append(details, fmt.Sprintf("%s (Qty: %d)", l.ProductID, l.Quantity))
	}
	return fmt.Sprintf("Order ID: %d, User: %s, Products: %s, Total Amount: $%.2f",
		o.ID, o.Username, strings.Join(details, ", "), o.Total)
}
