// Package checkout holds the client-side session state for building an
// order: the current DRAFT order, loading and error flags, and a product
// browsing slice of the catalog. A Store is constructed per checkout flow
// and owned by its caller; there is no process-wide current order.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/glassgo/planning-api/internal/orders/domain"
)

// OrderClient is the slice of the orders backend the store needs: creating
// the order it has been building.
type OrderClient interface {
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
}

// ProductCatalog is a read-only lookup over the product catalog.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Snapshot is the state published to subscribers after every mutation. The
// order is a deep copy; subscribers may keep or mutate it freely.
type Snapshot struct {
	Order     domain.Order
	IsLoading bool
	LastError string
}

// Store holds exactly one in-progress order. All mutations are synchronous
// and total: validation failures land in LastError and leave the order
// untouched, they are never returned as errors. Only SubmitOrder performs
// I/O and reports failure through its return value as well.
type Store struct {
	mu sync.Mutex

	order     *domain.Order
	isLoading bool
	lastError string

	products        []domain.Product
	selectedProduct *domain.Product
	productsError   string
	searchTerm      string

	client  OrderClient
	catalog ProductCatalog
	vatRate float64
	subs    []func(Snapshot)
}

// NewStore returns a store with a fresh empty DRAFT order. A vatRate of zero
// or less falls back to domain.DefaultVATRate.
func NewStore(client OrderClient, catalog ProductCatalog, vatRate float64) *Store {
	return &Store{
		order:   domain.NewOrder(vatRate),
		client:  client,
		catalog: catalog,
		vatRate: vatRate,
	}
}

// Subscribe registers a callback invoked synchronously with a snapshot after
// every mutation, one notification per operation.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// CurrentOrder returns a deep copy of the order being built.
func (s *Store) CurrentOrder() domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.order.Clone()
}

// IsLoading reports whether a submission is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// LastError returns the most recent rejected-mutation or submission error
// message, or the empty string.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// UpdateDeliveryInformation replaces the order's delivery details.
func (s *Store) UpdateDeliveryInformation(info domain.DeliveryInformation) {
	s.mu.Lock()
	s.order.DeliveryInformation = info
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// AddOrderItem adds the item to the order, merging quantities
// unconditionally when a line for the same product already exists.
func (s *Store) AddOrderItem(item domain.OrderItem) {
	s.mu.Lock()
	s.order.AddItem(item)
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// RemoveOrderItem removes the line for the product; absent products are a
// no-op.
func (s *Store) RemoveOrderItem(productID int64) {
	s.mu.Lock()
	s.order.RemoveItem(productID)
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// UpdateOrderItemQuantity sets the quantity on the line for the product;
// absent products are a no-op.
func (s *Store) UpdateOrderItemQuantity(productID int64, quantity int) {
	s.mu.Lock()
	s.order.UpdateItemQuantity(productID, quantity)
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// AddProductToOrder validates availability and stock before adding the
// product as a line item. When the product already has a line, stock must
// cover the combined quantity or the order is left unchanged. Rejections
// are reported through LastError, not returned.
func (s *Store) AddProductToOrder(product domain.Product, quantity int) {
	s.mu.Lock()

	if quantity < 1 {
		quantity = 1
	}

	switch {
	case !product.IsAvailable:
		s.lastError = "Product is not available"
	case !product.HasEnoughStock(quantity):
		s.lastError = fmt.Sprintf("Insufficient stock. Available: %d", product.StockQuantity)
	default:
		if existing, ok := s.order.Item(product.ID); ok {
			merged := existing.Quantity + quantity
			if !product.HasEnoughStock(merged) {
				s.lastError = fmt.Sprintf("Insufficient stock for total quantity: %d", merged)
				break
			}
			s.order.UpdateItemQuantity(product.ID, merged)
		} else {
			s.order.AddItem(domain.NewOrderItem(product, quantity))
		}
	}

	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// SubmitOrder sends a deep copy of the current order to the backend. On
// success the store resets to a fresh DRAFT order and the persisted order is
// returned. On failure the in-progress order is preserved for retry and the
// error is surfaced both in LastError and the return value.
func (s *Store) SubmitOrder(ctx context.Context) (*domain.Order, error) {
	s.mu.Lock()
	s.isLoading = true
	s.lastError = ""
	submitted := s.order.Clone()
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)

	created, err := s.client.CreateOrder(ctx, *submitted)

	s.mu.Lock()
	s.isLoading = false
	if err != nil {
		s.lastError = fmt.Sprintf("Error creating order: %v", err)
	} else {
		s.order = domain.NewOrder(s.vatRate)
	}
	snapshot, subs = s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)

	if err != nil {
		return nil, err
	}
	return created, nil
}

// ResetOrder discards the current order, starts a fresh empty DRAFT order
// and clears any stored error.
func (s *Store) ResetOrder() {
	s.mu.Lock()
	s.order = domain.NewOrder(s.vatRate)
	s.lastError = ""
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// ClearError clears the stored error without touching the order.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// LoadProducts fetches the catalog. Failures land in ProductsError and keep
// the previously loaded products.
func (s *Store) LoadProducts(ctx context.Context) {
	products, err := s.catalog.ListProducts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.productsError = fmt.Sprintf("Error loading products: %v", err)
		return
	}
	s.products = products
	s.productsError = ""
}

// SetSearchTerm sets the term used by FilteredProducts.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
}

// FilteredProducts returns loaded products whose name, description or
// category contains the search term, case-insensitively. An empty term
// returns everything.
func (s *Store) FilteredProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(s.searchTerm)
	if term == "" {
		return append([]domain.Product(nil), s.products...)
	}

	var matched []domain.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			matched = append(matched, p)
		}
	}
	return matched
}

// AvailableProducts returns loaded products that are available and in stock.
func (s *Store) AvailableProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var available []domain.Product
	for _, p := range s.products {
		if p.IsAvailable && p.StockQuantity > 0 {
			available = append(available, p)
		}
	}
	return available
}

// SelectProduct marks a product as selected.
func (s *Store) SelectProduct(product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedProduct = &product
}

// SelectedProduct returns the selected product, if any.
func (s *Store) SelectedProduct() (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedProduct == nil {
		return domain.Product{}, false
	}
	return *s.selectedProduct, true
}

// ClearProductSelection drops the current selection.
func (s *Store) ClearProductSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedProduct = nil
}

// ProductsError returns the most recent catalog loading error message.
func (s *Store) ProductsError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productsError
}

// snapshotLocked captures the published state and the subscriber list while
// the mutex is held. Callbacks run only after the mutex is released, so a
// subscriber may read back from the store.
func (s *Store) snapshotLocked() (Snapshot, []func(Snapshot)) {
	snapshot := Snapshot{
		Order:     *s.order.Clone(),
		IsLoading: s.isLoading,
		LastError: s.lastError,
	}
	return snapshot, s.subs
}

func notify(snapshot Snapshot, subs []func(Snapshot)) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
