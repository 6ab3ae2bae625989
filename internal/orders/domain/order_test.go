package domain_test

import (
	"math"
	"testing"

	"github.com/glassgo/planning-api/internal/orders/domain"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func assertTotalsConsistent(t *testing.T, order *domain.Order) {
	t.Helper()

	subtotal := 0.0
	for _, item := range order.Items {
		subtotal += item.TotalPrice
	}
	if !almostEqual(order.Subtotal, subtotal) {
		t.Errorf("subtotal = %v, want sum of line totals %v", order.Subtotal, subtotal)
	}
	if !almostEqual(order.VATAmount, order.Subtotal*order.VATRate) {
		t.Errorf("vat amount = %v, want %v", order.VATAmount, order.Subtotal*order.VATRate)
	}
	if !almostEqual(order.Total, order.Subtotal+order.VATAmount) {
		t.Errorf("total = %v, want %v", order.Total, order.Subtotal+order.VATAmount)
	}
}

func TestNewOrderStartsEmptyDraft(t *testing.T) {
	order := domain.NewOrder(0)

	if order.Status != domain.StatusDraft {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusDraft)
	}
	if len(order.Items) != 0 {
		t.Errorf("items = %d, want 0", len(order.Items))
	}
	if order.VATRate != domain.DefaultVATRate {
		t.Errorf("vat rate = %v, want %v", order.VATRate, domain.DefaultVATRate)
	}
	if order.Subtotal != 0 || order.VATAmount != 0 || order.Total != 0 {
		t.Errorf("totals = %v/%v/%v, want all zero", order.Subtotal, order.VATAmount, order.Total)
	}
}

func TestOrderTotalsInvariantAcrossMutations(t *testing.T) {
	coffee := domain.Product{ID: 1, Name: "Coffee", Price: 10.5}
	tea := domain.Product{ID: 2, Name: "Tea", Price: 7.25}
	sugar := domain.Product{ID: 3, Name: "Sugar", Price: 3.8}

	order := domain.NewOrder(0.18)

	steps := []struct {
		name   string
		mutate func()
	}{
		{"add coffee", func() { order.AddItem(domain.NewOrderItem(coffee, 2)) }},
		{"add tea", func() { order.AddItem(domain.NewOrderItem(tea, 1)) }},
		{"merge coffee", func() { order.AddItem(domain.NewOrderItem(coffee, 3)) }},
		{"add sugar", func() { order.AddItem(domain.NewOrderItem(sugar, 4)) }},
		{"bump tea quantity", func() { order.UpdateItemQuantity(tea.ID, 6) }},
		{"remove sugar", func() { order.RemoveItem(sugar.ID) }},
		{"remove absent product", func() { order.RemoveItem(999) }},
		{"update absent product", func() { order.UpdateItemQuantity(999, 2) }},
	}

	for _, step := range steps {
		step.mutate()
		t.Run(step.name, func(t *testing.T) {
			assertTotalsConsistent(t, order)
		})
	}
}

func TestOrderAddItemMergesDuplicateProduct(t *testing.T) {
	product := domain.Product{ID: 7, Name: "Crate", Price: 12.0}
	order := domain.NewOrder(0.18)

	order.AddItem(domain.NewOrderItem(product, 2))
	order.AddItem(domain.NewOrderItem(product, 3))

	if len(order.Items) != 1 {
		t.Fatalf("lines = %d, want 1", len(order.Items))
	}
	item := order.Items[0]
	if item.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", item.Quantity)
	}
	if !almostEqual(item.TotalPrice, 5*12.0) {
		t.Errorf("line total = %v, want %v", item.TotalPrice, 5*12.0)
	}
	if order.ItemCount() != 5 {
		t.Errorf("item count = %d, want 5", order.ItemCount())
	}
	assertTotalsConsistent(t, order)
}

func TestOrderRemoveItemIsIdempotent(t *testing.T) {
	product := domain.Product{ID: 4, Name: "Pallet", Price: 99.9}
	order := domain.NewOrder(0.18)
	order.AddItem(domain.NewOrderItem(product, 1))

	subtotal, vat, total := order.Subtotal, order.VATAmount, order.Total

	order.RemoveItem(12345)

	if order.Subtotal != subtotal || order.VATAmount != vat || order.Total != total {
		t.Errorf("totals changed after removing absent product: %v/%v/%v", order.Subtotal, order.VATAmount, order.Total)
	}
	if len(order.Items) != 1 {
		t.Errorf("lines = %d, want 1", len(order.Items))
	}

	order.RemoveItem(product.ID)
	if len(order.Items) != 0 {
		t.Errorf("lines = %d, want 0", len(order.Items))
	}
	if order.Total != 0 {
		t.Errorf("total = %v, want 0", order.Total)
	}
}

func TestOrderUpdateItemQuantityRecomputesTotals(t *testing.T) {
	product := domain.Product{ID: 1, Name: "Box", Price: 10}
	order := domain.NewOrder(0.18)
	order.AddItem(domain.NewOrderItem(product, 2))

	order.UpdateItemQuantity(1, 4)

	item, ok := order.Item(1)
	if !ok {
		t.Fatal("expected line for product 1")
	}
	if !almostEqual(item.TotalPrice, 40) {
		t.Errorf("line total = %v, want 40", item.TotalPrice)
	}
	if !almostEqual(order.Subtotal, 40) {
		t.Errorf("subtotal = %v, want 40", order.Subtotal)
	}
	if !almostEqual(order.VATAmount, 40*0.18) {
		t.Errorf("vat amount = %v, want %v", order.VATAmount, 40*0.18)
	}
	if !almostEqual(order.Total, 40*1.18) {
		t.Errorf("total = %v, want %v", order.Total, 40*1.18)
	}
}

func TestOrderCloneIsIndependent(t *testing.T) {
	product := domain.Product{ID: 1, Name: "Box", Price: 10}
	order := domain.NewOrder(0.18)
	order.AddItem(domain.NewOrderItem(product, 2))

	clone := order.Clone()
	clone.AddItem(domain.NewOrderItem(domain.Product{ID: 2, Name: "Lid", Price: 1}, 1))
	clone.UpdateItemQuantity(1, 9)

	if len(order.Items) != 1 {
		t.Errorf("original lines = %d, want 1", len(order.Items))
	}
	if order.Items[0].Quantity != 2 {
		t.Errorf("original quantity = %d, want 2", order.Items[0].Quantity)
	}
	if !almostEqual(order.Subtotal, 20) {
		t.Errorf("original subtotal = %v, want 20", order.Subtotal)
	}
}

func TestOrderValidate(t *testing.T) {
	valid := domain.NewOrder(0.18)
	valid.AddItem(domain.NewOrderItem(domain.Product{ID: 1, Name: "Box", Price: 10}, 2))

	empty := domain.NewOrder(0.18)

	badQuantity := domain.NewOrder(0.18)
	badQuantity.AddItem(domain.OrderItem{ProductID: 1, Quantity: 0, UnitPrice: 10})

	badPrice := domain.NewOrder(0.18)
	badPrice.AddItem(domain.OrderItem{ProductID: 1, Quantity: 1, UnitPrice: -5})

	badStatus := domain.NewOrder(0.18)
	badStatus.AddItem(domain.NewOrderItem(domain.Product{ID: 1, Price: 10}, 1))
	badStatus.Status = domain.OrderStatus("UNKNOWN")

	tests := []struct {
		name    string
		order   *domain.Order
		wantErr bool
	}{
		{"valid order", valid, false},
		{"no items", empty, true},
		{"zero quantity", badQuantity, true},
		{"negative unit price", badPrice, true},
		{"unknown status", badStatus, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Order.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
