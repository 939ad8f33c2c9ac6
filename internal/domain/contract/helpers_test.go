package contract

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "expected %s, got %s", want, got.String())
}

type testCatalog struct {
	p1, p2, rented, maintenance uuid.UUID
	refs                        *ReferenceData
}

func newTestCatalog() *testCatalog {
	c := &testCatalog{
		p1:          uuid.New(),
		p2:          uuid.New(),
		rented:      uuid.New(),
		maintenance: uuid.New(),
	}
	c.refs = &ReferenceData{
		Clients: []Client{{ID: uuid.New(), Name: "Maria Souza"}},
		Products: []Product{
			{ID: c.p1, Name: "Wedding dress", Status: ProductStatusAvailable, RentalValue: dec("50")},
			{ID: c.p2, Name: "Tuxedo", Status: ProductStatusAvailable, RentalValue: dec("120.50")},
			{ID: c.rented, Name: "Veil", Status: ProductStatusRented, RentalValue: dec("30")},
			{ID: c.maintenance, Name: "Suit", Status: ProductStatusMaintenance, RentalValue: dec("80")},
		},
		Events:    []Event{{ID: uuid.New(), Name: "Gala"}},
		Locations: []Location{{ID: uuid.New(), Name: "Downtown store"}},
	}
	return c
}

func (c *testCatalog) clientID() uuid.UUID {
	return c.refs.Clients[0].ID
}

// validDraft returns a draft that passes every step: one item of P1 x2 at
// 50 and one PIX payment of 100.
func (c *testCatalog) validDraft() *Draft {
	d := NewDraft(mustDate("2025-03-10"), DefaultRentalDays, c.refs.ProductOptions(nil))
	d.SetClient(c.clientID())
	i := d.AddItem()
	d.Items().SetProduct(i, c.p1)
	d.Items().SetQuantity(i, 2)
	d.AddPayment()
	return d
}

func (c *testCatalog) wizard(d *Draft) *Wizard {
	return NewWizard(d, c.refs, c.refs.ProductOptions(d.AttachedProducts()), DefaultReconciliationPolicy())
}

func mustDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
