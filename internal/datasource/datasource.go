// Package datasource describes where raw input tables come from.
package datasource

import (
	"context"
	"io"
)

// Logical input names, one per raw table.
const (
	Customers     = "customers"
	Discounts     = "discounts"
	Employees     = "employees"
	Products      = "products"
	Stores        = "stores"
	Transactions  = "transactions"
	ExchangeRates = "exchange_rates"
)

// Inputs lists every logical input the pipeline knows how to use.
var Inputs = []string{Customers, Discounts, Employees, Products, Stores, Transactions, ExchangeRates}

// Source opens the raw bytes of one input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
