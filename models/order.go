package models

import "time"

// MenuItem is an entry of the append-only pizza catalog
type MenuItem struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	Image       string  `json:"image" db:"image"`
	Price       float64 `json:"price" db:"price"`
}

// TableName returns the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu"
}

// OrderItem is one line of a diner order
type OrderItem struct {
	ID          int64   `json:"id,omitempty" db:"id"`
	MenuID      int64   `json:"menuId" db:"menu_id"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
}

// Order is a diner's order placed at a store
type Order struct {
	ID          int64       `json:"id" db:"id"`
	DinerID     int64       `json:"dinerId" db:"diner_id"`
	FranchiseID int64       `json:"franchiseId" db:"franchise_id"`
	StoreID     int64       `json:"storeId" db:"store_id"`
	Date        time.Time   `json:"date" db:"date"`
	Items       []OrderItem `json:"items"`
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "diner_orders"
}

// Total returns the sum of all item prices
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}

// FulfillmentReceipt is what the pizza factory returns for a placed order
type FulfillmentReceipt struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
}
