package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type CustomerStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
}

type InvoiceStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Paid    int64 `json:"paid"`
	Overdue int64 `json:"overdue"`
}

type PaymentStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Verified int64 `json:"verified"`
}

type RevenueStats struct {
	Total            int64   `json:"total"`
	Pending          int64   `json:"pending"`
	ThisMonth        int64   `json:"this_month"`
	LastMonth        int64   `json:"last_month"`
	GrowthPercentage float64 `json:"growth_percentage"`
}

type Stats struct {
	Customers CustomerStats `json:"customers"`
	Invoices  InvoiceStats  `json:"invoices"`
	Payments  PaymentStats  `json:"payments"`
	Revenue   RevenueStats  `json:"revenue"`
}

type RevenuePoint struct {
	Month        string `json:"month"`
	MonthName    string `json:"month_name"`
	Revenue      int64  `json:"revenue"`
	InvoiceCount int64  `json:"invoice_count"`
}

type RevenueChart struct {
	Data           []RevenuePoint `json:"data"`
	TotalRevenue   int64          `json:"total_revenue"`
	AverageRevenue int64          `json:"average_revenue"`
}

type GrowthPoint struct {
	Month          string `json:"month"`
	MonthName      string `json:"month_name"`
	NewCustomers   int64  `json:"new_customers"`
	TotalCustomers int64  `json:"total_customers"`
}

type CustomerGrowth struct {
	Data []GrowthPoint `json:"data"`
}

type PackageShare struct {
	PackageID     snowflake.ID `json:"package_id"`
	PackageName   string       `json:"package_name"`
	PackageCode   string       `json:"package_code"`
	CustomerCount int64        `json:"customer_count"`
	Percentage    float64      `json:"percentage"`
}

type PackageDistribution struct {
	TotalCustomers int64          `json:"total_customers"`
	Distribution   []PackageShare `json:"distribution"`
}

type RecentCustomer struct {
	ID        snowflake.ID `json:"id"`
	Code      string       `json:"customer_code"`
	FullName  string       `json:"full_name"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

type RecentInvoice struct {
	ID          snowflake.ID `json:"id"`
	Number      string       `json:"invoice_number"`
	CustomerID  snowflake.ID `json:"customer_id"`
	TotalAmount int64        `json:"total_amount"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

type RecentPayment struct {
	ID         snowflake.ID `json:"id"`
	Number     string       `json:"payment_number"`
	CustomerID snowflake.ID `json:"customer_id"`
	Amount     int64        `json:"amount"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

type RecentActivities struct {
	Customers []RecentCustomer `json:"recent_customers"`
	Invoices  []RecentInvoice  `json:"recent_invoices"`
	Payments  []RecentPayment  `json:"recent_payments"`
}

type OverdueBucket struct {
	Label       string `json:"label"`
	Count       int64  `json:"count"`
	TotalAmount int64  `json:"total_amount"`
}

type OverdueSummary struct {
	Buckets []OverdueBucket `json:"buckets"`
	Total   OverdueBucket   `json:"total"`
}
