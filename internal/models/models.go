package models

import (
	"time"
)

// User - A person allowed to operate the store
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:50" json:"username"`
	Password  string     `json:"-"`    // bcrypt hash, never serialized
	Role      string     `json:"role"` // 'admin', 'manager', 'cashier'
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// UserSummary is the denormalized cashier info attached to a sale on read.
type UserSummary struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Category - Product grouping with a display color
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100" json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Product - The Inventory
//
// CategoryID is a weak reference: deleting a category leaves products
// pointing at a dangling id, which readers surface as a nil Category.
type Product struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `json:"name"`
	SKU               string    `gorm:"column:sku;uniqueIndex;size:50" json:"sku"`
	// Unique when present; enforced on write so empty barcodes can repeat.
	Barcode           string    `gorm:"index;size:50" json:"barcode"`
	CategoryID        uint      `gorm:"index" json:"categoryId"`
	CostPrice         float64   `json:"costPrice"`
	SellingPrice      float64   `json:"sellingPrice"`
	Quantity          int       `json:"quantity"` // stock level, never negative
	LowStockThreshold int       `json:"lowStockThreshold"`
	Supplier          string    `json:"supplier"`
	Description       string    `json:"description"`
	ImageURL          string    `json:"imageUrl"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	Category *Category `gorm:"-" json:"category,omitempty"` // attached on read
}

// Customer - Loyalty and purchase history
type Customer struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	LoyaltyPoints    int        `json:"loyaltyPoints"`
	TotalPurchases   float64    `json:"totalPurchases"`
	LastPurchaseDate *time.Time `json:"lastPurchaseDate,omitempty"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Sale - The Transaction Header
//
// Immutable once created except for status transitions.
type Sale struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CustomerID      *uint      `json:"customerId,omitempty"` // nil for walk-in customers
	UserID          uint       `json:"userId"`               // who processed it
	Subtotal        float64    `json:"subtotal"`
	DiscountAmount  float64    `json:"discountAmount"`
	TaxAmount       float64    `json:"taxAmount"`
	Total           float64    `json:"total"` // subtotal - discount + tax
	PaymentMethod   string     `json:"paymentMethod"`
	PaymentReceived float64    `json:"paymentReceived"`
	ChangeGiven     float64    `json:"changeGiven"`
	Status          string     `gorm:"index" json:"status"` // 'completed', 'parked', 'cancelled'
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	Items           []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`

	User *UserSummary `gorm:"-" json:"user,omitempty"` // attached on read
}

// SaleItem - A cart line, created atomically with its Sale
type SaleItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	SaleID      uint    `gorm:"index" json:"saleId"`
	ProductID   uint    `json:"productId"`
	ProductName string  `json:"productName"` // snapshot at sale time
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"` // unitPrice * quantity
}

// Settings - Singleton store configuration (exactly one row)
type Settings struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	StoreName    string  `json:"storeName"`
	StoreAddress string  `json:"storeAddress"`
	StorePhone   string  `json:"storePhone"`
	StoreEmail   string  `json:"storeEmail"`
	Currency     string  `json:"currency"`
	TaxRate      float64 `json:"taxRate"` // percent

	// Receipt & print
	ReceiptFooter   string `json:"receiptFooter"`
	ReceiptTemplate string `json:"receiptTemplate"`
	LogoURL         string `json:"logoUrl"`
	EnableQrCode    bool   `json:"enableQrCode"`
	PrintPaperSize  string `json:"printPaperSize"`
	PrintFontSize   string `json:"printFontSize"`

	// Payments
	EnabledPaymentMethods []string `gorm:"serializer:json" json:"enabledPaymentMethods"`
	RoundingRule          string   `json:"roundingRule"`

	// Inventory
	EnableStockAlerts   bool   `json:"enableStockAlerts"`
	LowStockAlert       int    `json:"lowStockAlert"`
	EnableReorderAlerts bool   `json:"enableReorderAlerts"`
	DefaultReorderPoint int    `json:"defaultReorderPoint"`
	BarcodeFormat       string `json:"barcodeFormat"`
	EnableBatchTracking bool   `json:"enableBatchTracking"`

	// Backup
	AutoBackupFrequency string `json:"autoBackupFrequency"`

	// Branding
	Theme          string `json:"theme"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`

	// Localization
	Language   string `json:"language"`
	DateFormat string `json:"dateFormat"`
	TimeFormat string `json:"timeFormat"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// ActivityLog - Audit trail of user actions
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"userId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// BackupMetadata is the snapshot stored alongside each auto-backup.
type BackupMetadata struct {
	RecordCounts map[string]int `json:"recordCounts"`
	Version      string         `json:"version"`
}

// AutoBackup - A full serialized backup envelope kept inside the store.
// Append-only except for retention eviction.
type AutoBackup struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BackupData string         `gorm:"type:text" json:"backupData"`
	Metadata   BackupMetadata `gorm:"serializer:json" json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// BackupSettings - Singleton scheduler configuration
type BackupSettings struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Enabled         bool       `json:"enabled"`
	Frequency       string     `json:"frequency"` // 'daily' or 'weekly'
	KeepBackupCount int        `json:"keepBackupCount"`
	LastBackupDate  *time.Time `json:"lastBackupDate,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// UserRole - Built-in role definitions (read-only after seeding)
type UserRole struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
