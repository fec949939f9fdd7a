package database

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"go-pos-store/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultAdminUsername and DefaultAdminPassword are the first-boot credentials.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

type seedProduct struct {
	name      string
	sku       string
	barcode   string
	category  string
	cost      float64
	sell      float64
	qty       int
	threshold int
	supplier  string
}

var defaultCategories = []models.Category{
	{Name: "Electronics", Description: "Electronic devices and accessories", Color: "#3B82F6"},
	{Name: "Clothing", Description: "Apparel and fashion items", Color: "#8B5CF6"},
	{Name: "Food", Description: "Food and beverage items", Color: "#10B981"},
	{Name: "Home Goods", Description: "Home and household items", Color: "#06B6D4"},
	{Name: "Books", Description: "Books and educational materials", Color: "#F59E0B"},
}

var sampleProducts = []seedProduct{
	// Electronics
	{"Wireless Mouse", "ELEC-001", "1234567890001", "Electronics", 15.00, 29.99, 50, 10, "Tech Supplies Inc"},
	{"USB-C Cable", "ELEC-002", "1234567890002", "Electronics", 5.00, 12.99, 100, 20, "Tech Supplies Inc"},
	{"Bluetooth Headphones", "ELEC-003", "1234567890003", "Electronics", 35.00, 69.99, 30, 8, "Tech Supplies Inc"},
	{"Phone Charger", "ELEC-004", "1234567890004", "Electronics", 8.00, 19.99, 75, 15, "Tech Supplies Inc"},
	{"Laptop Stand", "ELEC-005", "1234567890005", "Electronics", 20.00, 45.99, 25, 5, "Tech Supplies Inc"},
	{"Webcam HD", "ELEC-006", "1234567890006", "Electronics", 40.00, 89.99, 20, 5, "Tech Supplies Inc"},
	{"Keyboard Mechanical", "ELEC-007", "1234567890007", "Electronics", 50.00, 99.99, 15, 5, "Tech Supplies Inc"},
	{"Power Bank 10000mAh", "ELEC-008", "1234567890008", "Electronics", 18.00, 39.99, 40, 10, "Tech Supplies Inc"},
	{"HDMI Cable 2m", "ELEC-009", "1234567890009", "Electronics", 6.00, 14.99, 60, 12, "Tech Supplies Inc"},
	{"Screen Protector", "ELEC-010", "1234567890010", "Electronics", 3.00, 9.99, 80, 15, "Tech Supplies Inc"},
	// Clothing
	{"Cotton T-Shirt", "CLTH-001", "1234567890011", "Clothing", 8.00, 19.99, 45, 10, "Fashion Wholesale"},
	{"Denim Jeans", "CLTH-002", "1234567890012", "Clothing", 25.00, 59.99, 30, 8, "Fashion Wholesale"},
	{"Hoodie", "CLTH-003", "1234567890013", "Clothing", 20.00, 49.99, 35, 8, "Fashion Wholesale"},
	{"Baseball Cap", "CLTH-004", "1234567890014", "Clothing", 7.00, 16.99, 50, 10, "Fashion Wholesale"},
	{"Sneakers", "CLTH-005", "1234567890015", "Clothing", 35.00, 79.99, 25, 6, "Fashion Wholesale"},
	{"Socks (3-Pack)", "CLTH-006", "1234567890016", "Clothing", 5.00, 12.99, 60, 12, "Fashion Wholesale"},
	{"Leather Belt", "CLTH-007", "1234567890017", "Clothing", 12.00, 29.99, 40, 8, "Fashion Wholesale"},
	{"Sunglasses", "CLTH-008", "1234567890018", "Clothing", 10.00, 24.99, 35, 8, "Fashion Wholesale"},
	{"Backpack", "CLTH-009", "1234567890019", "Clothing", 22.00, 49.99, 28, 6, "Fashion Wholesale"},
	{"Winter Scarf", "CLTH-010", "1234567890020", "Clothing", 8.00, 19.99, 42, 10, "Fashion Wholesale"},
	// Food
	{"Organic Coffee Beans 500g", "FOOD-001", "1234567890021", "Food", 8.00, 18.99, 55, 12, "Fresh Foods Ltd"},
	{"Green Tea (20 bags)", "FOOD-002", "1234567890022", "Food", 3.00, 7.99, 70, 15, "Fresh Foods Ltd"},
	{"Dark Chocolate Bar", "FOOD-003", "1234567890023", "Food", 2.50, 5.99, 90, 20, "Fresh Foods Ltd"},
	{"Honey Jar 500ml", "FOOD-004", "1234567890024", "Food", 6.00, 14.99, 40, 10, "Fresh Foods Ltd"},
	{"Pasta 500g", "FOOD-005", "1234567890025", "Food", 1.50, 3.99, 100, 20, "Fresh Foods Ltd"},
	{"Olive Oil 750ml", "FOOD-006", "1234567890026", "Food", 9.00, 21.99, 35, 8, "Fresh Foods Ltd"},
	{"Granola Bar (6-Pack)", "FOOD-007", "1234567890027", "Food", 4.00, 9.99, 65, 15, "Fresh Foods Ltd"},
	{"Peanut Butter 400g", "FOOD-008", "1234567890028", "Food", 4.50, 10.99, 50, 12, "Fresh Foods Ltd"},
	{"Potato Chips", "FOOD-009", "1234567890029", "Food", 1.80, 4.49, 85, 18, "Fresh Foods Ltd"},
	{"Sparkling Water (6-Pack)", "FOOD-010", "1234567890030", "Food", 3.50, 8.99, 60, 12, "Fresh Foods Ltd"},
	// Home Goods
	{"Coffee Mug", "HOME-001", "1234567890031", "Home Goods", 4.00, 9.99, 40, 8, "Home Goods Co"},
	{"Dinner Plate Set (4pc)", "HOME-002", "1234567890032", "Home Goods", 18.00, 39.99, 25, 6, "Home Goods Co"},
	{"Throw Pillow", "HOME-003", "1234567890033", "Home Goods", 10.00, 24.99, 35, 8, "Home Goods Co"},
	{"Scented Candle", "HOME-004", "1234567890034", "Home Goods", 6.00, 14.99, 50, 10, "Home Goods Co"},
	{"Bath Towel", "HOME-005", "1234567890035", "Home Goods", 8.00, 19.99, 45, 10, "Home Goods Co"},
	{"Picture Frame 8x10", "HOME-006", "1234567890036", "Home Goods", 5.00, 12.99, 38, 8, "Home Goods Co"},
	{"Storage Basket", "HOME-007", "1234567890037", "Home Goods", 12.00, 27.99, 30, 6, "Home Goods Co"},
	{"Wall Clock", "HOME-008", "1234567890038", "Home Goods", 15.00, 34.99, 22, 5, "Home Goods Co"},
	{"Desk Lamp", "HOME-009", "1234567890039", "Home Goods", 20.00, 44.99, 28, 6, "Home Goods Co"},
	{"Doormat", "HOME-010", "1234567890040", "Home Goods", 9.00, 21.99, 32, 8, "Home Goods Co"},
	// Books
	{"The Great Novel", "BOOK-001", "1234567890041", "Books", 10.00, 24.99, 30, 6, "Book Distributors"},
	{"Cookbook: Easy Meals", "BOOK-002", "1234567890042", "Books", 12.00, 29.99, 25, 5, "Book Distributors"},
	{"Self-Help Guide", "BOOK-003", "1234567890043", "Books", 8.00, 19.99, 35, 8, "Book Distributors"},
	{"Mystery Thriller", "BOOK-004", "1234567890044", "Books", 9.00, 22.99, 28, 6, "Book Distributors"},
	{"Children's Picture Book", "BOOK-005", "1234567890045", "Books", 6.00, 14.99, 40, 10, "Book Distributors"},
	{"Science Fiction Epic", "BOOK-006", "1234567890046", "Books", 11.00, 27.99, 22, 5, "Book Distributors"},
	{"Biography: Legends", "BOOK-007", "1234567890047", "Books", 13.00, 32.99, 20, 5, "Book Distributors"},
	{"Travel Guide: Europe", "BOOK-008", "1234567890048", "Books", 14.00, 34.99, 18, 4, "Book Distributors"},
	{"Poetry Collection", "BOOK-009", "1234567890049", "Books", 7.00, 16.99, 32, 8, "Book Distributors"},
	{"Graphic Novel", "BOOK-010", "1234567890050", "Books", 15.00, 36.99, 24, 5, "Book Distributors"},
}

// Seed populates an empty database with the default admin account,
// settings, catalog and a month of sample sales.
//
// It never runs against a store that already has users unless force is
// set; the forced path (the "reset with dummy data" flow) still refuses
// to duplicate the admin account or the settings singleton.
func Seed(db *gorm.DB, force bool) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("seed: counting users: %w", err)
	}
	if userCount > 0 && !force {
		return nil
	}

	now := time.Now()

	if userCount == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed: hashing admin password: %w", err)
		}
		admin := models.User{
			Username:  DefaultAdminUsername,
			Password:  string(hashed),
			Role:      "admin",
			FullName:  "System Administrator",
			Email:     "admin@pos.local",
			IsActive:  true,
			CreatedAt: now,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed: creating admin user: %w", err)
		}
	}

	var settingsCount int64
	if err := db.Model(&models.Settings{}).Count(&settingsCount).Error; err != nil {
		return fmt.Errorf("seed: counting settings: %w", err)
	}
	if settingsCount == 0 {
		if err := db.Create(defaultSettings(now)).Error; err != nil {
			return fmt.Errorf("seed: creating settings: %w", err)
		}
	}

	if err := seedRoles(db, now); err != nil {
		return err
	}
	if err := seedBackupSettings(db, now); err != nil {
		return err
	}

	categoryIDs := make(map[string]uint, len(defaultCategories))
	for _, c := range defaultCategories {
		cat := c
		cat.CreatedAt = now
		cat.UpdatedAt = now
		if err := db.Create(&cat).Error; err != nil {
			return fmt.Errorf("seed: creating category %q: %w", cat.Name, err)
		}
		categoryIDs[cat.Name] = cat.ID
	}

	products := make([]models.Product, 0, len(sampleProducts))
	for _, sp := range sampleProducts {
		products = append(products, models.Product{
			Name:              sp.name,
			SKU:               sp.sku,
			Barcode:           sp.barcode,
			CategoryID:        categoryIDs[sp.category],
			CostPrice:         sp.cost,
			SellingPrice:      sp.sell,
			Quantity:          sp.qty,
			LowStockThreshold: sp.threshold,
			Supplier:          sp.supplier,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("seed: creating products: %w", err)
	}

	customers := sampleCustomers(now)
	if err := db.Create(&customers).Error; err != nil {
		return fmt.Errorf("seed: creating customers: %w", err)
	}

	if err := seedSales(db, products, customers, now); err != nil {
		return err
	}

	return nil
}

// Reset clears everything except users and settings, then force-seeds.
// Used by the administrative "reset with dummy data" flow.
func Reset(db *gorm.DB) error {
	clearable := []string{
		"products", "customers", "sales", "sale_items",
		"categories", "activity_logs", "auto_backups", "backup_settings",
	}
	for _, table := range clearable {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("reset: clearing %s: %w", table, err)
		}
	}
	return Seed(db, true)
}

func defaultSettings(now time.Time) *models.Settings {
	return &models.Settings{
		StoreName:             "My Store",
		Currency:              "GHS",
		TaxRate:               10,
		ReceiptFooter:         "Thank you for your business!",
		ReceiptTemplate:       "standard",
		EnableQrCode:          false,
		PrintPaperSize:        "thermal-80mm",
		PrintFontSize:         "medium",
		EnabledPaymentMethods: []string{"cash", "card", "mobile_money"},
		RoundingRule:          "none",
		EnableStockAlerts:     true,
		LowStockAlert:         10,
		EnableReorderAlerts:   true,
		DefaultReorderPoint:   10,
		BarcodeFormat:         "ean13",
		EnableBatchTracking:   false,
		AutoBackupFrequency:   "daily",
		Theme:                 "dark",
		Language:              "en",
		DateFormat:            "MM/DD/YYYY",
		TimeFormat:            "12h",
		UpdatedAt:             now,
	}
}

func seedRoles(db *gorm.DB, now time.Time) error {
	var roleCount int64
	if err := db.Model(&models.UserRole{}).Count(&roleCount).Error; err != nil {
		return fmt.Errorf("seed: counting roles: %w", err)
	}
	if roleCount > 0 {
		return nil
	}
	roles := []models.UserRole{
		{Name: "admin", Description: "Full access to all features", CreatedAt: now},
		{Name: "manager", Description: "Catalog, reports and sales", CreatedAt: now},
		{Name: "cashier", Description: "Checkout and sales history", CreatedAt: now},
	}
	if err := db.Create(&roles).Error; err != nil {
		return fmt.Errorf("seed: creating roles: %w", err)
	}
	return nil
}

func seedBackupSettings(db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.Model(&models.BackupSettings{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: counting backup settings: %w", err)
	}
	if count > 0 {
		return nil
	}
	bs := models.BackupSettings{
		Enabled:         true,
		Frequency:       "daily",
		KeepBackupCount: 7,
		UpdatedAt:       now,
	}
	if err := db.Create(&bs).Error; err != nil {
		return fmt.Errorf("seed: creating backup settings: %w", err)
	}
	return nil
}

func sampleCustomers(now time.Time) []models.Customer {
	lastPurchase := now
	return []models.Customer{
		{Name: "John Smith", Phone: "+1234567890", Email: "john.smith@email.com",
			LoyaltyPoints: 150, TotalPurchases: 450.00, LastPurchaseDate: &lastPurchase, CreatedAt: now},
		{Name: "Sarah Johnson", Phone: "+1234567891", Email: "sarah.j@email.com",
			LoyaltyPoints: 200, TotalPurchases: 680.00, LastPurchaseDate: &lastPurchase, CreatedAt: now},
		{Name: "Mike Davis", Phone: "+1234567892",
			LoyaltyPoints: 50, TotalPurchases: 120.00, CreatedAt: now},
	}
}

// seedSales generates 30 days of sales history: 1-3 sales per day, each
// with 1-5 distinct line items of 1-3 units. Totals stay consistent:
// tax is 10% of (subtotal - discount), total = subtotal - discount + tax.
// Sample sales are inserted as history; they do not decrement stock.
func seedSales(db *gorm.DB, products []models.Product, customers []models.Customer, now time.Time) error {
	paymentMethods := []string{"cash", "card", "mobile_money"}

	for dayOffset := 0; dayOffset < 30; dayOffset++ {
		salesPerDay := rand.Intn(3) + 1
		for saleNum := 0; saleNum < salesPerDay; saleNum++ {
			itemCount := rand.Intn(5) + 1
			used := make(map[int]bool, itemCount)
			var items []models.SaleItem
			var subtotal float64

			for i := 0; i < itemCount; i++ {
				var idx int
				for {
					idx = rand.Intn(len(products))
					if !used[idx] {
						break
					}
				}
				used[idx] = true

				p := products[idx]
				qty := rand.Intn(3) + 1
				lineSubtotal := round2(p.SellingPrice * float64(qty))
				subtotal += lineSubtotal
				items = append(items, models.SaleItem{
					ProductID:   p.ID,
					ProductName: p.Name,
					Quantity:    qty,
					UnitPrice:   p.SellingPrice,
					Subtotal:    lineSubtotal,
				})
			}

			var discount float64
			if rand.Float64() > 0.7 {
				discount = float64(rand.Intn(10) + 2)
			}
			subtotal = round2(subtotal)
			tax := round2((subtotal - discount) * 0.1)
			total := round2(subtotal - discount + tax)

			var customerID *uint
			if pick := rand.Intn(len(customers) + 1); pick < len(customers) {
				customerID = &customers[pick].ID
			}

			hoursOffset := dayOffset*24 + rand.Intn(24)
			sale := models.Sale{
				CustomerID:      customerID,
				UserID:          1,
				Subtotal:        subtotal,
				DiscountAmount:  discount,
				TaxAmount:       tax,
				Total:           total,
				PaymentMethod:   paymentMethods[rand.Intn(len(paymentMethods))],
				PaymentReceived: total,
				Status:          "completed",
				CreatedAt:       now.Add(-time.Duration(hoursOffset) * time.Hour),
				Items:           items,
			}
			if err := db.Create(&sale).Error; err != nil {
				return fmt.Errorf("seed: creating sample sale: %w", err)
			}
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
