package backup

import (
	"fmt"
	"time"

	"go-pos-store/internal/models"
)

// Envelope records are untyped JSON and may predate the camelCase
// schema: seed data and older exports used snake_case keys. Each
// decoder below accepts both spellings and produces the one canonical
// typed row, so naming drift never reaches the store.

var tableDecoders = map[string]func(map[string]any) (any, error){
	"users":           decodeUser,
	"categories":      decodeCategory,
	"products":        decodeProduct,
	"customers":       decodeCustomer,
	"sales":           decodeSale,
	"sale_items":      decodeSaleItem,
	"settings":        decodeSettings,
	"activity_logs":   decodeActivityLog,
	"auto_backups":    decodeAutoBackup,
	"backup_settings": decodeBackupSettings,
	"user_roles":      decodeUserRole,
}

func decodeUser(m map[string]any) (any, error) {
	username := str(m, "username")
	if username == "" {
		return nil, fmt.Errorf("user record without username")
	}
	return &models.User{
		ID:        uintVal(m, "id"),
		Username:  username,
		Password:  str(m, "password"),
		Role:      str(m, "role"),
		FullName:  str(m, "fullName", "full_name"),
		Email:     str(m, "email"),
		IsActive:  boolVal(m, true, "isActive", "is_active"),
		CreatedAt: timeVal(m, "createdAt", "created_at"),
		LastLogin: timePtr(m, "lastLogin", "last_login"),
	}, nil
}

func decodeCategory(m map[string]any) (any, error) {
	return &models.Category{
		ID:          uintVal(m, "id"),
		Name:        str(m, "name"),
		Description: str(m, "description"),
		Color:       str(m, "color"),
		CreatedAt:   timeVal(m, "createdAt", "created_at"),
		UpdatedAt:   timeVal(m, "updatedAt", "updated_at"),
	}, nil
}

func decodeProduct(m map[string]any) (any, error) {
	qty := intVal(m, "quantity")
	if qty < 0 {
		qty = 0
	}
	return &models.Product{
		ID:                uintVal(m, "id"),
		Name:              str(m, "name"),
		SKU:               str(m, "sku"),
		Barcode:           str(m, "barcode"),
		CategoryID:        uintVal(m, "categoryId", "category_id"),
		CostPrice:         floatVal(m, "costPrice", "cost_price"),
		SellingPrice:      floatVal(m, "sellingPrice", "selling_price"),
		Quantity:          qty,
		LowStockThreshold: intVal(m, "lowStockThreshold", "low_stock_threshold"),
		Supplier:          str(m, "supplier"),
		Description:       str(m, "description"),
		ImageURL:          str(m, "imageUrl", "image_url"),
		CreatedAt:         timeVal(m, "createdAt", "created_at"),
		UpdatedAt:         timeVal(m, "updatedAt", "updated_at"),
	}, nil
}

func decodeCustomer(m map[string]any) (any, error) {
	return &models.Customer{
		ID:               uintVal(m, "id"),
		Name:             str(m, "name"),
		Phone:            str(m, "phone"),
		Email:            str(m, "email"),
		LoyaltyPoints:    intVal(m, "loyaltyPoints", "loyalty_points"),
		TotalPurchases:   floatVal(m, "totalPurchases", "total_purchases"),
		LastPurchaseDate: timePtr(m, "lastPurchaseDate", "last_purchase_date"),
		Notes:            str(m, "notes"),
		CreatedAt:        timeVal(m, "createdAt", "created_at"),
	}, nil
}

func decodeSale(m map[string]any) (any, error) {
	status := str(m, "status")
	if status == "" {
		status = "completed"
	}
	paymentMethod := str(m, "paymentMethod", "payment_method")
	if paymentMethod == "" {
		paymentMethod = "cash"
	}
	return &models.Sale{
		ID:              uintVal(m, "id"),
		CustomerID:      uintPtr(m, "customerId", "customer_id"),
		UserID:          uintVal(m, "userId", "user_id"),
		Subtotal:        floatVal(m, "subtotal"),
		DiscountAmount:  floatVal(m, "discountAmount", "discount_amount"),
		TaxAmount:       floatVal(m, "taxAmount", "tax_amount"),
		Total:           floatVal(m, "total"),
		PaymentMethod:   paymentMethod,
		PaymentReceived: floatVal(m, "paymentReceived", "payment_received"),
		ChangeGiven:     floatVal(m, "changeGiven", "change_given"),
		Status:          status,
		Notes:           str(m, "notes"),
		CreatedAt:       timeVal(m, "createdAt", "created_at"),
	}, nil
}

func decodeSaleItem(m map[string]any) (any, error) {
	return &models.SaleItem{
		ID:          uintVal(m, "id"),
		SaleID:      uintVal(m, "saleId", "sale_id"),
		ProductID:   uintVal(m, "productId", "product_id"),
		ProductName: str(m, "productName", "product_name"),
		Quantity:    intVal(m, "quantity"),
		UnitPrice:   floatVal(m, "unitPrice", "unit_price"),
		Subtotal:    floatVal(m, "subtotal"),
	}, nil
}

func decodeSettings(m map[string]any) (any, error) {
	methods := strSlice(m, "enabledPaymentMethods", "enabled_payment_methods")
	if len(methods) == 0 {
		methods = []string{"cash", "card", "mobile_money"}
	}
	return &models.Settings{
		ID:                    uintVal(m, "id"),
		StoreName:             str(m, "storeName", "store_name"),
		StoreAddress:          str(m, "storeAddress", "store_address"),
		StorePhone:            str(m, "storePhone", "store_phone"),
		StoreEmail:            str(m, "storeEmail", "store_email"),
		Currency:              str(m, "currency"),
		TaxRate:               floatVal(m, "taxRate", "tax_rate"),
		ReceiptFooter:         str(m, "receiptFooter", "receipt_footer"),
		ReceiptTemplate:       str(m, "receiptTemplate", "receipt_template"),
		LogoURL:               str(m, "logoUrl", "logo_url"),
		EnableQrCode:          boolVal(m, false, "enableQrCode", "enable_qr_code"),
		PrintPaperSize:        str(m, "printPaperSize", "print_paper_size"),
		PrintFontSize:         str(m, "printFontSize", "print_font_size"),
		EnabledPaymentMethods: methods,
		RoundingRule:          str(m, "roundingRule", "rounding_rule"),
		EnableStockAlerts:     boolVal(m, false, "enableStockAlerts", "enable_stock_alerts"),
		LowStockAlert:         intVal(m, "lowStockAlert", "low_stock_alert"),
		EnableReorderAlerts:   boolVal(m, false, "enableReorderAlerts", "enable_reorder_alerts"),
		DefaultReorderPoint:   intVal(m, "defaultReorderPoint", "default_reorder_point"),
		BarcodeFormat:         str(m, "barcodeFormat", "barcode_format"),
		EnableBatchTracking:   boolVal(m, false, "enableBatchTracking", "enable_batch_tracking"),
		AutoBackupFrequency:   str(m, "autoBackupFrequency", "auto_backup_frequency"),
		Theme:                 str(m, "theme"),
		PrimaryColor:          str(m, "primaryColor", "primary_color"),
		SecondaryColor:        str(m, "secondaryColor", "secondary_color"),
		Language:              str(m, "language"),
		DateFormat:            str(m, "dateFormat", "date_format"),
		TimeFormat:            str(m, "timeFormat", "time_format"),
		UpdatedAt:             timeVal(m, "updatedAt", "updated_at"),
	}, nil
}

func decodeActivityLog(m map[string]any) (any, error) {
	return &models.ActivityLog{
		ID:        uintVal(m, "id"),
		UserID:    uintVal(m, "userId", "user_id"),
		Action:    str(m, "action"),
		Details:   str(m, "details"),
		IPAddress: str(m, "ipAddress", "ip_address"),
		CreatedAt: timeVal(m, "createdAt", "created_at"),
	}, nil
}

func decodeAutoBackup(m map[string]any) (any, error) {
	metadata := models.BackupMetadata{RecordCounts: map[string]int{}}
	if raw, ok := lookup(m, "metadata"); ok {
		if mm, ok := raw.(map[string]any); ok {
			metadata.Version = str(mm, "version")
			if counts, ok := lookup(mm, "recordCounts", "record_counts"); ok {
				if cm, ok := counts.(map[string]any); ok {
					for k, v := range cm {
						if n, ok := v.(float64); ok {
							metadata.RecordCounts[k] = int(n)
						}
					}
				}
			}
		}
	}
	return &models.AutoBackup{
		ID:         uintVal(m, "id"),
		BackupData: str(m, "backupData", "backup_data"),
		Metadata:   metadata,
		CreatedAt:  timeVal(m, "createdAt", "created_at"),
	}, nil
}

func decodeBackupSettings(m map[string]any) (any, error) {
	return &models.BackupSettings{
		ID:              uintVal(m, "id"),
		Enabled:         boolVal(m, true, "enabled"),
		Frequency:       str(m, "frequency"),
		KeepBackupCount: intVal(m, "keepBackupCount", "keep_backup_count"),
		LastBackupDate:  timePtr(m, "lastBackupDate", "last_backup_date"),
		UpdatedAt:       timeVal(m, "updatedAt", "updated_at"),
	}, nil
}

func decodeUserRole(m map[string]any) (any, error) {
	return &models.UserRole{
		ID:          uintVal(m, "id"),
		Name:        str(m, "name"),
		Description: str(m, "description"),
		CreatedAt:   timeVal(m, "createdAt", "created_at"),
	}, nil
}

// lookup returns the first present key, in order of preference.
func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func str(m map[string]any, keys ...string) string {
	if v, ok := lookup(m, keys...); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func floatVal(m map[string]any, keys ...string) float64 {
	if v, ok := lookup(m, keys...); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return 0
}

func intVal(m map[string]any, keys ...string) int {
	return int(floatVal(m, keys...))
}

func uintVal(m map[string]any, keys ...string) uint {
	n := floatVal(m, keys...)
	if n < 0 {
		return 0
	}
	return uint(n)
}

func uintPtr(m map[string]any, keys ...string) *uint {
	if _, ok := lookup(m, keys...); !ok {
		return nil
	}
	v := uintVal(m, keys...)
	if v == 0 {
		return nil
	}
	return &v
}

func boolVal(m map[string]any, def bool, keys ...string) bool {
	if v, ok := lookup(m, keys...); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func timeVal(m map[string]any, keys ...string) time.Time {
	if v, ok := lookup(m, keys...); ok {
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func timePtr(m map[string]any, keys ...string) *time.Time {
	t := timeVal(m, keys...)
	if t.IsZero() {
		return nil
	}
	return &t
}

func strSlice(m map[string]any, keys ...string) []string {
	v, ok := lookup(m, keys...)
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
