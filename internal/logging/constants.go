package logging

// Standard field names so log output can be filtered consistently.
const (
	FieldFile          = "file_path"
	FieldBank          = "bank"
	FieldTransactionID = "transaction_id"
	FieldTemporaryID   = "temporary_id"
	FieldCategory      = "category"
	FieldSubcategory   = "subcategory"
	FieldMerchant      = "merchant"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldComponent     = "component"
	FieldURL           = "url"
)
