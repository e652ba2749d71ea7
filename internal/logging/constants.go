package logging

// Standardized field names for structured logging across the pipeline.
const (
	FieldFile       = "file_path"
	FieldBankType   = "bank_type"
	FieldMerchant   = "merchant"
	FieldCategory   = "category"
	FieldCount      = "count"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
