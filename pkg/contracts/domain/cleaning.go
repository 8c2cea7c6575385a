package domain

// Semantic column types produced by inference.
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeDate    = "date"
	TypeString  = "string"
)

// Missing-value strategies accepted by the imputer.
const (
	StrategyMean     = "mean"
	StrategyMedian   = "median"
	StrategyMode     = "mode"
	StrategyConstant = "constant"
)

// Options configures a single cleaning run. Supplied once per run and never
// mutated during it.
type Options struct {
	RemoveOutliers         bool   `json:"remove_outliers"`
	FixDataTypes           bool   `json:"fix_data_types"`
	StandardizeColumnNames bool   `json:"standardize_column_names"`
	MissingValueStrategy   string `json:"missing_value_strategy" validate:"required,oneof=mean median mode constant"`
	ConstantValue          string `json:"constant_value,omitempty" validate:"required_if=MissingValueStrategy constant"`
}

// ColumnRename records one column's standardization outcome, pairing the
// original header with the cleaned name and the inferred type.
type ColumnRename struct {
	Original string `json:"original"`
	Cleaned  string `json:"cleaned"`
	Type     string `json:"type"`
}

// CleaningStats aggregates the counters produced by one cleaning run.
// TotalRows and TotalColumns snapshot the dataset before cleaning; every
// other field is written exactly once by the stage that produces it.
type CleaningStats struct {
	TotalRows         int            `json:"total_rows"`
	TotalColumns      int            `json:"total_columns"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	NullValuesFixed   int            `json:"null_values_fixed"`
	OutlierCount      int            `json:"outlier_count"`
	ColumnsRenamed    []ColumnRename `json:"columns_renamed"`
	DataTypeSummary   map[string]int `json:"data_type_summary"`
}
