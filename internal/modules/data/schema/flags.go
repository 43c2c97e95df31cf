package schema

// QualityFlag is a stable string code attached to a record or output
// describing a soft issue. The vocabulary is fixed; callers never invent
// new flag strings.
type QualityFlag string

const (
	FlagMissingValue         QualityFlag = "MISSING_VALUE"
	FlagDuplicateResolved    QualityFlag = "DUPLICATE_RESOLVED"
	FlagOutlierReturn        QualityFlag = "OUTLIER_RETURN"
	FlagSuspectCorpAction    QualityFlag = "SUSPECT_CORP_ACTION"
	FlagNonpositivePrice     QualityFlag = "NONPOSITIVE_PRICE"
	FlagNonmonotonicIndex    QualityFlag = "NONMONOTONIC_INDEX"
	FlagStale                QualityFlag = "STALE"
	FlagProviderTimestampUsed QualityFlag = "PROVIDER_TIMESTAMP_USED"
	FlagAdjustedPricePresent QualityFlag = "ADJUSTED_PRICE_PRESENT"
	FlagImputed              QualityFlag = "IMPUTED"
	FlagCalendarConflict     QualityFlag = "CALENDAR_CONFLICT"
)

// TsProvenance records how a canonical record's ts field was derived.
type TsProvenance string

const (
	TsExchangeClose TsProvenance = "EXCHANGE_CLOSE"
	TsFixingTime    TsProvenance = "FIXING_TIME"
	TsProviderEOD   TsProvenance = "PROVIDER_EOD"
	TsUnknown       TsProvenance = "UNKNOWN"
)

// AdjustmentBasis describes how a bar's close/adj_close pair relates.
type AdjustmentBasis string

const (
	AdjustmentNone      AdjustmentBasis = "NONE"
	AdjustmentSplitOnly AdjustmentBasis = "SPLIT_ONLY"
	AdjustmentTotal     AdjustmentBasis = "TOTAL_RETURN"
)
