package model

// Stock transaction types.
const (
	TxTypeIn     = "IN"
	TxTypeOut    = "OUT"
	TxTypeMove   = "MOVE"
	TxTypeAdjust = "ADJUST"
)

// TxTypes lists the allowed transaction types.
var TxTypes = []string{TxTypeIn, TxTypeOut, TxTypeMove, TxTypeAdjust}

// Stock transaction reasons.
const (
	TxReasonDonation     = "donation"
	TxReasonDistribution = "distribution"
	TxReasonDamage       = "damage"
	TxReasonCount        = "count"
	TxReasonCorrection   = "correction"
	TxReasonOther        = "other"
)

// TxReasons lists the allowed transaction reasons.
var TxReasons = []string{
	TxReasonDonation,
	TxReasonDistribution,
	TxReasonDamage,
	TxReasonCount,
	TxReasonCorrection,
	TxReasonOther,
}
