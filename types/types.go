package types

const SubProtocol16 = "ocpp1.6"

type AuthorizationStatus string

const (
	AuthorizationStatusAccepted AuthorizationStatus = "Accepted"
	AuthorizationStatusBlocked  AuthorizationStatus = "Blocked"
	AuthorizationStatusInvalid  AuthorizationStatus = "Invalid"
)

type IdTagInfo struct {
	ExpiryDate  *DateTime           `json:"expiryDate,omitempty"`
	ParentIdTag string              `json:"parentIdTag,omitempty"`
	Status      AuthorizationStatus `json:"status"`
}

func NewIdTagInfo(status AuthorizationStatus) *IdTagInfo {
	return &IdTagInfo{Status: status}
}

type Measurand string
type UnitOfMeasure string

const (
	MeasurandEnergyActiveImportRegister Measurand     = "Energy.Active.Import.Register"
	UnitOfMeasureWh                     UnitOfMeasure = "Wh"
)

// SampledValue Value is a string on the wire; energy readings carry the
// cumulative register in Wh.
type SampledValue struct {
	Value     string        `json:"value"`
	Measurand Measurand     `json:"measurand,omitempty"`
	Unit      UnitOfMeasure `json:"unit,omitempty"`
}

type MeterValue struct {
	Timestamp    *DateTime      `json:"timestamp"`
	SampledValue []SampledValue `json:"sampledValue"`
}

// Charging profiles
type ChargingProfilePurposeType string
type ChargingProfileKindType string
type ChargingRateUnitType string

const (
	ChargingProfilePurposeTxDefaultProfile ChargingProfilePurposeType = "TxDefaultProfile"
	ChargingProfilePurposeTxProfile        ChargingProfilePurposeType = "TxProfile"
	ChargingProfileKindAbsolute            ChargingProfileKindType    = "Absolute"
	ChargingProfileKindRecurring           ChargingProfileKindType    = "Recurring"
	ChargingProfileKindRelative            ChargingProfileKindType    = "Relative"
	ChargingRateUnitWatts                  ChargingRateUnitType       = "W"
	ChargingRateUnitAmperes                ChargingRateUnitType       = "A"
)

type ChargingSchedulePeriod struct {
	StartPeriod int     `json:"startPeriod"`
	Limit       float64 `json:"limit"`
}

type ChargingSchedule struct {
	Duration               *int                     `json:"duration,omitempty"`
	StartSchedule          *DateTime                `json:"startSchedule,omitempty"`
	ChargingRateUnit       ChargingRateUnitType     `json:"chargingRateUnit"`
	ChargingSchedulePeriod []ChargingSchedulePeriod `json:"chargingSchedulePeriod"`
}

type ChargingProfile struct {
	ChargingProfileId      int                        `json:"chargingProfileId"`
	TransactionId          int                        `json:"transactionId,omitempty"`
	StackLevel             int                        `json:"stackLevel"`
	ChargingProfilePurpose ChargingProfilePurposeType `json:"chargingProfilePurpose"`
	ChargingProfileKind    ChargingProfileKindType    `json:"chargingProfileKind"`
	ChargingSchedule       *ChargingSchedule          `json:"chargingSchedule"`
}
