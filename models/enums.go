package models

type MeterType string

const (
	MeterTypeCumulative MeterType = "CUMULATIVE"
	MeterTypeGauge      MeterType = "GAUGE"
)

func (t MeterType) Valid() bool {
	switch t {
	case MeterTypeCumulative, MeterTypeGauge:
		return true
	}
	return false
}

type TriggerCondition string

const (
	TriggerConditionEveryXUnits    TriggerCondition = "EVERY_X_UNITS"
	TriggerConditionAboveThreshold TriggerCondition = "ABOVE_THRESHOLD"
	TriggerConditionBelowThreshold TriggerCondition = "BELOW_THRESHOLD"
)

func (t TriggerCondition) Valid() bool {
	switch t {
	case TriggerConditionEveryXUnits, TriggerConditionAboveThreshold, TriggerConditionBelowThreshold:
		return true
	}
	return false
}

type MaintenanceType string

const (
	MaintenanceTypeCorrective MaintenanceType = "CORRECTIVE"
	MaintenanceTypePreventive MaintenanceType = "PREVENTIVE"
	MaintenanceTypePredictive MaintenanceType = "PREDICTIVE"
	MaintenanceTypeInspection MaintenanceType = "INSPECTION"
)

func (t MaintenanceType) Valid() bool {
	switch t {
	case MaintenanceTypeCorrective, MaintenanceTypePreventive,
		MaintenanceTypePredictive, MaintenanceTypeInspection:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type ProcessStatus string

const (
	ProcessStatusPending    ProcessStatus = "PENDING"
	ProcessStatusInProgress ProcessStatus = "IN_PROGRESS"
	ProcessStatusCompleted  ProcessStatus = "COMPLETED"
)

// allowed forward transitions
func (s ProcessStatus) CanTransitionTo(next ProcessStatus) bool {
	switch s {
	case ProcessStatusPending:
		return next == ProcessStatusInProgress
	case ProcessStatusInProgress:
		return next == ProcessStatusCompleted
	}
	return false
}

type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
	FrequencyCustom  Frequency = "CUSTOM"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusIssued            PurchaseOrderStatus = "ISSUED"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusClosed            PurchaseOrderStatus = "CLOSED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// receivable statuses
func (s PurchaseOrderStatus) Receivable() bool {
	return s == PurchaseOrderStatusIssued || s == PurchaseOrderStatusPartiallyReceived
}

type StockMovementType string

const (
	StockMovementTypeLoad     StockMovementType = "LOAD"
	StockMovementTypeUnload   StockMovementType = "UNLOAD"
	StockMovementTypeTransfer StockMovementType = "TRANSFER"
)

func (t StockMovementType) Valid() bool {
	switch t {
	case StockMovementTypeLoad, StockMovementTypeUnload, StockMovementTypeTransfer:
		return true
	}
	return false
}

type StockReferenceType string

const (
	StockReferenceTypePurchaseOrder StockReferenceType = "PURCHASE_ORDER"
	StockReferenceTypeMaintenance   StockReferenceType = "MAINTENANCE"
	StockReferenceTypeManual        StockReferenceType = "MANUAL"
)

type AccessLevel string

const (
	AccessLevelRead  AccessLevel = "READ"
	AccessLevelWrite AccessLevel = "WRITE"
)

func (l AccessLevel) Valid() bool {
	return l == AccessLevelRead || l == AccessLevelWrite
}

type CompanyType string

const (
	CompanyTypeCorporateGroup CompanyType = "CORPORATE_GROUP"
	CompanyTypeCustomer       CompanyType = "CUSTOMER"
	CompanyTypeSupplier       CompanyType = "SUPPLIER"
)

func (t CompanyType) Valid() bool {
	switch t {
	case CompanyTypeCorporateGroup, CompanyTypeCustomer, CompanyTypeSupplier:
		return true
	}
	return false
}

type EmployeeType string

const (
	EmployeeTypeStaff      EmployeeType = "STAFF"
	EmployeeTypeContractor EmployeeType = "CONTRACTOR"
	EmployeeTypeSystem     EmployeeType = "SYSTEM"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)
