package models

import (
	"log"

	"bitbucket.org/mmdatafocus/facility_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{}, &Role{}, &Permission{},
		&Employee{}, &Team{}, &Company{},
		&Site{}, &Building{}, &Floor{}, &Zone{}, &Space{},
		&Asset{},
		&Item{}, &Warehouse{}, &StockMovement{}, &StockSummary{},
		&PurchaseOrder{}, &PurchaseOrderItem{}, &GoodsReceipt{}, &GoodsReceiptItem{},
		&Meter{}, &MeterReading{}, &MeterMaintenanceTrigger{},
		&Preventive{}, &Maintenance{}, &MaintenanceItem{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
