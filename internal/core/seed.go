package core

// SeedExpenses returns the sample data used to initialize an empty expense
// store. Income stores start empty.
func SeedExpenses() []Record {
	return []Record{
		{
			ID:            "1",
			Date:          "2024-01-15",
			Category:      CategoryFeed,
			Description:   "Cattle feed purchase",
			Amount:        250000,
			Quantity:      500,
			Unit:          "kg",
			Supplier:      "Green Feed Supplies",
			PaymentMethod: PaymentBankTransfer,
			Notes:         "Monthly feed supply",
			CreatedAt:     "2024-01-15T10:00:00Z",
			UpdatedAt:     "2024-01-15T10:00:00Z",
		},
		{
			ID:            "2",
			Date:          "2024-01-18",
			Category:      CategoryMedicine,
			Description:   "Vaccines and medications",
			Amount:        85000,
			Supplier:      "Veterinary Pharma",
			PaymentMethod: PaymentCash,
			Notes:         "Quarterly vaccine supply",
			CreatedAt:     "2024-01-18T14:30:00Z",
			UpdatedAt:     "2024-01-18T14:30:00Z",
		},
		{
			ID:            "3",
			Date:          "2024-01-20",
			Category:      CategoryVeterinary,
			Description:   "Regular health checkup",
			Amount:        30000,
			Supplier:      "Dr. Smith Veterinary Clinic",
			PaymentMethod: PaymentCreditCard,
			Notes:         "Monthly checkup for all cattle",
			CreatedAt:     "2024-01-20T09:15:00Z",
			UpdatedAt:     "2024-01-20T09:15:00Z",
		},
		{
			ID:            "4",
			Date:          "2024-01-22",
			Category:      CategoryEquipment,
			Description:   "Milking machine maintenance",
			Amount:        45000,
			Supplier:      "Dairy Equipment Services",
			PaymentMethod: PaymentBankTransfer,
			Notes:         "Preventive maintenance",
			CreatedAt:     "2024-01-22T11:00:00Z",
			UpdatedAt:     "2024-01-22T11:00:00Z",
		},
		{
			ID:            "5",
			Date:          "2024-01-25",
			Category:      CategoryLabor,
			Description:   "Monthly wages",
			Amount:        350000,
			PaymentMethod: PaymentBankTransfer,
			Notes:         "Staff salaries for January",
			CreatedAt:     "2024-01-25T16:00:00Z",
			UpdatedAt:     "2024-01-25T16:00:00Z",
		},
		{
			ID:            "6",
			Date:          "2024-01-28",
			Category:      CategoryUtilities,
			Description:   "Electricity bill",
			Amount:        68000,
			Supplier:      "Power Company",
			PaymentMethod: PaymentBankTransfer,
			Notes:         "Monthly electricity consumption",
			CreatedAt:     "2024-01-28T12:00:00Z",
			UpdatedAt:     "2024-01-28T12:00:00Z",
		},
	}
}
