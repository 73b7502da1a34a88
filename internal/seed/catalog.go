package seed

// ModuleDef is one catalog module. Parent refers to another module code.
type ModuleDef struct {
	Code      string
	Name      string
	Parent    string
	SortOrder int
	IsCore    bool
}

// LinkDef attaches a module to a business type.
type LinkDef struct {
	Module     string
	IsDefault  bool
	IsOptional bool
}

// BusinessTypeDef is one vertical template with its module links.
type BusinessTypeDef struct {
	Code  string
	Name  string
	Links []LinkDef
}

// Catalog is the full set of rows the seeder converges the database to.
type Catalog struct {
	Modules       []ModuleDef
	BusinessTypes []BusinessTypeDef
}

// DefaultCatalog returns the shipped module catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Modules: []ModuleDef{
			{Code: "dashboard", Name: "Dashboard", SortOrder: 1, IsCore: true},
			{Code: "pos", Name: "Point of Sale", SortOrder: 2, IsCore: true},
			{Code: "inventory", Name: "Inventory", SortOrder: 10},
			{Code: "inventory.transfers", Name: "Stock Transfers", Parent: "inventory", SortOrder: 11},
			{Code: "inventory.opname", Name: "Stock Opname", Parent: "inventory", SortOrder: 12},
			{Code: "customers", Name: "Customers", SortOrder: 20},
			{Code: "promotions", Name: "Promotions", SortOrder: 30},
			{Code: "reports", Name: "Reports", SortOrder: 40},
			{Code: "prescriptions", Name: "Prescriptions", SortOrder: 50},
			{Code: "appointments", Name: "Appointments", SortOrder: 60},
			{Code: "kitchen", Name: "Kitchen Display", SortOrder: 70},
			{Code: "kitchen.tables", Name: "Table Management", Parent: "kitchen", SortOrder: 71},
		},
		BusinessTypes: []BusinessTypeDef{
			{
				Code: "retail",
				Name: "Retail",
				Links: []LinkDef{
					{Module: "inventory", IsDefault: true, IsOptional: true},
					{Module: "inventory.transfers", IsOptional: true},
					{Module: "inventory.opname", IsDefault: true, IsOptional: true},
					{Module: "customers", IsDefault: true},
					{Module: "promotions", IsDefault: true, IsOptional: true},
					{Module: "reports", IsOptional: true},
				},
			},
			{
				Code: "pharmacy",
				Name: "Pharmacy",
				Links: []LinkDef{
					{Module: "inventory", IsDefault: true},
					{Module: "inventory.opname", IsDefault: true, IsOptional: true},
					{Module: "prescriptions", IsDefault: true},
					{Module: "customers", IsDefault: true, IsOptional: true},
					{Module: "promotions", IsOptional: true},
					{Module: "reports", IsOptional: true},
				},
			},
			{
				Code: "clinic",
				Name: "Clinic",
				Links: []LinkDef{
					{Module: "appointments", IsDefault: true},
					{Module: "customers", IsDefault: true},
					{Module: "reports", IsOptional: true},
				},
			},
			{
				Code: "fnb",
				Name: "Food & Beverage",
				Links: []LinkDef{
					{Module: "kitchen", IsDefault: true},
					{Module: "kitchen.tables", IsDefault: true, IsOptional: true},
					{Module: "inventory", IsOptional: true},
					{Module: "promotions", IsDefault: true, IsOptional: true},
					{Module: "reports", IsOptional: true},
				},
			},
		},
	}
}
