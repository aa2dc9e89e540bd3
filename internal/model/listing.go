package model

// Transmission is the gearbox type of a vehicle. The zero value means unknown.
type Transmission string

const (
	TransmissionUnknown   Transmission = ""
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

// Known reports whether the transmission was actually reported
func (t Transmission) Known() bool {
	return t == TransmissionManual || t == TransmissionAutomatic
}

// VehicleIdentity holds the free-text keys used for matching
type VehicleIdentity struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Variant string `json:"variant"`
}

// VehicleSpec holds optional technical attributes
type VehicleSpec struct {
	Horsepower        *int         `json:"horsepower,omitempty"`
	FuelType          string       `json:"fuel_type,omitempty"`
	Transmission      Transmission `json:"transmission,omitempty"`
	BodyType          string       `json:"body_type,omitempty"`
	Year              *int         `json:"year,omitempty"`
	WLTP              *float64     `json:"wltp,omitempty"`
	CO2Emission       *float64     `json:"co2_emission,omitempty"`
	ConsumptionL100km *float64     `json:"consumption_l_100km,omitempty"`
}

// Offer is one financing option for a vehicle. Prices are whole currency units.
type Offer struct {
	MonthlyPrice   int `json:"monthly_price"`
	FirstPayment   int `json:"first_payment"`
	PeriodMonths   int `json:"period_months"`
	MileagePerYear int `json:"mileage_per_year"`
}

// ExtractedCar is a vehicle produced by the extraction pipeline, not yet reconciled
type ExtractedCar struct {
	VehicleIdentity
	VehicleSpec
	Offers []Offer `json:"offers"`
}

// ExistingListing is a catalog row with a stable identifier
type ExistingListing struct {
	ID string `json:"id"`
	VehicleIdentity
	VehicleSpec
	RetailPrice *float64 `json:"retail_price,omitempty"`
	Offers      []Offer  `json:"offers"`
}

// Car returns the listing's vehicle fields as an ExtractedCar
func (l ExistingListing) Car() ExtractedCar {
	return ExtractedCar{
		VehicleIdentity: l.VehicleIdentity,
		VehicleSpec:     l.VehicleSpec,
		Offers:          l.Offers,
	}
}
