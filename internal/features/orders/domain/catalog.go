package domain

// Supported destination countries.
const (
	CountryKosovo         = "Kosovë"
	CountryAlbania        = "Shqipëri"
	CountryNorthMacedonia = "Maqedoni e Veriut"
)

// OtherCity is the city option that switches the form to free-text entry.
const OtherCity = "OTHER_CUSTOM"

// Country is a destination the order form offers.
type Country struct {
	Name        string   `json:"name"`
	CallingCode string   `json:"callingCode"`
	Cities      []string `json:"cities"`
}

var countries = []Country{
	{
		Name:        CountryKosovo,
		CallingCode: "+383",
		Cities: []string{
			"Prishtinë", "Prizren", "Pejë", "Gjakovë", "Gjilan", "Ferizaj", "Mitrovicë",
			"Vushtrri", "Podujevë", "Suharekë", "Rahovec", "Lipjan", "Drenas", "Klinë", "Skenderaj",
		},
	},
	{
		Name:        CountryAlbania,
		CallingCode: "+355",
		Cities: []string{
			"Tiranë", "Durrës", "Vlorë", "Shkodër", "Elbasan", "Fier", "Korçë",
			"Berat", "Lushnje", "Kavajë", "Gjirokastër", "Sarandë", "Lezhë", "Kukës", "Peshkopi",
		},
	},
	{
		Name:        CountryNorthMacedonia,
		CallingCode: "+389",
		Cities: []string{
			"Shkup", "Tetovë", "Kumanovë", "Gostivar", "Manastir", "Strugë",
			"Ohër", "Dibër", "Kërçovë", "Veles", "Stip",
		},
	},
}

// DefaultCallingCode is preselected before a country is chosen.
const DefaultCallingCode = "+383"

// Countries returns the destination catalog in display order.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// LookupCountry finds a country by its display name.
func LookupCountry(name string) (Country, bool) {
	for _, c := range countries {
		if c.Name == name {
			return c, true
		}
	}
	return Country{}, false
}

// HasCity reports whether city is one of the listed cities of country.
func (c Country) HasCity(city string) bool {
	for _, listed := range c.Cities {
		if listed == city {
			return true
		}
	}
	return false
}
