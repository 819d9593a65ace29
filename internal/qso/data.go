package qso

import "regexp"

// Reference data pools for exchange generation. Values are kept in the
// uppercase form they are transmitted in.

var commonNames = []string{
	"BOB", "JOHN", "MIKE", "TOM", "DAVE", "BILL", "JIM", "STEVE", "PAUL", "MARK",
	"IAN", "CHRIS", "PETER", "ALAN", "BRIAN", "GARY", "LARRY", "TONY", "FRED", "ROGER",
	"DAN", "KEN", "RON", "JACK", "ED", "AL", "JOE", "SAM", "TED", "BEN",
	"HANS", "JEAN", "PIERRE", "LUIGI", "CARLOS", "JOSE", "ANTONIO", "MARCO",
	"KLAUS", "HELMUT", "FRANZ", "GEORG", "ERIK", "LARS", "SVEN", "PAOLO",
	"MARY", "SUE", "LINDA", "KAREN", "NANCY", "BARBARA", "SARAH", "ANNA",
	"LISA", "LAURA", "JANE", "BETTY", "RUTH", "CAROL", "DIANE", "HELEN",
}

var citiesByRegion = map[string][]string{
	"us": {
		"BOSTON", "CHICAGO", "DENVER", "SEATTLE", "PORTLAND", "AUSTIN", "DALLAS",
		"MIAMI", "ATLANTA", "PHOENIX", "DETROIT", "MINNEAPOLIS", "CLEVELAND",
		"PHILADELPHIA", "NEW YORK", "LOS ANGELES", "SAN DIEGO", "HOUSTON",
		"NASHVILLE", "MEMPHIS", "CHARLOTTE", "RALEIGH", "TAMPA", "ORLANDO",
	},
	"uk": {
		"LONDON", "MANCHESTER", "BIRMINGHAM", "LEEDS", "GLASGOW", "EDINBURGH",
		"BRISTOL", "LIVERPOOL", "CARDIFF", "BELFAST", "OXFORD", "CAMBRIDGE",
		"BRIGHTON", "PLYMOUTH", "SOUTHAMPTON", "NOTTINGHAM", "SHEFFIELD", "YORK",
	},
	"germany": {
		"BERLIN", "MUNICH", "HAMBURG", "COLOGNE", "FRANKFURT", "STUTTGART",
		"DUSSELDORF", "DORTMUND", "LEIPZIG", "BREMEN", "DRESDEN", "HANNOVER",
	},
	"france": {
		"PARIS", "LYON", "MARSEILLE", "TOULOUSE", "NICE", "NANTES", "STRASBOURG",
		"MONTPELLIER", "BORDEAUX", "LILLE", "RENNES", "REIMS",
	},
	"italy": {
		"ROME", "MILAN", "FLORENCE", "VENICE", "NAPLES", "TURIN", "BOLOGNA",
		"GENOA", "PALERMO", "VERONA",
	},
	"belgium": {
		"BRUSSELS", "ANTWERP", "GHENT", "BRUGES", "LIEGE", "NAMUR", "CHARLEROI",
	},
	"netherlands": {
		"AMSTERDAM", "ROTTERDAM", "UTRECHT", "THE HAGUE", "EINDHOVEN", "TILBURG",
		"GRONINGEN", "LEIDEN", "HAARLEM",
	},
	"spain": {
		"MADRID", "BARCELONA", "VALENCIA", "SEVILLA", "BILBAO", "MALAGA",
		"ZARAGOZA", "MURCIA", "PALMA", "GRANADA",
	},
	"australia": {
		"SYDNEY", "MELBOURNE", "BRISBANE", "PERTH", "ADELAIDE",
	},
	"japan": {
		"TOKYO", "OSAKA", "KYOTO", "YOKOHAMA", "NAGOYA", "SAPPORO",
	},
}

var allCities = func() []string {
	var all []string
	// Deterministic order so seeded generation is reproducible.
	for _, region := range []string{
		"us", "uk", "germany", "france", "italy",
		"belgium", "netherlands", "spain", "australia", "japan",
	} {
		all = append(all, citiesByRegion[region]...)
	}
	return all
}()

var transceivers = []string{
	"IC7300", "IC7610", "IC9700", "IC705", "IC7100", "IC7851",
	"FT991A", "FT710", "FTDX10", "FTDX101D", "FT818", "FT891",
	"TS590", "TS890", "TS480", "TS990", "TS570",
	"K3", "K4", "KX3", "KX2", "K2",
}

var antennas = []string{
	"DIPOLE", "VERTICAL", "BEAM", "YAGI", "LOOP", "WIRE", "INVERTED V",
	"G5RV", "WINDOM", "DOUBLET", "GROUND PLANE", "DELTA LOOP", "QUAD",
	"HEX BEAM", "MAGNETIC LOOP", "END FED", "LONG WIRE", "FOLDED DIPOLE",
}

var powerLevels = []string{"5W", "10W", "25W", "50W", "100W", "150W", "200W", "400W"}

var weatherConditions = []string{
	"SUNNY", "CLOUDY", "RAIN", "CLEAR", "OVERCAST", "SNOW", "FOGGY",
	"PARTLY CLOUDY", "WINDY", "STORMS", "DRIZZLE", "FAIR",
}

var temperatures = []string{
	"-10C", "-5C", "0C", "5C", "10C", "15C", "20C", "25C", "30C", "35C",
}

// Most common signal reports heard in real QSOs.
var rstReports = []string{"599", "589", "579", "569", "559", "549", "539", "449"}

var (
	rstPattern  = regexp.MustCompile(`^[1-5][1-9][1-9]$`)
	namePattern = regexp.MustCompile(`^[A-Z]{2,12}$`)
	qthPattern  = regexp.MustCompile(`^[A-Z][A-Z ]{1,29}$`)
)

// ValidateRST reports whether s is a plausible 3-digit signal report.
func ValidateRST(s string) bool {
	return rstPattern.MatchString(s)
}

// ValidateName reports whether s is a plausible operator name.
func ValidateName(s string) bool {
	return namePattern.MatchString(s)
}

// ValidateQTH reports whether s is a plausible location string.
func ValidateQTH(s string) bool {
	return qthPattern.MatchString(s)
}
