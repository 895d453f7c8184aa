package geo

// defaultProfiles is the built-in region table. Centers are city-hall or
// historic-center coordinates; radii follow settlement size.
var defaultProfiles = []RegionProfile{
	// France
	{Code: "PA", Aliases: []string{"PAR"}, Name: "Paris", CenterLat: 48.8566, CenterLng: 2.3522, MaxRadiusMeters: RadiusMegacity, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b75\d{3}\b`},
	{Code: "LY", Aliases: []string{"LYO"}, Name: "Lyon", CenterLat: 45.7640, CenterLng: 4.8357, MaxRadiusMeters: RadiusMetro, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b69\d{3}\b`},
	{Code: "MARS", Aliases: []string{"MRS"}, Name: "Marseille", CenterLat: 43.2965, CenterLng: 5.3698, MaxRadiusMeters: RadiusMetro, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b13\d{3}\b`},
	{Code: "TLS", Name: "Toulouse", CenterLat: 43.6047, CenterLng: 1.4442, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b31\d{3}\b`},
	{Code: "BDX", Name: "Bordeaux", CenterLat: 44.8378, CenterLng: -0.5792, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b33\d{3}\b`},
	{Code: "NA", Aliases: []string{"NTE"}, Name: "Nantes", CenterLat: 47.2184, CenterLng: -1.5536, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b44\d{3}\b`},
	{Code: "LIL", Aliases: []string{"LILE", "LILL"}, Name: "Lille", CenterLat: 50.6292, CenterLng: 3.0573, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b59\d{3}\b`},
	{Code: "STR", Aliases: []string{"STRG"}, Name: "Strasbourg", CenterLat: 48.5734, CenterLng: 7.7521, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b67\d{3}\b`},
	{Code: "MTP", Aliases: []string{"MPL"}, Name: "Montpellier", CenterLat: 43.6108, CenterLng: 3.8767, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b34\d{3}\b`},
	{Code: "NICE", Aliases: []string{"NP", "NCE"}, Name: "Nice", CenterLat: 43.7102, CenterLng: 7.2620, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b06\d{3}\b`},
	{Code: "AMI", Name: "Amiens", CenterLat: 49.8941, CenterLng: 2.2958, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "ORLN", Name: "Orléans", CenterLat: 47.9029, CenterLng: 1.9039, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "DIJ", Name: "Dijon", CenterLat: 47.3220, CenterLng: 5.0415, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "GRN", Name: "Grenoble", CenterLat: 45.1885, CenterLng: 5.7245, CountryCode: "fr", Locale: LocaleFR},
	{Code: "AIX", Name: "Aix-en-Provence", CenterLat: 43.5297, CenterLng: 5.4474, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "AVI", Name: "Avignon", CenterLat: 43.9493, CenterLng: 4.8055, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "NIM", Name: "Nîmes", CenterLat: 43.8367, CenterLng: 4.3601, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "CLR", Name: "Clermont-Ferrand", CenterLat: 45.7772, CenterLng: 3.0870, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "RN", Aliases: []string{"RNS"}, Name: "Rennes", CenterLat: 48.1173, CenterLng: -1.6778, CountryCode: "fr", Locale: LocaleFR},
	{Code: "VRS", Aliases: []string{"VER"}, Name: "Versailles", CenterLat: 48.8014, CenterLng: 2.1301, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b78\d{3}\b`},
	{Code: "REIM", Name: "Reims", CenterLat: 49.2583, CenterLng: 4.0317, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR, PostcodePattern: `\b51\d{3}\b`},
	{Code: "BAB", Name: "Bayonne-Anglet-Biarritz", CenterLat: 43.4832, CenterLng: -1.5586, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "FTBL", Name: "Fontainebleau", CenterLat: 48.4010, CenterLng: 2.7024, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "PAU", Name: "Pau", CenterLat: 43.2965, CenterLng: -0.3708, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "PRP", Name: "Perpignan", CenterLat: 42.6988, CenterLng: 2.8948, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "MTB", Name: "Montauban", CenterLat: 44.0171, CenterLng: 1.3527, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "CAPF", Aliases: []string{"CF", "CFT", "CFRT", "LEGE", "LGF"}, Name: "Lège-Cap-Ferret", CenterLat: 44.6357, CenterLng: -1.2479, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "ARC", Aliases: []string{"ARN"}, Name: "Arcachon", CenterLat: 44.6608, CenterLng: -1.1680, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "ROY", Aliases: []string{"RON"}, Name: "Royan", CenterLat: 45.6222, CenterLng: -1.0284, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "LRC", Aliases: []string{"LROC"}, Name: "La Rochelle", CenterLat: 46.1603, CenterLng: -1.1511, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "CAZ", Name: "Cassis", CenterLat: 43.2141, CenterLng: 5.5378, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "LCT", Name: "La Ciotat", CenterLat: 43.1748, CenterLng: 5.6095, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "LBR", Name: "Luberon", CenterLat: 43.8324, CenterLng: 5.3658, MaxRadiusMeters: RadiusCity, CountryCode: "fr", Locale: LocaleFR},
	{Code: "FRQ", Name: "Forcalquier", CenterLat: 43.9600, CenterLng: 5.7810, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "MEN", Name: "Menton", CenterLat: 43.7764, CenterLng: 7.5048, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "CON", Name: "Contis", CenterLat: 44.0900, CenterLng: -1.3150, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "VLMO", Name: "Valmorel", CenterLat: 45.4553, CenterLng: 6.4506, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "CAP", Name: "Cap Fréhel", CenterLat: 48.6815, CenterLng: -2.3182, MaxRadiusMeters: RadiusVillage, CountryCode: "fr", Locale: LocaleFR},
	{Code: "BTA", Name: "Bastia", CenterLat: 42.6973, CenterLng: 9.4510, MaxRadiusMeters: RadiusTown, CountryCode: "fr", Locale: LocaleFR},
	{Code: "REUN", Name: "La Réunion", CenterLat: -21.1151, CenterLng: 55.5364, MaxRadiusMeters: RadiusMegacity, CountryCode: "re", Locale: LocaleFR},

	// United Kingdom
	{Code: "LDN", Name: "London", CenterLat: 51.5074, CenterLng: -0.1278, MaxRadiusMeters: RadiusMegacity, CountryCode: "gb", Locale: LocaleUK, PostcodePattern: `\b[A-Z]{1,2}\d[A-Z\d]?(\s*\d[A-Z]{2})?\b`},
	{Code: "MAN", Name: "Manchester", CenterLat: 53.4808, CenterLng: -2.2426, MaxRadiusMeters: RadiusMetro, CountryCode: "gb", Locale: LocaleUK},
	{Code: "NCL", Name: "Newcastle", CenterLat: 54.9783, CenterLng: -1.6178, CountryCode: "gb", Locale: LocaleUK},
	{Code: "BHM", Name: "Birmingham", CenterLat: 52.4862, CenterLng: -1.8904, MaxRadiusMeters: RadiusMetro, CountryCode: "gb", Locale: LocaleUK},

	// Rest of Europe
	{Code: "BCN", Aliases: []string{"BRC"}, Name: "Barcelona", CenterLat: 41.3851, CenterLng: 2.1734, MaxRadiusMeters: RadiusMetro, CountryCode: "es", Locale: LocaleOther},
	{Code: "MAD", Name: "Madrid", CenterLat: 40.4168, CenterLng: -3.7038, MaxRadiusMeters: RadiusMetro, CountryCode: "es", Locale: LocaleOther},
	{Code: "MLGA", Name: "Malaga", CenterLat: 36.7213, CenterLng: -4.4214, CountryCode: "es", Locale: LocaleOther},
	{Code: "BBO", Aliases: []string{"BIL"}, Name: "Bilbao", CenterLat: 43.2630, CenterLng: -2.9350, CountryCode: "es", Locale: LocaleOther},
	{Code: "ROM", Name: "Rome", CenterLat: 41.9028, CenterLng: 12.4964, MaxRadiusMeters: RadiusMetro, CountryCode: "it", Locale: LocaleOther},
	{Code: "RA", Aliases: []string{"RAV"}, Name: "Ravenna", CenterLat: 44.4184, CenterLng: 12.2035, MaxRadiusMeters: RadiusTown, CountryCode: "it", Locale: LocaleOther},
	{Code: "FLRN", Aliases: []string{"FLR"}, Name: "Florence", CenterLat: 43.7696, CenterLng: 11.2558, CountryCode: "it", Locale: LocaleOther},
	{Code: "MLN", Aliases: []string{"MIL"}, Name: "Milan", CenterLat: 45.4642, CenterLng: 9.1900, MaxRadiusMeters: RadiusMetro, CountryCode: "it", Locale: LocaleOther},
	{Code: "VEN", Aliases: []string{"VCE"}, Name: "Venice", CenterLat: 45.4408, CenterLng: 12.3155, MaxRadiusMeters: RadiusTown, CountryCode: "it", Locale: LocaleOther},
	{Code: "NPL", Aliases: []string{"NAP"}, Name: "Naples", CenterLat: 40.8518, CenterLng: 14.2681, CountryCode: "it", Locale: LocaleOther},
	{Code: "GNS", Aliases: []string{"GEN"}, Name: "Genoa", CenterLat: 44.4056, CenterLng: 8.9463, CountryCode: "it", Locale: LocaleOther},
	{Code: "AMS", Name: "Amsterdam", CenterLat: 52.3676, CenterLng: 4.9041, MaxRadiusMeters: RadiusMetro, CountryCode: "nl", Locale: LocaleOther},
	{Code: "RTD", Name: "Rotterdam", CenterLat: 51.9225, CenterLng: 4.4792, CountryCode: "nl", Locale: LocaleOther},
	{Code: "NOO", Name: "Noordwijk", CenterLat: 52.2361, CenterLng: 4.4303, MaxRadiusMeters: RadiusVillage, CountryCode: "nl", Locale: LocaleOther},
	{Code: "BRL", Name: "Berlin", CenterLat: 52.5200, CenterLng: 13.4050, MaxRadiusMeters: RadiusMetro, CountryCode: "de", Locale: LocaleOther},
	{Code: "MUN", Name: "Munich", CenterLat: 48.1351, CenterLng: 11.5820, CountryCode: "de", Locale: LocaleOther},
	{Code: "KLN", Name: "Cologne", CenterLat: 50.9375, CenterLng: 6.9603, CountryCode: "de", Locale: LocaleOther},
	{Code: "FKF", Name: "Frankfurt", CenterLat: 50.1109, CenterLng: 8.6821, CountryCode: "de", Locale: LocaleOther},
	{Code: "WN", Name: "Vienna", CenterLat: 48.2082, CenterLng: 16.3738, MaxRadiusMeters: RadiusMetro, CountryCode: "at", Locale: LocaleOther},
	{Code: "BXL", Name: "Brussels", CenterLat: 50.8503, CenterLng: 4.3517, CountryCode: "be", Locale: LocaleFR},
	{Code: "CHAR", Name: "Charleroi", CenterLat: 50.4108, CenterLng: 4.4446, MaxRadiusMeters: RadiusTown, CountryCode: "be", Locale: LocaleFR},
	{Code: "ANVR", Name: "Antwerp", CenterLat: 51.2194, CenterLng: 4.4025, CountryCode: "be", Locale: LocaleOther},
	{Code: "BRUG", Aliases: []string{"BRG"}, Name: "Bruges", CenterLat: 51.2093, CenterLng: 3.2247, MaxRadiusMeters: RadiusTown, CountryCode: "be", Locale: LocaleOther},
	{Code: "RDU", Name: "Durbuy", CenterLat: 50.3543, CenterLng: 5.4563, MaxRadiusMeters: RadiusVillage, CountryCode: "be", Locale: LocaleFR},
	{Code: "BRN", Name: "Bern", CenterLat: 46.9480, CenterLng: 7.4474, MaxRadiusMeters: RadiusTown, CountryCode: "ch", Locale: LocaleOther},
	{Code: "BSL", Name: "Basel", CenterLat: 47.5596, CenterLng: 7.5886, MaxRadiusMeters: RadiusTown, CountryCode: "ch", Locale: LocaleOther},
	{Code: "GNV", Name: "Geneva", CenterLat: 46.2044, CenterLng: 6.1432, CountryCode: "ch", Locale: LocaleFR},
	{Code: "LSN", Name: "Lausanne", CenterLat: 46.5197, CenterLng: 6.6323, MaxRadiusMeters: RadiusTown, CountryCode: "ch", Locale: LocaleFR},
	{Code: "ANZR", Name: "Anzère", CenterLat: 46.3100, CenterLng: 7.3870, MaxRadiusMeters: RadiusVillage, CountryCode: "ch", Locale: LocaleFR},
	{Code: "LJU", Name: "Ljubljana", CenterLat: 46.0569, CenterLng: 14.5058, MaxRadiusMeters: RadiusTown, CountryCode: "si", Locale: LocaleOther},
	{Code: "LX", Aliases: []string{"LIS", "LSB"}, Name: "Lisbon", CenterLat: 38.7223, CenterLng: -9.1393, MaxRadiusMeters: RadiusMetro, CountryCode: "pt", Locale: LocaleOther},
	{Code: "FAO", Name: "Faro", CenterLat: 37.0194, CenterLng: -7.9322, MaxRadiusMeters: RadiusTown, CountryCode: "pt", Locale: LocaleOther},
	{Code: "PRG", Name: "Prague", CenterLat: 50.0755, CenterLng: 14.4378, CountryCode: "cz", Locale: LocaleOther},
	{Code: "WAR", Name: "Warsaw", CenterLat: 52.2297, CenterLng: 21.0122, CountryCode: "pl", Locale: LocaleOther},
	{Code: "IST", Name: "Istanbul", CenterLat: 41.0082, CenterLng: 28.9784, MaxRadiusMeters: RadiusMegacity, CountryCode: "tr", Locale: LocaleOther},
	{Code: "RVK", Name: "Reykjavik", CenterLat: 64.1466, CenterLng: -21.9426, CountryCode: "is", Locale: LocaleOther},
	{Code: "HALM", Name: "Halmstad", CenterLat: 56.6745, CenterLng: 12.8578, MaxRadiusMeters: RadiusTown, CountryCode: "se", Locale: LocaleOther},
	{Code: "VSB", Name: "Visby", CenterLat: 57.6349, CenterLng: 18.2948, MaxRadiusMeters: RadiusVillage, CountryCode: "se", Locale: LocaleOther},
	{Code: "GRU", Name: "Gruž", CenterLat: 43.2615, CenterLng: 17.0186, MaxRadiusMeters: RadiusVillage, CountryCode: "hr", Locale: LocaleOther},

	// Africa
	{Code: "MRAK", Name: "Marrakech", CenterLat: 31.6295, CenterLng: -7.9811, CountryCode: "ma", Locale: LocaleFR},
	{Code: "RBA", Name: "Rabat", CenterLat: 34.0209, CenterLng: -6.8416, CountryCode: "ma", Locale: LocaleFR},
	{Code: "DJBA", Name: "Djerba", CenterLat: 33.8076, CenterLng: 10.8451, CountryCode: "tn", Locale: LocaleFR},
	{Code: "TN", Aliases: []string{"TUN"}, Name: "Tunis", CenterLat: 36.8065, CenterLng: 10.1815, CountryCode: "tn", Locale: LocaleFR},
	{Code: "MBSA", Name: "Mombasa", CenterLat: -4.0435, CenterLng: 39.6682, CountryCode: "ke", Locale: LocaleUK},

	// Asia
	{Code: "TK", Aliases: []string{"TYO"}, Name: "Tokyo", CenterLat: 35.6762, CenterLng: 139.6503, MaxRadiusMeters: RadiusMegacity, CountryCode: "jp", Locale: LocaleOther},
	{Code: "HK", Name: "Hong Kong", CenterLat: 22.3193, CenterLng: 114.1694, MaxRadiusMeters: RadiusMegacity, CountryCode: "hk", Locale: LocaleUK},
	{Code: "BKK", Aliases: []string{"BGK"}, Name: "Bangkok", CenterLat: 13.7563, CenterLng: 100.5018, MaxRadiusMeters: RadiusMegacity, CountryCode: "th", Locale: LocaleOther},
	{Code: "KAT", Name: "Kathmandu", CenterLat: 27.7172, CenterLng: 85.3240, CountryCode: "np", Locale: LocaleOther},
	{Code: "DHK", Name: "Dhaka", CenterLat: 23.8103, CenterLng: 90.4125, MaxRadiusMeters: RadiusMegacity, CountryCode: "bd", Locale: LocaleOther},
	{Code: "DJN", Name: "Daejeon", CenterLat: 36.3504, CenterLng: 127.3845, CountryCode: "kr", Locale: LocaleOther},
	{Code: "SL", Name: "Seoul", CenterLat: 37.5665, CenterLng: 126.9780, MaxRadiusMeters: RadiusMegacity, CountryCode: "kr", Locale: LocaleOther},
	{Code: "BT", Name: "Bhutan", CenterLat: 27.4712, CenterLng: 89.6339, MaxRadiusMeters: RadiusMegacity, CountryCode: "bt", Locale: LocaleOther},
	{Code: "VRN", Name: "Varanasi", CenterLat: 25.2854, CenterLng: 82.9990, CountryCode: "in", Locale: LocaleUK},
	{Code: "SIN", Name: "Singapore", CenterLat: 1.3521, CenterLng: 103.8198, MaxRadiusMeters: RadiusMetro, CountryCode: "sg", Locale: LocaleUK},
	{Code: "ELT", Name: "Eilat", CenterLat: 29.5577, CenterLng: 34.9519, MaxRadiusMeters: RadiusTown, CountryCode: "il", Locale: LocaleOther},

	// Americas
	{Code: "NY", Name: "New York", CenterLat: 40.7128, CenterLng: -74.0060, MaxRadiusMeters: RadiusMegacity, CountryCode: "us", Locale: LocaleUK},
	{Code: "LA", Name: "Los Angeles", CenterLat: 34.0522, CenterLng: -118.2437, MaxRadiusMeters: RadiusMegacity, CountryCode: "us", Locale: LocaleUK},
	{Code: "MIA", Name: "Miami", CenterLat: 25.7617, CenterLng: -80.1918, MaxRadiusMeters: RadiusMetro, CountryCode: "us", Locale: LocaleUK},
	{Code: "SD", Name: "San Diego", CenterLat: 32.7157, CenterLng: -117.1611, MaxRadiusMeters: RadiusMetro, CountryCode: "us", Locale: LocaleUK},
	{Code: "SF", Name: "San Francisco", CenterLat: 37.7749, CenterLng: -122.4194, MaxRadiusMeters: RadiusMetro, CountryCode: "us", Locale: LocaleUK},
	{Code: "CCU", Name: "Cancún", CenterLat: 21.1619, CenterLng: -86.8515, CountryCode: "mx", Locale: LocaleOther},
	{Code: "SP", Name: "São Paulo", CenterLat: -23.5505, CenterLng: -46.6333, MaxRadiusMeters: RadiusMegacity, CountryCode: "br", Locale: LocaleOther},
	{Code: "POTI", Name: "Potosí", CenterLat: -19.5836, CenterLng: -65.7531, MaxRadiusMeters: RadiusTown, CountryCode: "bo", Locale: LocaleOther},

	// Oceania
	{Code: "MLB", Name: "Melbourne", CenterLat: -37.8136, CenterLng: 144.9631, MaxRadiusMeters: RadiusMegacity, CountryCode: "au", Locale: LocaleUK},
	{Code: "PRT", Name: "Perth", CenterLat: -31.9505, CenterLng: 115.8605, MaxRadiusMeters: RadiusMetro, CountryCode: "au", Locale: LocaleUK},
	{Code: "SYD", Name: "Sydney", CenterLat: -33.8688, CenterLng: 151.2093, MaxRadiusMeters: RadiusMegacity, CountryCode: "au", Locale: LocaleUK},

	// Off-planet
	{Code: SpaceRegion, Name: "Space (ISS)", Unbounded: true, Locale: LocaleOther},
}

// DefaultTable returns the built-in region table.
func DefaultTable() *Table {
	return NewTable(defaultProfiles)
}
