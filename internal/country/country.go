// Package country normalizes free-form country text to ISO 3166-1 alpha-2
// codes.
//
// Normalize is idempotent: feeding a returned code back in yields the same
// code. Unknown or ambiguous input yields "", never an error.
package country

import "strings"

// synonyms maps common colloquial country names to alpha-2 codes before
// any table lookup.
var synonyms = map[string]string{
	"UK":                       "GB",
	"UNITED KINGDOM":           "GB",
	"GREAT BRITAIN":            "GB",
	"BRITAIN":                  "GB",
	"USA":                      "US",
	"UNITED STATES":            "US",
	"UNITED STATES OF AMERICA": "US",
	"AMERICA":                  "US",
	"HOLLAND":                  "NL",
	"SOUTH KOREA":              "KR",
	"RUSSIA":                   "RU",
	"UAE":                      "AE",
}

// names maps upper-cased ISO short names to alpha-2 codes.
var names = map[string]string{
	"AFGHANISTAN": "AF", "ALBANIA": "AL", "ALGERIA": "DZ", "ANDORRA": "AD",
	"ANGOLA": "AO", "ARGENTINA": "AR", "ARMENIA": "AM", "AUSTRALIA": "AU",
	"AUSTRIA": "AT", "AZERBAIJAN": "AZ", "BAHAMAS": "BS", "BAHRAIN": "BH",
	"BANGLADESH": "BD", "BARBADOS": "BB", "BELARUS": "BY", "BELGIUM": "BE",
	"BELIZE": "BZ", "BENIN": "BJ", "BHUTAN": "BT", "BOLIVIA": "BO",
	"BOSNIA AND HERZEGOVINA": "BA", "BOTSWANA": "BW", "BRAZIL": "BR",
	"BRUNEI": "BN", "BULGARIA": "BG", "BURKINA FASO": "BF", "BURUNDI": "BI",
	"CAMBODIA": "KH", "CAMEROON": "CM", "CANADA": "CA", "CHAD": "TD",
	"CHILE": "CL", "CHINA": "CN", "COLOMBIA": "CO", "COSTA RICA": "CR",
	"CROATIA": "HR", "CUBA": "CU", "CYPRUS": "CY", "CZECHIA": "CZ",
	"CZECH REPUBLIC": "CZ", "DENMARK": "DK", "DJIBOUTI": "DJ",
	"DOMINICAN REPUBLIC": "DO", "ECUADOR": "EC", "EGYPT": "EG",
	"EL SALVADOR": "SV", "ESTONIA": "EE", "ETHIOPIA": "ET", "FIJI": "FJ",
	"FINLAND": "FI", "FRANCE": "FR", "GABON": "GA", "GAMBIA": "GM",
	"GEORGIA": "GE", "GERMANY": "DE", "GHANA": "GH", "GREECE": "GR",
	"GUATEMALA": "GT", "GUINEA": "GN", "GUYANA": "GY", "HAITI": "HT",
	"HONDURAS": "HN", "HONG KONG": "HK", "HUNGARY": "HU", "ICELAND": "IS",
	"INDIA": "IN", "INDONESIA": "ID", "IRAN": "IR", "IRAQ": "IQ",
	"IRELAND": "IE", "ISRAEL": "IL", "ITALY": "IT", "JAMAICA": "JM",
	"JAPAN": "JP", "JORDAN": "JO", "KAZAKHSTAN": "KZ", "KENYA": "KE",
	"KUWAIT": "KW", "KYRGYZSTAN": "KG", "LAOS": "LA", "LATVIA": "LV",
	"LEBANON": "LB", "LESOTHO": "LS", "LIBERIA": "LR", "LIBYA": "LY",
	"LIECHTENSTEIN": "LI", "LITHUANIA": "LT", "LUXEMBOURG": "LU",
	"MACAO": "MO", "MADAGASCAR": "MG", "MALAWI": "MW", "MALAYSIA": "MY",
	"MALDIVES": "MV", "MALI": "ML", "MALTA": "MT", "MAURITANIA": "MR",
	"MAURITIUS": "MU", "MEXICO": "MX", "MOLDOVA": "MD", "MONACO": "MC",
	"MONGOLIA": "MN", "MONTENEGRO": "ME", "MOROCCO": "MA", "MOZAMBIQUE": "MZ",
	"MYANMAR": "MM", "NAMIBIA": "NA", "NEPAL": "NP", "NETHERLANDS": "NL",
	"NEW ZEALAND": "NZ", "NICARAGUA": "NI", "NIGER": "NE", "NIGERIA": "NG",
	"NORTH MACEDONIA": "MK", "NORWAY": "NO", "OMAN": "OM", "PAKISTAN": "PK",
	"PANAMA": "PA", "PAPUA NEW GUINEA": "PG", "PARAGUAY": "PY", "PERU": "PE",
	"PHILIPPINES": "PH", "POLAND": "PL", "PORTUGAL": "PT", "QATAR": "QA",
	"ROMANIA": "RO", "RUSSIAN FEDERATION": "RU", "RWANDA": "RW",
	"SAUDI ARABIA": "SA", "SENEGAL": "SN", "SERBIA": "RS", "SEYCHELLES": "SC",
	"SIERRA LEONE": "SL", "SINGAPORE": "SG", "SLOVAKIA": "SK",
	"SLOVENIA": "SI", "SOMALIA": "SO", "SOUTH AFRICA": "ZA",
	"SOUTH SUDAN": "SS", "SPAIN": "ES", "SRI LANKA": "LK", "SUDAN": "SD",
	"SURINAME": "SR", "SWEDEN": "SE", "SWITZERLAND": "CH", "SYRIA": "SY",
	"TAIWAN": "TW", "TAJIKISTAN": "TJ", "TANZANIA": "TZ", "THAILAND": "TH",
	"TOGO": "TG", "TRINIDAD AND TOBAGO": "TT", "TUNISIA": "TN",
	"TURKEY": "TR", "TURKMENISTAN": "TM", "UGANDA": "UG", "UKRAINE": "UA",
	"UNITED ARAB EMIRATES": "AE", "URUGUAY": "UY", "UZBEKISTAN": "UZ",
	"VENEZUELA": "VE", "VIETNAM": "VN", "VIET NAM": "VN", "YEMEN": "YE",
	"ZAMBIA": "ZM", "ZIMBABWE": "ZW",
}

// codes is the set of valid alpha-2 codes, derived from the names table
// plus codes that only appear as synonyms.
var codes = func() map[string]bool {
	set := make(map[string]bool, len(names))
	for _, code := range names {
		set[code] = true
	}
	for _, code := range synonyms {
		set[code] = true
	}
	return set
}()

// Normalize resolves free-form country text to an alpha-2 code.
//
// Resolution order: synonym table, two-letter code validation, exact name
// match, then unique partial name match. Returns "" when nothing matches
// or a partial match is ambiguous.
func Normalize(text string) string {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	if code, ok := synonyms[text]; ok {
		return code
	}

	if len(text) == 2 {
		if codes[text] {
			return text
		}
		return ""
	}

	if code, ok := names[text]; ok {
		return code
	}

	// Unique partial match only; ambiguity means no answer.
	var match string
	for name, code := range names {
		if strings.Contains(name, text) {
			if match != "" && match != code {
				return ""
			}
			match = code
		}
	}
	return match
}

// Valid reports whether code is a known alpha-2 code.
func Valid(code string) bool {
	return codes[strings.ToUpper(code)]
}
