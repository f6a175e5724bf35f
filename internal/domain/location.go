package domain

import "strings"

// Districts maps Tamil Nadu district codes to display names.
var Districts = map[string]string{
	"ariyalur":        "Ariyalur",
	"chengalpattu":    "Chengalpattu",
	"chennai":         "Chennai",
	"coimbatore":      "Coimbatore",
	"cuddalore":       "Cuddalore",
	"dharmapuri":      "Dharmapuri",
	"dindigul":        "Dindigul",
	"erode":           "Erode",
	"kallakurichi":    "Kallakurichi",
	"kanchipuram":     "Kanchipuram",
	"kanyakumari":     "Kanyakumari",
	"karur":           "Karur",
	"krishnagiri":     "Krishnagiri",
	"madurai":         "Madurai",
	"mayiladuthurai":  "Mayiladuthurai",
	"nagapattinam":    "Nagapattinam",
	"namakkal":        "Namakkal",
	"nilgiris":        "Nilgiris",
	"perambalur":      "Perambalur",
	"pudukkottai":     "Pudukkottai",
	"ramanathapuram":  "Ramanathapuram",
	"ranipet":         "Ranipet",
	"salem":           "Salem",
	"sivaganga":       "Sivaganga",
	"tenkasi":         "Tenkasi",
	"thanjavur":       "Thanjavur",
	"theni":           "Theni",
	"thoothukudi":     "Thoothukudi",
	"tiruchirappalli": "Tiruchirappalli",
	"tirunelveli":     "Tirunelveli",
	"tirupathur":      "Tirupathur",
	"tiruppur":        "Tiruppur",
	"tiruvallur":      "Tiruvallur",
	"tiruvannamalai":  "Tiruvannamalai",
	"tiruvarur":       "Tiruvarur",
	"vellore":         "Vellore",
	"viluppuram":      "Viluppuram",
	"virudhunagar":    "Virudhunagar",
}

// ResolveDistrict turns a district code into its display name. Values that
// are not known codes are returned trimmed but otherwise unchanged.
func ResolveDistrict(v string) string {
	v = strings.TrimSpace(v)
	if name, ok := Districts[strings.ToLower(v)]; ok {
		return name
	}
	return v
}

// Categories offered in the catalog.
var Categories = []string{
	"food",
	"fashion",
	"electronics",
	"grocery",
	"beauty",
	"health",
	"home",
	"travel",
	"education",
	"services",
}
