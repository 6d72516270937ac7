package spacetrack

// GPRecord is the GP class row. Space-Track serializes every value as a string
// and adds derived orbit geometry alongside the mean elements.
type GPRecord struct {
	NoradCatID      string `json:"NORAD_CAT_ID"`
	ObjectName      string `json:"OBJECT_NAME"`
	Epoch           string `json:"EPOCH"`
	MeanMotion      string `json:"MEAN_MOTION"`
	Eccentricity    string `json:"ECCENTRICITY"`
	Inclination     string `json:"INCLINATION"`
	RAOfAscNode     string `json:"RA_OF_ASC_NODE"`
	ArgOfPericenter string `json:"ARG_OF_PERICENTER"`
	MeanAnomaly     string `json:"MEAN_ANOMALY"`
	BStar           string `json:"BSTAR"`
	Apoapsis        string `json:"APOAPSIS"`
	Periapsis       string `json:"PERIAPSIS"`
	Period          string `json:"PERIOD"`
	SemiMajorAxis   string `json:"SEMIMAJOR_AXIS"`
	DecayDate       string `json:"DECAY_DATE"`
	TLELine0        string `json:"TLE_LINE0"`
	TLELine1        string `json:"TLE_LINE1"`
	TLELine2        string `json:"TLE_LINE2"`
}
