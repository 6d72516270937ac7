package celestrak

// GPElement is one OMM record as CelesTrak serves it. Numeric fields are
// pointers so a missing key is distinguishable from a real zero.
type GPElement struct {
	ObjectName      string   `json:"OBJECT_NAME"`
	ObjectID        string   `json:"OBJECT_ID"`
	Epoch           string   `json:"EPOCH"`
	MeanMotion      *float64 `json:"MEAN_MOTION"`
	Eccentricity    *float64 `json:"ECCENTRICITY"`
	Inclination     *float64 `json:"INCLINATION"`
	RAOfAscNode     *float64 `json:"RA_OF_ASC_NODE"`
	ArgOfPericenter *float64 `json:"ARG_OF_PERICENTER"`
	MeanAnomaly     *float64 `json:"MEAN_ANOMALY"`
	EphemerisType   *int     `json:"EPHEMERIS_TYPE"`
	Classification  string   `json:"CLASSIFICATION_TYPE"`
	NoradCatID      *int     `json:"NORAD_CAT_ID"`
	ElementSetNo    *int     `json:"ELEMENT_SET_NO"`
	RevAtEpoch      *int     `json:"REV_AT_EPOCH"`
	BStar           *float64 `json:"BSTAR"`
	MeanMotionDot   *float64 `json:"MEAN_MOTION_DOT"`
	MeanMotionDDot  *float64 `json:"MEAN_MOTION_DDOT"`
}
