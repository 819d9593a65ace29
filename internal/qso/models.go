// Package qso generates simulated amateur-radio contacts for
// transcription practice: realistic callsigns, operator data, and
// CW exchange scripts at three verbosity levels.
package qso

// Verbosity controls how much optional detail an exchange includes.
type Verbosity string

const (
	VerbosityMinimal Verbosity = "minimal"
	VerbosityMedium  Verbosity = "medium"
	VerbosityChatty  Verbosity = "chatty"
)

// Valid reports whether v is a known verbosity level.
func (v Verbosity) Valid() bool {
	switch v {
	case VerbosityMinimal, VerbosityMedium, VerbosityChatty:
		return true
	}
	return false
}

// StationRecord is one operator's data within an exchange. All fields
// are normalized uppercase strings. Rig, antenna, and power may be empty
// when the exchange verbosity omits equipment.
type StationRecord struct {
	Callsign    string `json:"callsign"`
	Name        string `json:"name"`
	QTH         string `json:"qth"`
	RSTSent     string `json:"rst_sent"`
	RSTReceived string `json:"rst_received"`
	Rig         string `json:"rig,omitempty"`
	Antenna     string `json:"antenna,omitempty"`
	Power       string `json:"power,omitempty"`
}

// Exchange is one unit of practice: two stations, the literal playback
// text broken into tokens, and the ground-truth element map used for
// scoring. Elements absent from the map are not graded.
type Exchange struct {
	Calling     StationRecord     `json:"calling"`
	Responding  StationRecord     `json:"responding"`
	Verbosity   Verbosity         `json:"verbosity"`
	Text        string            `json:"text"`
	Tokens      []string          `json:"tokens"`
	GroundTruth map[string]string `json:"ground_truth"`
}

// Ground-truth element keys. The numeric suffix identifies the station:
// 1 is the calling station, 2 the responding one.
const (
	KeyCallsign1 = "callsign1"
	KeyCallsign2 = "callsign2"
	KeyName1     = "name1"
	KeyName2     = "name2"
	KeyQTH1      = "qth1"
	KeyQTH2      = "qth2"
	KeyRST1      = "rst1"
	KeyRST2      = "rst2"
	KeyRig1      = "rig1"
	KeyRig2      = "rig2"
	KeyAntenna1  = "antenna1"
	KeyAntenna2  = "antenna2"
	KeyPower1    = "power1"
	KeyPower2    = "power2"
)
