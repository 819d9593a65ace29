package qso

import (
	"fmt"
	"strings"
)

// Exchange script templates. Placeholders such as {CALL1} are replaced
// with generated station data; "=" is the BT prosign separating
// transmissions, K and SK are turnover and sign-off prosigns.

var minimalTemplates = []string{
	"CQ CQ CQ DE {CALL1} {CALL1} K = " +
		"{CALL1} DE {CALL2} {CALL2} K = " +
		"{CALL2} DE {CALL1} = TNX FER CALL UR RST {RST1} {RST1} = NAME HR IS {NAME1} {NAME1} = HW CPY K = " +
		"{CALL1} DE {CALL2} = R R FB {NAME1} = UR RST {RST2} {RST2} = NAME HR IS {NAME2} {NAME2} = 73 ES TNX FER QSO K = " +
		"{CALL2} DE {CALL1} = R R TNX {NAME2} = 73 ES CUAGN = {CALL1} SK = " +
		"{CALL1} DE {CALL2} SK",

	"CQ CQ DE {CALL1} K = " +
		"{CALL1} DE {CALL2} K = " +
		"{CALL2} DE {CALL1} = UR RST {RST1} = NAME {NAME1} = QTH {QTH1} = HW K = " +
		"{CALL1} DE {CALL2} = R TNX = UR RST {RST2} = NAME {NAME2} = QTH {QTH2} = 73 K = " +
		"{CALL2} DE {CALL1} = 73 GL {NAME2} SK = " +
		"{CALL1} DE {CALL2} SK",

	"CQ DE {CALL1} K = " +
		"{CALL1} DE {CALL2} {CALL2} K = " +
		"{CALL2} DE {CALL1} = GM OM UR {RST1} = NAME {NAME1} {NAME1} = QTH {QTH1} = K = " +
		"{CALL1} DE {CALL2} = TNX {NAME1} = UR {RST2} = NAME {NAME2} = QTH {QTH2} = 73 K = " +
		"{CALL2} DE {CALL1} = 73 {NAME2} SK = " +
		"{CALL1} DE {CALL2} SK",
}

var mediumTemplates = []string{
	"CQ CQ CQ DE {CALL1} {CALL1} K = " +
		"{CALL1} DE {CALL2} {CALL2} K = " +
		"{CALL2} DE {CALL1} = GM OM TNX FER CALL = UR RST {RST1} {RST1} = NAME HR IS {NAME1} {NAME1} = QTH {QTH1} = RIG HR {RIG1} = HW CPY K = " +
		"{CALL1} DE {CALL2} = R R FB {NAME1} = UR RST {RST2} {RST2} = NAME HR {NAME2} {NAME2} = QTH {QTH2} = RIG {RIG2} = ANT {ANT2} = 73 ES TNX FER FB QSO K = " +
		"{CALL2} DE {CALL1} = R TNX {NAME2} = FB RIG UR RUNNING = HPE CUAGN SN = 73 ES GL = {CALL1} SK = " +
		"{CALL1} DE {CALL2} = 73 {NAME1} SK",

	"CQ DE {CALL1} {CALL1} K = " +
		"{CALL1} DE {CALL2} K = " +
		"{CALL2} DE {CALL1} = GE OM = UR RST {RST1} = NAME {NAME1} = QTH {QTH1} = RIG {RIG1} = PWR {PWR1} = ANT {ANT1} = HW K = " +
		"{CALL1} DE {CALL2} = R R TNX {NAME1} = UR RST {RST2} = NAME {NAME2} = QTH {QTH2} = RIG {RIG2} PWR {PWR2} = FB SIGS HR = 73 K = " +
		"{CALL2} DE {CALL1} = TNX FER FB QSO {NAME2} = 73 ES GL SK = " +
		"{CALL1} DE {CALL2} SK",

	"CQ CQ DE {CALL1} K = " +
		"{CALL1} DE {CALL2} {CALL2} K = " +
		"{CALL2} DE {CALL1} = GA OM TNX = UR RST {RST1} {RST1} = NAME {NAME1} = QTH {QTH1} = RUNNING {RIG1} TO {ANT1} = HW CPY K = " +
		"{CALL1} DE {CALL2} = FB {NAME1} = CPY SOLID = UR RST {RST2} = NAME {NAME2} = QTH {QTH2} = RIG {RIG2} {PWR2} = VY FB SIGS FM U = TNX FER QSO ES 73 K = " +
		"{CALL2} DE {CALL1} = R TNX {NAME2} = 73 ES HPE CUAGN SN = {CALL1} SK = " +
		"{CALL1} DE {CALL2} SK",
}

var chattyTemplates = []string{
	"CQ CQ CQ DE {CALL1} {CALL1} {CALL1} K = " +
		"{CALL1} DE {CALL2} {CALL2} K = " +
		"{CALL2} DE {CALL1} = GM OM TNX FER CALL = UR RST {RST1} {RST1} SOLID CPY = NAME HR IS {NAME1} {NAME1} = QTH {QTH1} = WX HR {WX1} TEMP ABT {TEMP1} = RIG HR {RIG1} {PWR1} TO {ANT1} = HW CPY K = " +
		"{CALL1} DE {CALL2} = R R FB {NAME1} VY NICE COPY = UR RST {RST2} {RST2} = NAME HR {NAME2} {NAME2} = QTH {QTH2} = WX HR {WX2} {TEMP2} = RUNNING {RIG2} {PWR2} TO {ANT2} = FB SIGS FM U OM = 73 ES TNX FER FB QSO K = " +
		"{CALL2} DE {CALL1} = R TNX {NAME2} = {RIG1} IS FB RIG VY STABLE = HPE CUAGN SN = 73 ES GL {NAME2} = {CALL1} SK = " +
		"{CALL1} DE {CALL2} = 73 {NAME1} CUAGN SK",

	"CQ CQ DE {CALL1} {CALL1} K = " +
		"{CALL1} DE {CALL2} K = " +
		"{CALL2} DE {CALL1} = GE OM VY NICE TO HEAR U = UR RST {RST1} {RST1} FB SIGS = NAME HR IS {NAME1} {NAME1} = QTH {QTH1} = RIG {RIG1} PWR {PWR1} = ANT {ANT1} ABT 20M UP = WX {WX1} TEMP {TEMP1} = HW CPY OM K = " +
		"{CALL1} DE {CALL2} = R R FB {NAME1} CPY SOLID = UR RST {RST2} {RST2} VY FB = NAME {NAME2} {NAME2} = QTH {QTH2} = RUNNING {RIG2} AT {PWR2} = ANT {ANT2} = WX HR {WX2} ES {TEMP2} = 73 ES TNX FER FB CHAT OM K = " +
		"{CALL2} DE {CALL1} = TNX {NAME2} = UR ANT {ANT2} WRKING VY WELL I HEAR = HPE WRK U AGN SN = 73 ES GL = {CALL1} SK = " +
		"{CALL1} DE {CALL2} = 73 {NAME1} SK",

	"CQ CQ CQ DE {CALL1} K = " +
		"{CALL1} DE {CALL2} {CALL2} K = " +
		"{CALL2} DE {CALL1} = GA OM VY FB TO HEAR U = UR RST {RST1} {RST1} SOLID = NAME HR {NAME1} {NAME1} = QTH {QTH1} = WX HR IS {WX1} ES TEMP {TEMP1} VY NICE = RIG HR IS {RIG1} RUNNING {PWR1} = ANT IS {ANT1} = HW CPY OM K = " +
		"{CALL1} DE {CALL2} = R R {NAME1} CPY 100 PERCENT = UR RST {RST2} {RST2} = NAME {NAME2} {NAME2} = QTH {QTH2} = WX HR {WX2} TEMP {TEMP2} = RIG {RIG2} PWR {PWR2} TO {ANT2} = VY FB SIGS FM U OM = 73 ES TNX FER VY FB QSO K = " +
		"{CALL2} DE {CALL1} = R R {NAME2} TNX FER INFO = HPE WRK U AGN SN ON THIS BAND = 73 ES GL {NAME2} = {CALL1} SK = " +
		"{CALL1} DE {CALL2} = 73 ES CUAGN {NAME1} SK",
}

func templatesFor(v Verbosity) ([]string, error) {
	switch v {
	case VerbosityMinimal:
		return minimalTemplates, nil
	case VerbosityMedium:
		return mediumTemplates, nil
	case VerbosityChatty:
		return chattyTemplates, nil
	default:
		return nil, fmt.Errorf("invalid verbosity: %q", v)
	}
}

// substitute replaces every {VAR} placeholder and fails if any
// placeholder remains unresolved.
func substitute(template string, vars map[string]string) (string, error) {
	result := template
	for name, value := range vars {
		result = strings.ReplaceAll(result, "{"+name+"}", value)
	}
	if i := strings.IndexByte(result, '{'); i >= 0 {
		end := strings.IndexByte(result[i:], '}')
		if end < 0 {
			end = len(result) - i - 1
		}
		return "", fmt.Errorf("unresolved template placeholder %s", result[i:i+end+1])
	}
	return result, nil
}
