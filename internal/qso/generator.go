package qso

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GenerateOptions selects how an exchange is produced.
type GenerateOptions struct {
	Verbosity Verbosity
	Region1   string // callsign region for the calling station; "" = any
	Region2   string // callsign region for the responding station; "" = any
}

// Generator produces randomized practice exchanges. It satisfies the
// session's exchange-producer role: output is already validated and the
// session core treats it as ground truth.
type Generator struct {
	rnd       *rand.Rand
	callsigns *CallsignGenerator
}

// NewGenerator returns a Generator seeded with the current time.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator returns a Generator with a fixed seed, for
// reproducible sessions.
func NewSeededGenerator(seed int64) *Generator {
	rnd := rand.New(rand.NewSource(seed))
	return &Generator{
		rnd:       rnd,
		callsigns: NewCallsignGenerator(rnd),
	}
}

// Exchange generates one practice exchange.
func (g *Generator) Exchange(opts GenerateOptions) (Exchange, error) {
	if opts.Verbosity == "" {
		opts.Verbosity = VerbosityMedium
	}
	if !opts.Verbosity.Valid() {
		return Exchange{}, fmt.Errorf("invalid verbosity: %q", opts.Verbosity)
	}

	call1, err := g.callsigns.Generate(opts.Region1)
	if err != nil {
		return Exchange{}, err
	}
	call2, err := g.callsigns.Generate(opts.Region2)
	if err != nil {
		return Exchange{}, err
	}

	vars := map[string]string{
		"CALL1": call1,
		"CALL2": call2,
		"NAME1": g.pick(commonNames),
		"NAME2": g.pick(commonNames),
		"QTH1":  g.pickCity(opts.Region1),
		"QTH2":  g.pickCity(opts.Region2),
		"RST1":  g.pick(rstReports),
		"RST2":  g.pick(rstReports),
		"RIG1":  g.pick(transceivers),
		"RIG2":  g.pick(transceivers),
		"ANT1":  g.pick(antennas),
		"ANT2":  g.pick(antennas),
		"PWR1":  g.pick(powerLevels),
		"PWR2":  g.pick(powerLevels),
		"WX1":   g.pick(weatherConditions),
		"WX2":   g.pick(weatherConditions),
		"TEMP1": g.pick(temperatures),
		"TEMP2": g.pick(temperatures),
	}

	templates, err := templatesFor(opts.Verbosity)
	if err != nil {
		return Exchange{}, err
	}
	template := templates[g.rnd.Intn(len(templates))]

	text, err := substitute(template, vars)
	if err != nil {
		return Exchange{}, err
	}

	calling := StationRecord{
		Callsign:    call1,
		Name:        vars["NAME1"],
		QTH:         vars["QTH1"],
		RSTSent:     vars["RST1"],
		RSTReceived: vars["RST2"],
	}
	responding := StationRecord{
		Callsign:    call2,
		Name:        vars["NAME2"],
		QTH:         vars["QTH2"],
		RSTSent:     vars["RST2"],
		RSTReceived: vars["RST1"],
	}

	// Ground truth always grades callsigns, names, and RST. QTH and
	// equipment are graded only when the chosen template transmits them.
	truth := map[string]string{
		KeyCallsign1: call1,
		KeyCallsign2: call2,
		KeyName1:     vars["NAME1"],
		KeyName2:     vars["NAME2"],
		KeyRST1:      vars["RST1"],
		KeyRST2:      vars["RST2"],
	}
	optional := []struct {
		placeholder string
		key         string
		set         func(*StationRecord, string)
	}{
		{"{QTH1}", KeyQTH1, nil},
		{"{QTH2}", KeyQTH2, nil},
		{"{RIG1}", KeyRig1, func(r *StationRecord, v string) { r.Rig = v }},
		{"{RIG2}", KeyRig2, func(r *StationRecord, v string) { r.Rig = v }},
		{"{ANT1}", KeyAntenna1, func(r *StationRecord, v string) { r.Antenna = v }},
		{"{ANT2}", KeyAntenna2, func(r *StationRecord, v string) { r.Antenna = v }},
		{"{PWR1}", KeyPower1, func(r *StationRecord, v string) { r.Power = v }},
		{"{PWR2}", KeyPower2, func(r *StationRecord, v string) { r.Power = v }},
	}
	for _, opt := range optional {
		if !strings.Contains(template, opt.placeholder) {
			continue
		}
		value := vars[strings.Trim(opt.placeholder, "{}")]
		truth[opt.key] = value
		if opt.set != nil {
			station := &calling
			if strings.HasSuffix(opt.key, "2") {
				station = &responding
			}
			opt.set(station, value)
		}
	}

	return Exchange{
		Calling:     calling,
		Responding:  responding,
		Verbosity:   opts.Verbosity,
		Text:        text,
		Tokens:      strings.Fields(text),
		GroundTruth: truth,
	}, nil
}

// Exchanges generates an ordered list of count exchanges.
func (g *Generator) Exchanges(count int, opts GenerateOptions) ([]Exchange, error) {
	if count < 1 {
		return nil, fmt.Errorf("exchange count must be at least 1, got %d", count)
	}
	exchanges := make([]Exchange, 0, count)
	for i := 0; i < count; i++ {
		exchange, err := g.Exchange(opts)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, exchange)
	}
	return exchanges, nil
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rnd.Intn(len(pool))]
}

func (g *Generator) pickCity(region string) string {
	if cities, ok := citiesByRegion[region]; ok {
		return cities[g.rnd.Intn(len(cities))]
	}
	return allCities[g.rnd.Intn(len(allCities))]
}
