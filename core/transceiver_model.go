package core

import (
	"math"

	"github.com/signalsfoundry/linkbudget/rferr"
	"github.com/signalsfoundry/linkbudget/units"
)

// Transmitter describes the RF characteristics of the sending end of a link.
type Transmitter struct {
	OutputPowerDBm float64 `yaml:"output_power_dbm" toml:"output_power_dbm"`
	GainDBi        float64 `yaml:"gain_dbi" toml:"gain_dbi"`
	BandwidthHz    float64 `yaml:"bandwidth_hz" toml:"bandwidth_hz"`
}

// NewTransmitter returns a validated Transmitter.
func NewTransmitter(outputPowerDBm, gainDBi, bandwidthHz float64) (Transmitter, error) {
	tx := Transmitter{OutputPowerDBm: outputPowerDBm, GainDBi: gainDBi, BandwidthHz: bandwidthHz}
	return tx, tx.Validate()
}

// Validate checks that the bandwidth is positive.
func (t Transmitter) Validate() error {
	if !(t.BandwidthHz > 0) {
		return rferr.Domain("transmitter bandwidth must be > 0, got %v", t.BandwidthHz)
	}
	return nil
}

// EIRPDBm is output power plus antenna gain.
func (t Transmitter) EIRPDBm() float64 { return t.OutputPowerDBm + t.GainDBi }

func (t Transmitter) EIRPDBW() float64 { return units.DBmToDBW(t.EIRPDBm()) }

// Receiver describes the RF characteristics of the receiving end of a link.
//
// TemperatureK is the noise temperature used for the kTB floor and G/T;
// NoiseFigureDB is added on top of that floor. A receiver specified only by
// noise figure sits at the 290 K reference; one specified only by system
// noise temperature has a 0 dB noise figure.
type Receiver struct {
	GainDBi       float64 `yaml:"gain_dbi" toml:"gain_dbi"`
	TemperatureK  float64 `yaml:"temperature_k" toml:"temperature_k"`
	NoiseFigureDB float64 `yaml:"noise_figure_db" toml:"noise_figure_db"`
	BandwidthHz   float64 `yaml:"bandwidth_hz" toml:"bandwidth_hz"`
}

// NewReceiver returns a validated Receiver with both a noise temperature
// and a noise figure.
func NewReceiver(gainDBi, temperatureK, noiseFigureDB, bandwidthHz float64) (Receiver, error) {
	rx := Receiver{
		GainDBi:       gainDBi,
		TemperatureK:  temperatureK,
		NoiseFigureDB: noiseFigureDB,
		BandwidthHz:   bandwidthHz,
	}
	return rx, rx.Validate()
}

// ReceiverFromNoiseFigure places the receiver at the reference temperature.
func ReceiverFromNoiseFigure(gainDBi, noiseFigureDB, bandwidthHz float64) (Receiver, error) {
	return NewReceiver(gainDBi, units.ReferenceTemperatureK, noiseFigureDB, bandwidthHz)
}

// ReceiverFromNoiseTemperature describes the receiver by its system noise
// temperature alone.
func ReceiverFromNoiseTemperature(gainDBi, systemTemperatureK, bandwidthHz float64) (Receiver, error) {
	return NewReceiver(gainDBi, systemTemperatureK, 0, bandwidthHz)
}

// Validate checks the temperature and bandwidth preconditions.
func (r Receiver) Validate() error {
	if !(r.TemperatureK > 0) {
		return rferr.Domain("receiver noise temperature must be > 0 K, got %v", r.TemperatureK)
	}
	if !(r.BandwidthHz > 0) {
		return rferr.Domain("receiver bandwidth must be > 0, got %v", r.BandwidthHz)
	}
	if math.IsNaN(r.NoiseFigureDB) || math.IsInf(r.NoiseFigureDB, 0) {
		return rferr.Domain("receiver noise figure must be finite, got %v", r.NoiseFigureDB)
	}
	return nil
}

// NoiseFloorDBm is the thermal noise k·T·B in dBm.
func (r Receiver) NoiseFloorDBm() float64 {
	return units.NoisePowerDBm(r.TemperatureK, r.BandwidthHz)
}

// NoisePowerDBm is the thermal floor raised by the noise figure.
func (r Receiver) NoisePowerDBm() float64 { return r.NoiseFloorDBm() + r.NoiseFigureDB }

func (r Receiver) NoisePowerDBW() float64 { return units.DBmToDBW(r.NoisePowerDBm()) }

// EquivalentNoiseTemperatureK is T0·(10^(NF/10) − 1).
func (r Receiver) EquivalentNoiseTemperatureK() float64 {
	return units.NoiseTemperatureFromFigure(r.NoiseFigureDB)
}

// SystemNoiseTemperatureK is the temperature whose k·T·B equals the
// receiver noise power.
func (r Receiver) SystemNoiseTemperatureK() float64 {
	return r.TemperatureK * units.NoiseFactorFromFigure(r.NoiseFigureDB)
}

// GOverTDB is the figure of merit gain − 10·log10(T) in dB/K, taken
// against the configured temperature alone.
func (r Receiver) GOverTDB() float64 {
	return r.GainDBi - units.LinearToDB(r.TemperatureK)
}

// GOverTSystemDB is gain − 10·log10(Tsys) in dB/K, where Tsys includes
// the noise figure. It is the G/T consistent with NoisePowerDBm.
func (r Receiver) GOverTSystemDB() float64 {
	return r.GainDBi - units.LinearToDB(r.SystemNoiseTemperatureK())
}

// SNRDB is the SNR of a signal arriving at inputPowerDBm.
func (r Receiver) SNRDB(inputPowerDBm float64) float64 {
	return inputPowerDBm - r.NoisePowerDBm()
}
