package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/sarchlab/rdtsim/simulation"
	"github.com/sarchlab/rdtsim/tracing"
)

// Environment variables that override the default configuration. They can
// also be placed in a .env file in the working directory.
const (
	EnvMaxMessages       = "RDTSIM_MESSAGES"
	EnvLoss              = "RDTSIM_LOSS"
	EnvCorruption        = "RDTSIM_CORRUPT"
	EnvMeanInterarrival  = "RDTSIM_LAMBDA"
	EnvSeed              = "RDTSIM_SEED"
	EnvTraceLevel        = "RDTSIM_TRACE"
	EnvMaxSimTime        = "RDTSIM_MAX_TIME"
	EnvDrainInFlight     = "RDTSIM_DRAIN"
	EnvRetransmitTimeout = "RDTSIM_TIMEOUT"
)

type lookupFunc func(key string) (string, bool)

// configFromEnv starts from the default configuration and applies every
// variable that is set. All malformed variables are reported together.
func configFromEnv(lookup lookupFunc) (simulation.Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	c := simulation.DefaultConfig()
	p := envParser{lookup: lookup}

	p.intVar(EnvMaxMessages, &c.MaxMessages)
	p.floatVar(EnvLoss, &c.LossProbability)
	p.floatVar(EnvCorruption, &c.CorruptionProbability)
	p.floatVar(EnvMeanInterarrival, &c.MeanInterarrival)
	p.uintVar(EnvSeed, &c.Seed)
	p.floatVar(EnvMaxSimTime, &c.MaxSimTime)
	p.boolVar(EnvDrainInFlight, &c.DrainInFlight)
	p.floatVar(EnvRetransmitTimeout, &c.RetransmitTimeout)

	level := int(c.TraceLevel)
	p.intVar(EnvTraceLevel, &level)
	c.TraceLevel = tracing.Level(level)

	return c, p.errs.ErrorOrNil()
}

type envParser struct {
	lookup lookupFunc
	errs   *multierror.Error
}

func (p *envParser) fail(key, value string, err error) {
	p.errs = multierror.Append(p.errs,
		fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *envParser) intVar(key string, dst *int) {
	value, ok := p.lookup(key)
	if !ok {
		return
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return
	}

	*dst = v
}

func (p *envParser) uintVar(key string, dst *uint64) {
	value, ok := p.lookup(key)
	if !ok {
		return
	}

	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		p.fail(key, value, err)
		return
	}

	*dst = v
}

func (p *envParser) floatVar(key string, dst *float64) {
	value, ok := p.lookup(key)
	if !ok {
		return
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
		return
	}

	*dst = v
}

func (p *envParser) boolVar(key string, dst *bool) {
	value, ok := p.lookup(key)
	if !ok {
		return
	}

	v, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
		return
	}

	*dst = v
}
