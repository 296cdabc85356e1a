package simulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rdtsim/tracing"
)

var _ = Describe("Config", func() {
	It("should accept the default configuration", func() {
		Expect(DefaultConfig().Validate()).To(Succeed())
	})

	It("should drain in-flight packets by default", func() {
		Expect(DefaultConfig().DrainInFlight).To(BeTrue())
		Expect(DefaultConfig().RetransmitTimeout).To(BeZero())
	})

	DescribeTable("rejecting out-of-range values",
		func(modify func(c *Config)) {
			c := DefaultConfig()
			modify(&c)

			Expect(c.Validate()).To(MatchError(ErrInvalidConfig))
		},
		Entry("zero messages", func(c *Config) { c.MaxMessages = 0 }),
		Entry("negative loss", func(c *Config) { c.LossProbability = -0.1 }),
		Entry("loss above one", func(c *Config) { c.LossProbability = 1.5 }),
		Entry("corruption above one",
			func(c *Config) { c.CorruptionProbability = 2 }),
		Entry("zero interarrival", func(c *Config) { c.MeanInterarrival = 0 }),
		Entry("trace level too high",
			func(c *Config) { c.TraceLevel = tracing.LevelPacket + 1 }),
		Entry("negative deadline", func(c *Config) { c.MaxSimTime = -1 }),
		Entry("negative timeout",
			func(c *Config) { c.RetransmitTimeout = -5 }),
	)
})
