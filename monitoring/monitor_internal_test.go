package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rdtsim/sim"
)

type fakeEngine struct {
	now    sim.VTimeInSec
	paused bool
}

func (e *fakeEngine) CurrentTime() sim.VTimeInSec { return e.now }

func (e *fakeEngine) Pause() { e.paused = true }

func (e *fakeEngine) Continue() { e.paused = false }

type sampleState struct {
	State string
	Seq   int
}

type sampleComponent struct {
	name string
}

func (c sampleComponent) Name() string { return c.name }

func (c sampleComponent) Snapshot() any {
	return sampleState{State: "WAITING", Seq: 1}
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *fakeEngine
	)

	BeforeEach(func() {
		engine = &fakeEngine{now: 12.5}
		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterComponent(sampleComponent{name: "A"})
		m.RegisterComponent(sampleComponent{name: "B"})
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(engine.paused).To(BeTrue())

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(engine.paused).To(BeFalse())
	})

	It("should report the current time", func() {
		rec := get("/api/now")

		Expect(rec.Body.String()).To(Equal(`{"now":12.5000000000}`))
	})

	It("should list components", func() {
		rec := get("/api/list_components")

		names := []string{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"A", "B"}))
	})

	It("should serialize a component", func() {
		rec := get("/api/component/A")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should answer 404 for unknown components", func() {
		rec := get("/api/component/C")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Accepted messages", 10)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		rec := get("/api/progress")
		bars := []progressBarRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Accepted messages"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].Finished).To(Equal(uint64(1)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		rec = get("/api/progress")
		Expect(rec.Body.String()).To(Equal("[]"))
	})

	It("should not move more than in progress", func() {
		bar := m.CreateProgressBar("x", 1)

		bar.MoveInProgressToFinished(3)

		Expect(bar.snapshot().Finished).To(BeZero())
	})

	DescribeTable("port numbers",
		func(requested, kept int) {
			Expect(NewMonitor().WithPortNumber(requested).portNumber).
				To(Equal(kept))
		},
		Entry("below the allowed range", 999, 0),
		Entry("lowest allowed port", 1000, 1000),
		Entry("usual port", 8080, 8080),
	)

	It("should listen on the lowest allowed port", func() {
		mon := NewMonitor().WithPortNumber(1000)

		Expect(mon.listenAddress()).To(Equal(":1000"))
		Expect(NewMonitor().listenAddress()).To(Equal(":0"))
	})

	It("should report resources", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		rsp := resourceRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve on a random port", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())
		defer func() { Expect(m.StopServer()).To(Succeed()) }()

		rsp, err := http.Get(url + "/api/now")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})
