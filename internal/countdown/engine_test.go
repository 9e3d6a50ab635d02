package countdown_test

import (
	"bytes"
	"io"
	"math/rand"
	"testing/quick"
	"time"

	"countdown_tui/internal/countdown"
	"countdown_tui/internal/preset"
	"countdown_tui/internal/timer"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func quietOptions() countdown.Options {
	return countdown.DefaultOptions().WithLogOutput(io.Discard)
}

func allLabels() []string {
	c := preset.DefaultCatalog()
	labels := append([]string{}, c.Hours...)
	labels = append(labels, c.Minutes...)
	return append(labels, c.Seconds...)
}

var _ = Describe("Engine", func() {
	var ticker *timer.Manual
	var engine *countdown.Engine
	var finished []countdown.State

	BeforeEach(func() {
		finished = nil
		ticker = timer.NewManual()
		engine = countdown.NewWithTicker(quietOptions().WithOnFinished(func(s countdown.State) {
			finished = append(finished, s)
		}), ticker)
	})

	AfterEach(func() {
		engine.Close()
	})

	Context("when created", func() {
		It("should be idle with every field empty", func() {
			Expect(engine.State()).To(Equal(countdown.State{Status: countdown.StatusIdle}))
			Expect(engine.State().Progress()).To(BeZero())
		})
	})

	Context("when selecting a duration", func() {
		It("should record the label and stay idle", func() {
			engine.SelectLabel("15 min")
			s := engine.State()
			Expect(s.Status).To(Equal(countdown.StatusIdle))
			Expect(s.SelectedLabel).To(Equal("15 min"))
			Expect(s.TotalSeconds).To(BeZero())
			Expect(s.RemainingSeconds).To(BeZero())
		})

		It("should reset a running countdown", func() {
			engine.SelectLabel("10 sec")
			engine.Start()
			ticker.Advance(2)

			engine.Select(preset.New(5, preset.Minute))
			Expect(engine.State()).To(Equal(countdown.State{
				Status:        countdown.StatusIdle,
				SelectedLabel: "5 min",
			}))
			Expect(ticker.Running()).To(BeFalse())
		})

		It("should reset a paused or finished countdown", func() {
			engine.SelectLabel("10 sec")
			engine.Start()
			engine.Pause()
			engine.SelectLabel("20 sec")
			Expect(engine.State()).To(Equal(countdown.State{Status: countdown.StatusIdle, SelectedLabel: "20 sec"}))

			engine.Start()
			ticker.Advance(20)
			Expect(engine.State().Status).To(Equal(countdown.StatusFinished))
			engine.SelectLabel("1 min")
			Expect(engine.State()).To(Equal(countdown.State{Status: countdown.StatusIdle, SelectedLabel: "1 min"}))
		})
	})

	Context("when starting", func() {
		It("should do nothing without a selection", func() {
			engine.Start()
			Expect(engine.State().Status).To(Equal(countdown.StatusIdle))
			Expect(ticker.Running()).To(BeFalse())
		})

		It("should resolve every catalog preset into its total seconds", func() {
			for _, label := range allLabels() {
				engine.SelectLabel(label)
				engine.Start()
				want, _, err := preset.FromLabel(label).Seconds()
				Expect(err).ToNot(HaveOccurred())

				s := engine.State()
				Expect(s.Status).To(Equal(countdown.StatusRunning), label)
				Expect(s.TotalSeconds).To(Equal(want), label)
				Expect(s.RemainingSeconds).To(Equal(want), label)
				Expect(s.Progress()).To(Equal(1.0))
			}
		})

		It("should show hours only for selections of at least one hour", func() {
			engine.SelectLabel("1.0 hour")
			engine.Start()
			Expect(engine.State().TotalSeconds).To(Equal(3600))
			Expect(engine.State().HoursDisplay).To(Equal("1"))

			engine.SelectLabel("0.6 hour")
			engine.Start()
			Expect(engine.State().TotalSeconds).To(Equal(2160))
			Expect(engine.State().HoursDisplay).To(BeEmpty())
		})

		It("should be a no-op while already running", func() {
			engine.SelectLabel("30 sec")
			engine.Start()
			ticker.Advance(4)
			before := engine.State()
			engine.Start()
			Expect(engine.State()).To(Equal(before))
			Expect(engine.State().RemainingSeconds).To(Equal(26))
		})

		It("should log and ignore a malformed selection", func() {
			buf := new(bytes.Buffer)
			engine = countdown.NewWithTicker(countdown.DefaultOptions().WithLogOutput(buf), ticker)
			engine.SelectLabel("lots min")
			engine.Start()

			Expect(engine.State()).To(Equal(countdown.State{Status: countdown.StatusIdle, SelectedLabel: "lots min"}))
			Expect(ticker.Running()).To(BeFalse())
			Expect(buf.String()).To(ContainSubstring("malformed selection"))
			Expect(buf.String()).To(ContainSubstring("lots min"))
		})

		It("should restart from the full duration once finished", func() {
			engine.SelectLabel("10 sec")
			engine.Start()
			ticker.Advance(10)
			engine.Start()

			s := engine.State()
			Expect(s.Status).To(Equal(countdown.StatusRunning))
			Expect(s.RemainingSeconds).To(Equal(10))
			Expect(s.MinutesDisplay).To(BeEmpty())
			Expect(s.SecondsDisplay).To(BeEmpty())
		})
	})

	Context("when ticking", func() {
		It("should count ten seconds down and finish exactly once", func() {
			events := engine.Subscribe(64)
			engine.SelectLabel("10 sec")
			engine.Start()
			s := engine.State()
			Expect(s.TotalSeconds).To(Equal(10))
			Expect(s.RemainingSeconds).To(Equal(10))

			ticker.Advance(3)
			s = engine.State()
			Expect(s.RemainingSeconds).To(Equal(7))
			Expect(s.SecondsDisplay).To(Equal("07"))
			Expect(s.MinutesDisplay).To(Equal("0"))

			Expect(ticker.Advance(20)).To(Equal(7))
			s = engine.State()
			Expect(s.Status).To(Equal(countdown.StatusFinished))
			Expect(s.RemainingSeconds).To(BeZero())
			Expect(s.SecondsDisplay).To(Equal("00"))
			Expect(s.Progress()).To(BeZero())
			Expect(finished).To(HaveLen(1))
			Expect(finished[0]).To(Equal(s))

			engine.Close()
			count := 0
			for event := range events {
				if event.Type == countdown.EventFinished {
					count++
				}
			}
			Expect(count).To(Equal(1))
		})

		It("should format minutes and two-digit seconds", func() {
			engine.SelectLabel("5 min")
			engine.Start()
			ticker.Advance(65)

			s := engine.State()
			Expect(s.RemainingSeconds).To(Equal(235))
			Expect(s.MinutesDisplay).To(Equal("3"))
			Expect(s.SecondsDisplay).To(Equal("55"))
			Expect(s.Display()).To(Equal("3:55"))
		})

		It("should keep the hour marker while counting", func() {
			engine.SelectLabel("1.0 hour")
			engine.Start()
			ticker.Advance(1)
			Expect(engine.State().Display()).To(Equal("1:59:59"))
		})

		It("should never exceed the total or go negative", func() {
			loop := func() bool {
				seconds := rand.Intn(90) + 1
				engine.Select(preset.New(float64(seconds), preset.Second))
				engine.Start()
				for i := 0; i < seconds+5; i++ {
					ticker.Tick()
					s := engine.State()
					Expect(s.RemainingSeconds).To(BeNumerically("<=", s.TotalSeconds))
					Expect(s.RemainingSeconds).To(BeNumerically(">=", 0))
					if s.Status == countdown.StatusFinished {
						Expect(s.RemainingSeconds).To(BeZero())
					}
				}
				Expect(engine.State().Status).To(Equal(countdown.StatusFinished))
				return true
			}
			Expect(quick.Check(loop, &quick.Config{MaxCount: 20})).To(Succeed())
		})
	})

	Context("when pausing", func() {
		It("should keep the remaining seconds and resume from them", func() {
			engine.SelectLabel("20 sec")
			engine.Start()
			ticker.Advance(5)
			engine.Pause()

			paused := engine.State()
			Expect(paused.Status).To(Equal(countdown.StatusPaused))
			Expect(paused.RemainingSeconds).To(Equal(15))
			Expect(paused.TotalSeconds).To(Equal(20))
			Expect(ticker.Tick()).To(BeFalse())

			engine.Pause()
			Expect(engine.State()).To(Equal(paused))

			engine.Start()
			resumed := engine.State()
			Expect(resumed.Status).To(Equal(countdown.StatusRunning))
			Expect(resumed.RemainingSeconds).To(Equal(15))
			Expect(resumed.TotalSeconds).To(Equal(20))
			Expect(resumed.Progress()).To(Equal(0.75))
		})

		It("should do nothing unless running", func() {
			engine.Pause()
			Expect(engine.State().Status).To(Equal(countdown.StatusIdle))
			engine.SelectLabel("10 sec")
			engine.Pause()
			Expect(engine.State().Status).To(Equal(countdown.StatusIdle))
		})
	})

	Context("when resetting", func() {
		It("should return to idle from every state", func() {
			engine.Reset(false)
			Expect(engine.State()).To(Equal(countdown.State{}))

			engine.SelectLabel("10 sec")
			engine.Reset(false)
			Expect(engine.State()).To(Equal(countdown.State{}))

			engine.SelectLabel("10 sec")
			engine.Start()
			ticker.Advance(2)
			engine.Reset(false)
			Expect(engine.State()).To(Equal(countdown.State{}))
			Expect(ticker.Running()).To(BeFalse())

			engine.SelectLabel("10 sec")
			engine.Start()
			engine.Pause()
			engine.Reset(false)
			Expect(engine.State()).To(Equal(countdown.State{}))

			engine.SelectLabel("10 sec")
			engine.Start()
			ticker.Advance(10)
			engine.Reset(false)
			Expect(engine.State()).To(Equal(countdown.State{}))
		})

		It("should keep the selection when asked to", func() {
			engine.SelectLabel("1.2 hour")
			engine.Start()
			ticker.Advance(3)
			engine.Reset(true)
			Expect(engine.State()).To(Equal(countdown.State{Status: countdown.StatusIdle, SelectedLabel: "1.2 hour"}))

			engine.Start()
			Expect(engine.State().RemainingSeconds).To(Equal(4320))
		})

		It("should forget the selection otherwise", func() {
			engine.SelectLabel("10 sec")
			engine.Reset(false)
			engine.Start()
			Expect(engine.State().Status).To(Equal(countdown.StatusIdle))
		})
	})

	Context("when observed", func() {
		It("should publish every transition with the previous state", func() {
			events := engine.Subscribe(16)
			engine.SelectLabel("10 sec")
			engine.Start()
			ticker.Tick()
			engine.Pause()
			engine.Reset(true)

			var types []countdown.EventType
			for i := 0; i < 5; i++ {
				event := <-events
				types = append(types, event.Type)
				if event.Type == countdown.EventReset {
					Expect(event.Previous.Status).To(Equal(countdown.StatusPaused))
					Expect(event.State.Status).To(Equal(countdown.StatusIdle))
				}
			}
			Expect(types).To(Equal([]countdown.EventType{
				countdown.EventSelected,
				countdown.EventStarted,
				countdown.EventTick,
				countdown.EventPaused,
				countdown.EventReset,
			}))
		})

		It("should drop events for a full subscriber instead of blocking", func() {
			events := engine.Subscribe(1)
			engine.SelectLabel("10 sec")
			engine.Start()
			ticker.Advance(10)
			Expect(engine.State().Status).To(Equal(countdown.StatusFinished))
			Expect(events).To(HaveLen(1))

			event := <-events
			Expect(event.Type).To(Equal(countdown.EventFinished))
			Expect(event.State.RemainingSeconds).To(BeZero())
		})

		It("should deliver the finished event to every full subscriber", func() {
			slow := engine.Subscribe(4)
			fast := engine.Subscribe(4)
			engine.SelectLabel("30 min")
			engine.Start()
			Expect(ticker.Advance(2000)).To(Equal(1800))

			Expect(slow).To(HaveLen(4))
			var last countdown.Event
			for len(fast) > 0 {
				last = <-fast
			}
			Expect(last.Type).To(Equal(countdown.EventFinished))
			Expect(finished).To(HaveLen(1))
		})

		It("should hand out closed channels after close", func() {
			engine.Close()
			_, ok := <-engine.Subscribe(1)
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("Engine with a real timer", func() {
	It("should not tick after pause returns", func() {
		engine := countdown.New(quietOptions().WithTickInterval(2 * time.Millisecond))
		defer engine.Close()

		engine.SelectLabel("60 sec")
		engine.Start()
		Eventually(func() int { return engine.State().RemainingSeconds }).Should(BeNumerically("<=", 55))

		engine.Pause()
		paused := engine.State()
		Consistently(engine.State, 30*time.Millisecond).Should(Equal(paused))

		engine.Start()
		Eventually(func() int { return engine.State().RemainingSeconds }).Should(BeNumerically("<", paused.RemainingSeconds))
		engine.Reset(false)
		Consistently(engine.State, 30*time.Millisecond).Should(Equal(countdown.State{}))
	})

	It("should finish and call back once", func() {
		done := make(chan countdown.State, 2)
		engine := countdown.New(quietOptions().
			WithTickInterval(time.Millisecond).
			WithOnFinished(func(s countdown.State) { done <- s }))
		defer engine.Close()

		engine.SelectLabel("20 sec")
		engine.Start()

		var s countdown.State
		Eventually(done).Should(Receive(&s))
		Expect(s.Status).To(Equal(countdown.StatusFinished))
		Consistently(done, 20*time.Millisecond).ShouldNot(Receive())
	})
})
