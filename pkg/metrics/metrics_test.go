package metrics

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When options carry empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
			)

			Convey("Then the defaults stay in place", func() {
				So(manager.namespace, ShouldEqual, "saudi")
				So(manager.subsystem, ShouldEqual, "mission")
				So(manager.buckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestDefaultManager(t *testing.T) {
	Convey("Given the package-level manager", t, func() {
		Convey("Then it is available for the metrics endpoint", func() {
			So(Default(), ShouldNotBeNil)
			So(Default().Registry(), ShouldNotBeNil)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording scoring metrics", func() {
			So(func() {
				RecordScoringPass()
				RecordInvalidPrice()
				RecordScoringLatency(1.5)
			}, ShouldNotPanic)
		})

		Convey("When recording bus metrics", func() {
			So(func() {
				RecordBusPublished("REVEAL_RESULTS")
				RecordBusPublished("SYNC_NOTES")
				RecordBusDelivered()
				RecordBusDropped()
				UpdateBusSubscriptions(3)
			}, ShouldNotPanic)
		})

		Convey("When recording note metrics", func() {
			So(func() {
				RecordNoteFlush()
				RecordNoteRemoval()
				RecordDebounceRestart()
				RecordNoteStoreRead()
				RecordNoteStoreWrite()
				RecordNoteStoreError()
				UpdateTeamsTracked(5)
			}, ShouldNotPanic)
		})

		Convey("When recording feedback metrics", func() {
			So(func() {
				RecordFeedbackRequest()
				RecordFeedbackFailure()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("simulate", "POST", "200")
				RecordHTTPRequestDuration("simulate", "POST", 12.0)
			}, ShouldNotPanic)
		})
	})
}

func TestRegistryGather(t *testing.T) {
	Convey("Given the default registry", t, func() {
		RecordScoringPass()

		Convey("When gathering metric families", func() {
			families, err := Default().Registry().Gather()

			Convey("Then the registered collectors show up", func() {
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["saudi_mission_scoring_passes_total"], ShouldBeTrue)
			})
		})
	})
}
