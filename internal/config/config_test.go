package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/1970jjh/saudi/internal/config"
)

func TestNew(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("Then it carries the classroom defaults", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.MaxTeams, ShouldEqual, 12)
			So(cfg.DebounceMS, ShouldEqual, 800)
			So(cfg.SyncPulseMS, ShouldEqual, 500)
			So(cfg.BusBuffer, ShouldEqual, 64)
			So(cfg.NoteDataDir, ShouldBeEmpty)
			So(cfg.AdminSecret, ShouldNotBeEmpty)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		ctx := context.Background()
		for _, key := range []string{
			"SAUDI_CONFIG", "SAUDI_ADDR", "SAUDI_MAX_TEAMS",
			"SAUDI_ADMIN_SECRET", "SAUDI_DEBOUNCE_MS", "SAUDI_LOG_LEVEL",
		} {
			So(os.Unsetenv(key), ShouldBeNil)
		}

		Convey("When loading with nothing set", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the defaults come back unchanged", func() {
				So(err, ShouldBeNil)
				So(cfg, ShouldResemble, config.New())
			})
		})

		Convey("When env vars override defaults", func() {
			t.Setenv("SAUDI_ADDR", ":7001")
			t.Setenv("SAUDI_MAX_TEAMS", "6")
			t.Setenv("SAUDI_LOG_LEVEL", "debug")

			cfg, err := config.Load(ctx)

			Convey("Then only the named fields change", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7001")
				So(cfg.MaxTeams, ShouldEqual, 6)
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.DebounceMS, ShouldEqual, 800)
			})
		})

		Convey("When a YAML file is layered in", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			So(os.WriteFile(path, []byte("addr: \":7002\"\nmax_teams: 8\n"), 0o644), ShouldBeNil)
			t.Setenv("SAUDI_CONFIG", path)

			Convey("Then file values override defaults", func() {
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7002")
				So(cfg.MaxTeams, ShouldEqual, 8)
			})

			Convey("And env vars override the file", func() {
				t.Setenv("SAUDI_ADDR", ":7003")
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7003")
				So(cfg.MaxTeams, ShouldEqual, 8)
			})
		})

		Convey("When the config file does not exist", func() {
			t.Setenv("SAUDI_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			Convey("Then loading fails with ErrLoadConfig", func() {
				So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
			})
		})

		Convey("When a value fails validation", func() {
			Convey("Then an empty admin secret is rejected", func() {
				t.Setenv("SAUDI_ADMIN_SECRET", "")
				_, err := config.Load(ctx)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})

			Convey("And a non-positive team count is rejected", func() {
				t.Setenv("SAUDI_MAX_TEAMS", "0")
				_, err := config.Load(ctx)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})

			Convey("And a non-positive debounce is rejected", func() {
				t.Setenv("SAUDI_DEBOUNCE_MS", "-5")
				_, err := config.Load(ctx)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
